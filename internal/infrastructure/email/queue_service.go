package email

import (
	"context"

	"catalog-backend/internal/infrastructure/queue"
	"catalog-backend/internal/shared"
)

// queueEmailService defers delivery to the worker. The API process enqueues
// and returns immediately; the worker owns the SMTP connection.
type queueEmailService struct {
	tasks *queue.Client
}

func NewQueueEmailService(tasks *queue.Client) EmailService {
	return &queueEmailService{tasks: tasks}
}

func (s *queueEmailService) SendLegalReviewEmail(ctx context.Context, data LegalReviewData) error {
	return s.tasks.EnqueueLegalReviewEmail(ctx, shared.LegalReviewPayload{
		CourseUUID:   data.CourseUUID,
		CourseTitle:  data.CourseTitle,
		CourseKey:    data.CourseKey,
		PublisherURL: data.PublisherURL,
	})
}
