package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"catalog-backend/internal/infrastructure/email"
	"catalog-backend/internal/shared"
)

// LegalReviewHandler delivers the legal review notification enqueued when a
// course is held in draft for review.
type LegalReviewHandler struct {
	emails email.EmailService
}

func NewLegalReviewHandler(emails email.EmailService) *LegalReviewHandler {
	return &LegalReviewHandler{emails: emails}
}

func (h *LegalReviewHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.LegalReviewPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal LegalReview payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	err := h.emails.SendLegalReviewEmail(ctx, email.LegalReviewData{
		CourseTitle:  payload.CourseTitle,
		CourseKey:    payload.CourseKey,
		CourseUUID:   payload.CourseUUID,
		PublisherURL: payload.PublisherURL,
	})
	if err != nil {
		return fmt.Errorf("send legal review email: %w", err)
	}

	log.Info().Str("course_key", payload.CourseKey).Msg("Legal review email sent")
	return nil
}
