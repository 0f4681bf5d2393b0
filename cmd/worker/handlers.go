package main

import (
	"github.com/hibiken/asynq"

	coursejob "catalog-backend/internal/domains/course/job"
	ingestionjob "catalog-backend/internal/domains/ingestion/job"
	"catalog-backend/internal/infrastructure/email"
	emailjob "catalog-backend/internal/infrastructure/email/job"
	"catalog-backend/internal/infrastructure/storage"
	"catalog-backend/internal/shared"
	"catalog-backend/pkg/container"
)

// HandlerRegistry holds all job handlers.
type HandlerRegistry struct {
	legalReview   *emailjob.LegalReviewHandler
	processImage  *coursejob.ProcessImageHandler
	partnerIngest *ingestionjob.PartnerIngestHandler
}

// initializeHandlers builds the handlers with their dependencies. The worker
// owns the SMTP connection; the API only enqueues.
func initializeHandlers(c *container.Container) *HandlerRegistry {
	cfg := c.Config
	smtp := email.NewSMTPEmailService(
		cfg.Email.SMTPHost, cfg.Email.SMTPPort,
		cfg.Email.From, cfg.Email.LegalReviewAddr,
	)

	return &HandlerRegistry{
		legalReview:   emailjob.NewLegalReviewHandler(smtp),
		processImage:  coursejob.NewProcessImageHandler(c.Storage, storage.NewImageProcessor()),
		partnerIngest: ingestionjob.NewPartnerIngestHandler(c.IngestionService, c.Storage, c.LoaderDefaults()),
	}
}

// RegisterHandlers registers all handlers with the mux.
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeSendLegalReviewMail, h.legalReview.ProcessTask)
	mux.HandleFunc(shared.TypeProcessCourseImage, h.processImage.ProcessTask)
	mux.HandleFunc(shared.TypePartnerAPIIngest, h.partnerIngest.ProcessTask)
}
