package email

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog/log"
)

// LegalReviewData carries what the legal team needs to review a course.
type LegalReviewData struct {
	CourseTitle  string
	CourseKey    string
	CourseUUID   string
	PublisherURL string
}

type EmailService interface {
	SendLegalReviewEmail(ctx context.Context, data LegalReviewData) error
}

type smtpEmailService struct {
	smtpAddr string
	smtpFrom string
	legalTo  string
}

func NewSMTPEmailService(smtpHost, smtpPort, from, legalTo string) EmailService {
	return &smtpEmailService{
		smtpAddr: smtpHost + ":" + smtpPort,
		smtpFrom: from,
		legalTo:  legalTo,
	}
}

func (s *smtpEmailService) SendLegalReviewEmail(ctx context.Context, data LegalReviewData) error {
	subject := fmt.Sprintf("Legal review requested: %s", data.CourseTitle)
	body := fmt.Sprintf(`A course has been submitted for legal review.

	Title: %s
	Key: %s
	UUID: %s

	Review it here: %s`, data.CourseTitle, data.CourseKey, data.CourseUUID, data.PublisherURL)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.smtpFrom, s.legalTo, subject, body))

	err := smtp.SendMail(s.smtpAddr, nil, s.smtpFrom, []string{s.legalTo}, msg)
	if err != nil {
		log.Error().
			Err(err).
			Str("course", data.CourseKey).
			Str("smtp_addr", s.smtpAddr).
			Msg("Failed to send legal review email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
