package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	coursemodel "catalog-backend/internal/domains/course/model"
	"catalog-backend/internal/infrastructure/storage"
)

// ObjectStore is the slice of the storage layer image attachment needs.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// TaskQueue defers card image variant generation to the worker.
type TaskQueue interface {
	EnqueueProcessImage(ctx context.Context, courseUUID, objectKey string) error
}

// ImageService fetches partner-hosted images and attaches them to a course.
// The returned bytes let the loader forward the card image to the studio.
type ImageService interface {
	AttachCourseImage(ctx context.Context, course *coursemodel.Course, url string) ([]byte, error)
	AttachLogoOverride(ctx context.Context, course *coursemodel.Course, url string) error
}

type imageService struct {
	store      ObjectStore
	processor  *storage.ImageProcessor
	tasks      TaskQueue
	httpClient *http.Client
}

// NewImageService builds the attachment service. tasks may be nil; variant
// generation is then skipped.
func NewImageService(store ObjectStore, processor *storage.ImageProcessor, tasks TaskQueue) ImageService {
	return &imageService{
		store:      store,
		processor:  processor,
		tasks:      tasks,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *imageService) AttachCourseImage(ctx context.Context, course *coursemodel.Course, url string) ([]byte, error) {
	data, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("media/course/image/%s.jpg", course.UUID)
	if _, err := s.store.Upload(ctx, key, data, http.DetectContentType(data)); err != nil {
		return nil, fmt.Errorf("failed to store course image: %w", err)
	}
	course.ImageKey = key

	if s.tasks != nil {
		if err := s.tasks.EnqueueProcessImage(ctx, course.UUID.String(), key); err != nil {
			log.Warn().Err(err).Str("course", course.Key).Msg("Failed to enqueue image variant generation")
		}
	}
	return data, nil
}

func (s *imageService) AttachLogoOverride(ctx context.Context, course *coursemodel.Course, url string) error {
	data, err := s.fetch(ctx, url)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("media/course/logo/%s.jpg", course.UUID)
	if _, err := s.store.Upload(ctx, key, data, http.DetectContentType(data)); err != nil {
		return fmt.Errorf("failed to store logo override: %w", err)
	}
	course.LogoOverrideKey = key
	return nil
}

func (s *imageService) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download responded with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.processor.MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}
	if err := s.processor.ValidateImage(data); err != nil {
		return nil, err
	}
	return data, nil
}
