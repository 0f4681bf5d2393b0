package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"catalog-backend/internal/infrastructure/storage"
	"catalog-backend/internal/shared"
)

// ProcessImageHandler generates the resized card image variants for a
// course. Ingestion only stores the original; variants are produced here so
// a slow partner image host never stalls a CSV batch.
type ProcessImageHandler struct {
	store     *storage.MinIOStorage
	processor *storage.ImageProcessor
}

func NewProcessImageHandler(store *storage.MinIOStorage, processor *storage.ImageProcessor) *ProcessImageHandler {
	return &ProcessImageHandler{store: store, processor: processor}
}

func (h *ProcessImageHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ProcessImagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal ProcessImage payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	data, err := h.store.Download(ctx, payload.ObjectKey)
	if err != nil {
		return fmt.Errorf("download original image: %w", err)
	}

	variants, err := h.processor.ProcessImage(data)
	if err != nil {
		log.Error().
			Err(err).
			Str("course_uuid", payload.CourseUUID).
			Msg("Failed to process course image")
		return fmt.Errorf("process image: %w", err)
	}

	for name, variant := range variants {
		key := fmt.Sprintf("media/course/image/%s.%s.jpg", payload.CourseUUID, name)
		if _, err := h.store.Upload(ctx, key, variant, "image/jpeg"); err != nil {
			return fmt.Errorf("upload %s variant: %w", name, err)
		}
	}

	log.Info().
		Str("course_uuid", payload.CourseUUID).
		Int("variants", len(variants)).
		Msg("Course image variants generated")
	return nil
}
