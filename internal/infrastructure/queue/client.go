package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"catalog-backend/internal/shared"
)

// Client enqueues background tasks for the worker. Producers hold this
// instead of a raw asynq client so payload shapes stay in one place.
type Client struct {
	client *asynq.Client
}

func NewClient(redisAddress string) *Client {
	return &Client{client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddress})}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueProcessImage schedules card image variant generation for a course.
func (c *Client) EnqueueProcessImage(ctx context.Context, courseUUID, objectKey string) error {
	payload, err := json.Marshal(shared.ProcessImagePayload{CourseUUID: courseUUID, ObjectKey: objectKey})
	if err != nil {
		return fmt.Errorf("failed to marshal process image payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeProcessCourseImage, payload)
	info, err := c.client.EnqueueContext(ctx, task, asynq.Queue("low"), asynq.MaxRetry(3))
	if err != nil {
		return fmt.Errorf("failed to enqueue image processing: %w", err)
	}

	log.Debug().Str("task_id", info.ID).Str("course_uuid", courseUUID).Msg("Enqueued image processing")
	return nil
}

// EnqueuePartnerIngest schedules an immediate partner product API ingestion
// run, outside the nightly schedule.
func (c *Client) EnqueuePartnerIngest(ctx context.Context, trigger string) error {
	payload, err := json.Marshal(map[string]string{"trigger": trigger})
	if err != nil {
		return fmt.Errorf("failed to marshal partner ingest payload: %w", err)
	}

	task := asynq.NewTask(shared.TypePartnerAPIIngest, payload)
	info, err := c.client.EnqueueContext(ctx, task, asynq.Queue("default"), asynq.MaxRetry(1))
	if err != nil {
		return fmt.Errorf("failed to enqueue partner ingest: %w", err)
	}

	log.Debug().Str("task_id", info.ID).Str("trigger", trigger).Msg("Enqueued partner API ingest")
	return nil
}

// EnqueueLegalReviewEmail schedules the legal review notification for a
// course held in draft.
func (c *Client) EnqueueLegalReviewEmail(ctx context.Context, payload shared.LegalReviewPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal legal review payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeSendLegalReviewMail, data)
	info, err := c.client.EnqueueContext(ctx, task, asynq.Queue("default"), asynq.MaxRetry(5))
	if err != nil {
		return fmt.Errorf("failed to enqueue legal review email: %w", err)
	}

	log.Debug().Str("task_id", info.ID).Str("course_key", payload.CourseKey).Msg("Enqueued legal review email")
	return nil
}
