package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"catalog-backend/internal/shared"
)

// Scheduler registers recurring jobs with asynq. The nightly partner API
// ingest keeps the catalog in sync with externally managed products.
type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddress string) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{scheduler: scheduler}
}

func (s *Scheduler) RegisterJobs() error {
	return s.registerPartnerAPIIngestJob()
}

func (s *Scheduler) registerPartnerAPIIngestJob() error {
	payload, _ := json.Marshal(map[string]string{"trigger": "scheduled"})
	task := asynq.NewTask(shared.TypePartnerAPIIngest, payload)

	// 03:00 UTC, after the partner's own publishing window closes.
	entryID, err := s.scheduler.Register("0 3 * * *", task, asynq.Queue("default"), asynq.MaxRetry(1))
	if err != nil {
		return err
	}

	log.Info().Str("entry_id", entryID).Msg("Registered partner API ingest job")
	return nil
}

func (s *Scheduler) Run() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
