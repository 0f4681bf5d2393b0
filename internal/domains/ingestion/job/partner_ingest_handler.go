package job

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"catalog-backend/internal/domains/ingestion/service"
)

// PartnerIngestHandler runs the scheduled partner product API ingest. The
// rendered CSV snapshot and the ingestion report are archived to object
// storage for audit.
type PartnerIngestHandler struct {
	ingestion *service.IngestionService
	store     service.ObjectStore
	opts      service.LoaderOptions
}

func NewPartnerIngestHandler(ingestion *service.IngestionService, store service.ObjectStore, opts service.LoaderOptions) *PartnerIngestHandler {
	return &PartnerIngestHandler{ingestion: ingestion, store: store, opts: opts}
}

func (h *PartnerIngestHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	log.Info().
		Str("partner", h.opts.Partner).
		Str("product_source", h.opts.ProductSource).
		Msg("Starting scheduled partner API ingest")

	var snapshot bytes.Buffer
	stats, err := h.ingestion.IngestFromProductAPI(ctx, &snapshot, nil, h.opts)
	if err != nil {
		return fmt.Errorf("partner api ingest: %w", err)
	}

	stamp := time.Now().UTC().Format("2006-01-02T15-04-05")
	snapshotKey := fmt.Sprintf("ingestion/snapshots/%s.csv", stamp)
	if _, err := h.store.Upload(ctx, snapshotKey, snapshot.Bytes(), "text/csv"); err != nil {
		log.Warn().Err(err).Str("key", snapshotKey).Msg("Failed to archive ingestion snapshot")
	}

	report, err := json.Marshal(stats)
	if err == nil {
		reportKey := fmt.Sprintf("ingestion/reports/%s.json", stamp)
		if _, err := h.store.Upload(ctx, reportKey, report, "application/json"); err != nil {
			log.Warn().Err(err).Str("key", reportKey).Msg("Failed to archive ingestion report")
		}
	}

	log.Info().
		Int("total", stats.TotalProductsCount).
		Int("success", stats.SuccessCount).
		Int("failure", stats.FailureCount).
		Int("archived", stats.ArchivedProductsCount).
		Msg("Scheduled partner API ingest finished")
	return nil
}
