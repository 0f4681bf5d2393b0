package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	courseservice "catalog-backend/internal/domains/course/service"
	"catalog-backend/internal/domains/ingestion/service"
	"catalog-backend/internal/infrastructure/queue"
	"catalog-backend/internal/shared/response"
)

// IngestionHandler exposes the staff-only ingestion triggers.
type IngestionHandler struct {
	ingestion *service.IngestionService
	catalog   courseservice.CatalogService
	tasks     *queue.Client
	defaults  service.LoaderOptions
}

func NewIngestionHandler(ingestion *service.IngestionService, catalog courseservice.CatalogService, tasks *queue.Client, defaults service.LoaderOptions) *IngestionHandler {
	return &IngestionHandler{ingestion: ingestion, catalog: catalog, tasks: tasks, defaults: defaults}
}

// RegisterRoutes mounts the ingestion API. The group must already carry
// authentication and the staff gate.
func (h *IngestionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ingestion/csv", h.IngestCSV)
	rg.POST("/ingestion/partner-api", h.TriggerPartnerIngest)
}

func (h *IngestionHandler) IngestCSV(c *gin.Context) {
	var req IngestCSVRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "Invalid form data")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	file, _, err := c.Request.FormFile("csv")
	if err != nil {
		response.BadRequest(c, "csv file is required")
		return
	}
	defer file.Close()

	opts := h.defaults
	opts.Partner = req.Partner
	opts.ProductType = req.ProductType
	opts.ProductSource = req.ProductSource
	if actor := c.GetString("username"); actor != "" {
		opts.Actor = actor
	}

	stats, err := h.ingestion.IngestCSV(c.Request.Context(), file, opts)
	if err != nil {
		log.Error().Err(err).Msg("CSV ingestion aborted")
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "INGESTION_ABORTED", "Ingestion could not start", err.Error())
		return
	}

	if err := h.catalog.InvalidateCache(c.Request.Context()); err != nil {
		log.Warn().Err(err).Msg("catalog cache invalidation failed after ingestion")
	}

	response.Success(c, http.StatusOK, stats)
}

// TriggerPartnerIngest enqueues a partner product API ingestion run. The run
// itself happens on the worker; callers poll the catalog afterwards.
func (h *IngestionHandler) TriggerPartnerIngest(c *gin.Context) {
	trigger := "manual"
	if actor := c.GetString("username"); actor != "" {
		trigger = "manual:" + actor
	}

	if err := h.tasks.EnqueuePartnerIngest(c.Request.Context(), trigger); err != nil {
		log.Error().Err(err).Msg("failed to enqueue partner API ingest")
		response.InternalServerError(c, "could not schedule ingestion")
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"status": "scheduled"})
}
