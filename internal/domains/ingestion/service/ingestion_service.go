package service

import (
	"context"
	"fmt"
	"io"

	courserepo "catalog-backend/internal/domains/course/repository"
	orgrepo "catalog-backend/internal/domains/organization/repository"
	"catalog-backend/internal/infrastructure/email"

	"catalog-backend/internal/domains/ingestion/client"
	"catalog-backend/internal/domains/ingestion/model"
)

// IngestionService bundles the loader's collaborators so callers (HTTP
// handler, CLI, scheduled worker) only supply per-run options.
type IngestionService struct {
	courses   courserepo.CourseRepository
	orgs      orgrepo.OrganizationRepository
	studio    client.StudioClient
	ecommerce client.EcommerceClient
	pricing   client.PricingClient
	images    ImageService
	emails    email.EmailService
	products  client.ProductAPIClient
}

func NewIngestionService(
	courses courserepo.CourseRepository,
	orgs orgrepo.OrganizationRepository,
	studio client.StudioClient,
	ecommerce client.EcommerceClient,
	pricing client.PricingClient,
	images ImageService,
	emails email.EmailService,
	products client.ProductAPIClient,
) *IngestionService {
	return &IngestionService{
		courses:   courses,
		orgs:      orgs,
		studio:    studio,
		ecommerce: ecommerce,
		pricing:   pricing,
		images:    images,
		emails:    emails,
		products:  products,
	}
}

// IngestCSV parses and ingests one CSV batch.
func (s *IngestionService) IngestCSV(ctx context.Context, r io.Reader, opts LoaderOptions) (*model.IngestionStats, error) {
	rows, err := ParseCourseRows(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return s.IngestRows(ctx, rows, opts)
}

// IngestRows ingests pre-parsed rows.
func (s *IngestionService) IngestRows(ctx context.Context, rows []*model.CourseRow, opts LoaderOptions) (*model.IngestionStats, error) {
	loader := NewCSVLoader(opts, s.courses, s.orgs, s.studio, s.ecommerce, s.pricing, s.images, s.emails)
	return loader.Ingest(ctx, rows)
}

// IngestFromProductAPI sources the batch from the partner product API: the
// products are rendered to the snapshot CSV shape, then ingested. A failing
// API call aborts before any row is processed.
func (s *IngestionService) IngestFromProductAPI(ctx context.Context, snapshot io.Writer, inputRows []*model.CourseRow, opts LoaderOptions) (*model.IngestionStats, error) {
	products, err := s.products.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("product api fetch failed: %w", err)
	}

	pr, pw := io.Pipe()
	go func() {
		csvService := NewProductCSVService(s.products)
		pw.CloseWithError(csvService.WriteProductsCSV(io.MultiWriter(pw, nopIfNil(snapshot)), products, inputRows))
	}()

	rows, err := ParseCourseRows(pr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product api csv: %w", err)
	}
	return s.IngestRows(ctx, rows, opts)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func nopIfNil(w io.Writer) io.Writer {
	if w == nil {
		return discardWriter{}
	}
	return w
}
