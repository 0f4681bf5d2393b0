package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"catalog-backend/internal/config"
	coursehandler "catalog-backend/internal/domains/course/handler"
	courserepo "catalog-backend/internal/domains/course/repository"
	courseservice "catalog-backend/internal/domains/course/service"
	ingestionclient "catalog-backend/internal/domains/ingestion/client"
	ingestionhandler "catalog-backend/internal/domains/ingestion/handler"
	ingestionservice "catalog-backend/internal/domains/ingestion/service"
	orgrepo "catalog-backend/internal/domains/organization/repository"
	infracache "catalog-backend/internal/infrastructure/cache"
	"catalog-backend/internal/infrastructure/database"
	"catalog-backend/internal/infrastructure/email"
	"catalog-backend/internal/infrastructure/queue"
	"catalog-backend/internal/infrastructure/storage"
	"catalog-backend/pkg/cache"
	"catalog-backend/pkg/jwt"
)

// Container is the root of the dependency graph. Everything in it is a
// singleton built once at boot, in dependency order: config, infrastructure,
// repositories, services, handlers.
type Container struct {
	Config      *config.Config
	DB          *database.PostgresDB
	RedisClient *infracache.RedisClient
	Cache       cache.Cache
	Storage     *storage.MinIOStorage
	JWTManager  *jwt.Manager
	Tasks       *queue.Client

	OrganizationRepo orgrepo.OrganizationRepository
	CourseRepo       courserepo.CourseRepository

	StudioClient     ingestionclient.StudioClient
	EcommerceClient  ingestionclient.EcommerceClient
	PricingClient    ingestionclient.PricingClient
	ProductAPIClient ingestionclient.ProductAPIClient

	ImageService     ingestionservice.ImageService
	EmailService     email.EmailService
	CatalogService   courseservice.CatalogService
	IngestionService *ingestionservice.IngestionService

	CatalogHandler   *coursehandler.CatalogHandler
	IngestionHandler *ingestionhandler.IngestionHandler
}

// NewContainer builds and connects the whole application.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewPostgresDB(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	if err := database.Migrate(cfg.Database); err != nil {
		db.Close()
		return nil, err
	}

	c.RedisClient = infracache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.RedisClient.Connect(ctx); err != nil {
		// Cache misses are survivable; ingestion and reads fall through to
		// the database.
		log.Warn().Err(err).Msg("Redis connection failed, continuing without cache")
	}
	c.Cache = infracache.NewRedisCache(c.RedisClient)

	store, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to object storage: %w", err)
	}
	c.Storage = store

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret)
	c.Tasks = queue.NewClient(cfg.Redis.Host)

	c.OrganizationRepo = orgrepo.NewPostgresRepository(db.Pool)
	c.CourseRepo = courserepo.NewPostgresRepository(db.Pool)

	c.StudioClient = ingestionclient.NewStudioClient(cfg.Studio.URL, cfg.Studio.Token)
	c.EcommerceClient = ingestionclient.NewEcommerceClient(cfg.Ecommerce.URL, cfg.Ecommerce.Token)
	c.PricingClient = ingestionclient.NewPricingClient(cfg.Pricing.BaseURL, cfg.Pricing.Token)
	c.ProductAPIClient = ingestionclient.NewProductAPIClient(
		cfg.Partner.URL, cfg.Partner.TokenURL,
		cfg.Partner.ClientID, cfg.Partner.ClientSecret, cfg.Partner.AuthToken,
	)

	c.ImageService = ingestionservice.NewImageService(store, storage.NewImageProcessor(), c.Tasks)
	c.EmailService = email.NewQueueEmailService(c.Tasks)

	c.CatalogService = courseservice.NewCatalogService(c.CourseRepo, c.Cache)
	c.IngestionService = ingestionservice.NewIngestionService(
		c.CourseRepo, c.OrganizationRepo,
		c.StudioClient, c.EcommerceClient, c.PricingClient,
		c.ImageService, c.EmailService, c.ProductAPIClient,
	)

	c.CatalogHandler = coursehandler.NewCatalogHandler(c.CatalogService)
	c.IngestionHandler = ingestionhandler.NewIngestionHandler(c.IngestionService, c.CatalogService, c.Tasks, c.LoaderDefaults())

	log.Info().Str("environment", cfg.App.Environment).Msg("Container initialized")
	return c, nil
}

// LoaderDefaults derives the per-run ingestion options from configuration.
// Callers override the batch scope (partner, type, source) per request.
func (c *Container) LoaderDefaults() ingestionservice.LoaderOptions {
	ing := c.Config.Ingestion
	return ingestionservice.LoaderOptions{
		Partner:           ing.PartnerSlug,
		ProductType:       ing.ProductTypeSlug,
		ProductSource:     ing.ProductSourceSlug,
		ExternalSource:    ing.ExternalSourceSlug,
		VariantIDEditable: ing.VariantIDEditable,
		SubdirectorySlugs: ing.SubdirectorySlugs,
		Actor:             ing.ActorUsername,
	}
}

// Cleanup releases held connections, in reverse dependency order.
func (c *Container) Cleanup() {
	if c.Tasks != nil {
		if err := c.Tasks.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close task client")
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close redis client")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	log.Info().Msg("Container cleaned up")
}
