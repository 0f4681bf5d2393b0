package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the whole application configuration, populated from
// environment variables.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Email     EmailConfig
	MinIO     MinIOConfig
	Studio    StudioConfig
	Ecommerce EcommerceConfig
	Pricing   PricingConfig
	Partner   PartnerAPIConfig
	Ingestion IngestionConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
}

type EmailConfig struct {
	SMTPHost        string
	SMTPPort        string
	From            string
	LegalReviewAddr string // recipient for legal review notifications
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// StudioConfig addresses the external authoring studio API.
type StudioConfig struct {
	URL     string
	Token   string
	Timeout int // seconds
}

// EcommerceConfig addresses the e-commerce publication endpoint.
type EcommerceConfig struct {
	URL     string
	Token   string
	Timeout int // seconds
}

// PricingConfig addresses the internal entitlement price update API.
type PricingConfig struct {
	BaseURL string
	Token   string
	Timeout int // seconds
}

// PartnerAPIConfig addresses the external partner product API used as an
// alternative ingestion source. AuthToken short-circuits the OAuth
// client-credentials exchange.
type PartnerAPIConfig struct {
	URL          string
	AuthToken    string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Timeout      int // seconds
}

// IngestionConfig carries the behavior flags of the ingestion pipeline.
type IngestionConfig struct {
	// VariantIDEditable selects run matching by variant id instead of
	// start/end date equality.
	VariantIDEditable bool
	// SubdirectorySlugs enables the executive-education/{org}-{title} slug
	// format for exec-ed courses.
	SubdirectorySlugs bool
	// ActorUsername is recorded as the acting user on studio pushes.
	ActorUsername string
	// ExternalSourceSlug names the product source whose exec-ed rows must
	// carry full marketing collateral.
	ExternalSourceSlug string
	// PartnerSlug, ProductTypeSlug and ProductSourceSlug scope the
	// scheduled partner API ingest.
	PartnerSlug       string
	ProductTypeSlug   string
	ProductSourceSlug string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Catalog API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "catalog"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 15),
		},
		Email: EmailConfig{
			SMTPHost:        getEnv("SMTP_HOST", "localhost"),
			SMTPPort:        getEnv("SMTP_PORT", "1025"),
			From:            getEnv("EMAIL_FROM", "noreply@catalog.dev"),
			LegalReviewAddr: getEnv("LEGAL_REVIEW_EMAIL", "legal@catalog.dev"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "catalog"),
			UseSSL:    false,
		},
		Studio: StudioConfig{
			URL:     getEnv("STUDIO_URL", "http://localhost:18010"),
			Token:   getEnv("STUDIO_TOKEN", ""),
			Timeout: getEnvInt("STUDIO_TIMEOUT", 30),
		},
		Ecommerce: EcommerceConfig{
			URL:     getEnv("ECOMMERCE_URL", "http://localhost:18130"),
			Token:   getEnv("ECOMMERCE_TOKEN", ""),
			Timeout: getEnvInt("ECOMMERCE_TIMEOUT", 30),
		},
		Pricing: PricingConfig{
			BaseURL: getEnv("PRICING_BASE_URL", "http://localhost:18381"),
			Token:   getEnv("PRICING_TOKEN", ""),
			Timeout: getEnvInt("PRICING_TIMEOUT", 30),
		},
		Partner: PartnerAPIConfig{
			URL:          getEnv("PARTNER_API_URL", ""),
			AuthToken:    getEnv("PARTNER_API_TOKEN", ""),
			ClientID:     getEnv("PARTNER_API_CLIENT_ID", ""),
			ClientSecret: getEnv("PARTNER_API_CLIENT_SECRET", ""),
			TokenURL:     getEnv("PARTNER_API_TOKEN_URL", ""),
			Timeout:      getEnvInt("PARTNER_API_TIMEOUT", 60),
		},
		Ingestion: IngestionConfig{
			VariantIDEditable:  getEnvBool("INGESTION_VARIANT_ID_EDITABLE", true),
			SubdirectorySlugs:  getEnvBool("INGESTION_SUBDIRECTORY_SLUGS", false),
			ActorUsername:      getEnv("INGESTION_ACTOR", "ingestion-bot"),
			ExternalSourceSlug: getEnv("INGESTION_EXTERNAL_SOURCE", "external"),
			PartnerSlug:        getEnv("INGESTION_PARTNER", "edx"),
			ProductTypeSlug:    getEnv("INGESTION_PRODUCT_TYPE", "executive-education-2u"),
			ProductSourceSlug:  getEnv("INGESTION_PRODUCT_SOURCE", "getsmarter"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.App.Environment == "production" && c.JWT.Secret == "your-secret-key-change-in-production" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
