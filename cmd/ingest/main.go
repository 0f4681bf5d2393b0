package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"catalog-backend/internal/domains/ingestion/model"
	"catalog-backend/pkg/container"
	"catalog-backend/pkg/logger"
)

// The ingest command runs one CSV batch from the terminal: either a local
// CSV file, or the partner product API rendered through the snapshot CSV
// shape. The ingestion report is printed to stdout as JSON.
func main() {
	csvPath := flag.String("csv", "", "path to the product CSV to ingest")
	partner := flag.String("partner", "", "partner slug owning the batch (default from config)")
	productType := flag.String("product-type", "", "course type slug scoping the archival sweep")
	productSource := flag.String("product-source", "", "product source slug of the batch")
	useProductAPI := flag.Bool("use-product-api", false, "source the batch from the partner product API")
	snapshotPath := flag.String("snapshot", "", "write the rendered product API CSV to this file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}
	logger.Init(os.Getenv("APP_ENV"))

	if *csvPath == "" && !*useProductAPI {
		fatalf("either -csv or -use-product-api is required")
	}
	if *csvPath != "" && *useProductAPI {
		fatalf("-csv and -use-product-api are mutually exclusive")
	}

	c, err := container.NewContainer()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize container")
	}
	defer c.Cleanup()

	opts := c.LoaderDefaults()
	if *partner != "" {
		opts.Partner = *partner
	}
	if *productType != "" {
		opts.ProductType = *productType
	}
	if *productSource != "" {
		opts.ProductSource = *productSource
	}

	ctx := context.Background()
	var stats *model.IngestionStats

	if *useProductAPI {
		pc := c.Config.Partner
		if pc.URL == "" {
			fatalf("PARTNER_API_URL is not configured")
		}
		if pc.AuthToken == "" && (pc.ClientID == "" || pc.ClientSecret == "" || pc.TokenURL == "") {
			fatalf("partner API auth is not configured: set PARTNER_API_TOKEN or the OAuth client credentials")
		}

		var snapshot io.Writer
		if *snapshotPath != "" {
			f, err := os.Create(*snapshotPath)
			if err != nil {
				log.Fatal().Err(err).Str("path", *snapshotPath).Msg("Failed to open snapshot file")
			}
			defer f.Close()
			snapshot = f
		}

		stats, err = c.IngestionService.IngestFromProductAPI(ctx, snapshot, nil, opts)
		if err != nil {
			log.Fatal().Err(err).Msg("Product API ingestion aborted")
		}
	} else {
		file, err := os.Open(*csvPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *csvPath).Msg("Failed to open CSV")
		}
		defer file.Close()

		stats, err = c.IngestionService.IngestCSV(ctx, file, opts)
		if err != nil {
			log.Fatal().Err(err).Msg("CSV ingestion aborted")
		}
	}

	report, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to render report")
	}
	fmt.Println(string(report))

	if stats.FailureCount > 0 {
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}
