package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/adapter/source"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/adapter/source/api"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/adapter/source/manual"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/adapter/source/scrape"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/adapter/source/spreadsheet"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/infrastructure/database/rdb"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/infrastructure/messaging"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/normalize"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/usecase"
	"github.com/sienaindigoandlavender/festivals-in-morocco/pkg/config"
	"github.com/sienaindigoandlavender/festivals-in-morocco/pkg/telemetry"
	"github.com/pannpers/go-logging/logging"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// staleConfidenceWindow is the age past which an event's
// last_verified_at triggers a confidence recompute during the daily
// maintenance sweep; matches the Confidence Scorer's recency window.
const staleConfidenceWindow = 90 * 24 * time.Hour

// JobApp represents a lightweight application for batch ingestion and
// maintenance jobs without an HTTP server.
type JobApp struct {
	Orchestrator *usecase.PipelineOrchestrator
	Archiver     *usecase.ArchivalUseCase
	Scorer       *usecase.ConfidenceScorer
	Logger       *logging.Logger
	closers      []io.Closer
}

// Shutdown closes all resources held by the job application.
func (a *JobApp) Shutdown(_ context.Context) error {
	log.Println("Starting job shutdown...")

	var errs error
	for _, closer := range a.closers {
		if err := closer.Close(); err != nil {
			errs = errors.Join(errs, fmt.Errorf("failed to close resource: %w", err))
		}
	}

	if errs != nil {
		return errs
	}

	log.Println("Job shutdown complete")
	return nil
}

// InitializeJobApp creates a JobApp with the ingestion pipeline and
// maintenance use cases wired: source adapters, dedup resolver, merge
// writer, archival sweep, confidence scorer. cmd/job/ingest selects which
// of the three operations (ingest, maintenance, gc) to invoke.
func InitializeJobApp(ctx context.Context) (*JobApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := provideLogger(cfg)
	if err != nil {
		return nil, err
	}

	db, err := rdb.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	telemetryCloser, err := telemetry.SetupTelemetry(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Repositories
	candidateRepo := rdb.NewCandidateRepository(db)
	fingerprintRepo := rdb.NewFingerprintRepository(db)
	cityRepo := rdb.NewCityRepository(db)
	eventRepo := rdb.NewEventRepository(db)
	mergeRepo := rdb.NewMergeRepository(db)
	sourceRepo := rdb.NewSourceRepository(db)
	eventSourceRepo := rdb.NewEventSourceRepository(db)
	venueRepo := rdb.NewVenueRepository(db)

	// Infrastructure - Messaging Publisher
	wmLogger := watermill.NewStdLogger(false, false)
	var goChannel *gochannel.GoChannel
	if cfg.NATS.URL == "" {
		goChannel = gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, wmLogger)
	}
	publisher, err := messaging.NewPublisher(cfg.NATS, wmLogger, goChannel)
	if err != nil {
		return nil, fmt.Errorf("create messaging publisher: %w", err)
	}

	registry, sourceClosers, err := buildSourceRegistry(ctx, cfg, cityRepo, logger)
	if err != nil {
		return nil, err
	}

	// Use Cases
	confidenceScorer := usecase.NewConfidenceScorer(eventRepo, eventRepo, eventSourceRepo, sourceRepo)
	dedupResolver := usecase.NewDedupResolver(fingerprintRepo, eventRepo, eventSourceRepo, sourceRepo, venueRepo)
	mergeWriter := usecase.NewMergeWriter(mergeRepo, eventRepo, eventSourceRepo, sourceRepo, confidenceScorer)
	orchestrator := usecase.NewPipelineOrchestrator(sourceRepo, candidateRepo, registry, dedupResolver, mergeWriter, publisher, logger, 4)
	archiver := usecase.NewArchivalUseCase(eventRepo, staleConfidenceWindow, publisher, logger)

	closers := append([]io.Closer{db, telemetryCloser, publisher}, sourceClosers...)

	return &JobApp{
		Orchestrator: orchestrator,
		Archiver:     archiver,
		Scorer:       confidenceScorer,
		Logger:       logger,
		closers:      closers,
	}, nil
}

// buildSourceRegistry wires every configured source adapter into the
// registry. The spreadsheet adapter is only registered when a spreadsheet
// ID is configured, since it requires a live Sheets API client; omitting
// it is not an error, it just means no Source row may use
// entity.SourceTypeSpreadsheet until configured.
func buildSourceRegistry(ctx context.Context, cfg *config.Config, cityRepo entity.CityRepository, logger *logging.Logger) (*source.Registry, []io.Closer, error) {
	registry := source.NewRegistry()

	cityMatcher := normalize.NewCityMatcher(cityRepo)
	registry.Register(entity.SourceTypeAPI, api.New(api.Config{
		BaseURL:       cfg.Sources.APIBaseURL,
		RatePerSecond: cfg.Sources.APIRatePerSecond,
	}, cityMatcher))
	registry.Register(entity.SourceTypeManual, manual.New())

	if cfg.Sources.ScrapeListURL != "" {
		registry.Register(entity.SourceTypeScrape, scrape.New(cfg.Sources.ScrapeListURL))
	} else {
		logger.Warn(ctx, "⚠️  scrape source not configured, SOURCES_SCRAPE_LIST_URL is empty")
	}

	if cfg.Sources.SpreadsheetID != "" {
		sheetsService, err := sheets.NewService(ctx, option.WithoutAuthentication())
		if err != nil {
			return nil, nil, fmt.Errorf("create sheets service: %w", err)
		}
		registry.Register(entity.SourceTypeSpreadsheet, spreadsheet.New(sheetsService, cfg.Sources.SpreadsheetID, cfg.Sources.SpreadsheetRange))
	} else {
		logger.Warn(ctx, "⚠️  spreadsheet source not configured, SOURCES_SPREADSHEET_ID is empty")
	}

	return registry, nil, nil
}
