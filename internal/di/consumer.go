package di

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/adapter/event"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/infrastructure/database/rdb"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/infrastructure/messaging"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/infrastructure/search"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/infrastructure/server"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/usecase"
	"github.com/sienaindigoandlavender/festivals-in-morocco/pkg/config"
	"github.com/sienaindigoandlavender/festivals-in-morocco/pkg/shutdown"
	"github.com/sienaindigoandlavender/festivals-in-morocco/pkg/telemetry"
	"github.com/pannpers/go-logging/logging"
)

// ConsumerApp represents the event consumer application: a Watermill
// Router keeping the search projection in step with events published by
// the API process and the ingestion job, plus a standalone health server
// for Kubernetes probes.
type ConsumerApp struct {
	Router          *message.Router
	HealthServer    *server.HealthServer
	Logger          *logging.Logger
	ShutdownTimeout time.Duration
}

// InitializeConsumerApp creates a ConsumerApp with all event handler
// dependencies wired. Shutdown is driven by the global shutdown package,
// not a local closers slice, since cmd/consumer stops the health server
// and the router independently before tearing down shared resources.
func InitializeConsumerApp(ctx context.Context) (*ConsumerApp, error) {
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
	eventRepo := rdb.NewEventRepository(db)
	cityRepo := rdb.NewCityRepository(db)
	regionRepo := rdb.NewRegionRepository(db)
	venueRepo := rdb.NewVenueRepository(db)
	organizerRepo := rdb.NewOrganizerRepository(db)
	artistRepo := rdb.NewArtistRepository(db)
	genreRepo := rdb.NewGenreRepository(db)

	// Infrastructure - Messaging
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

	subscriber, err := messaging.NewSubscriber(cfg.NATS, wmLogger, goChannel)
	if err != nil {
		return nil, fmt.Errorf("create messaging subscriber: %w", err)
	}

	// Infrastructure - Search
	searchClient := search.New(cfg.Search.ServerURL, cfg.Search.APIKey)

	// Use Cases
	projectionSync := usecase.NewProjectionSynchronizer(searchClient, eventRepo, cityRepo, regionRepo, venueRepo, organizerRepo, artistRepo, genreRepo)

	// Event Handlers
	rebuildHandler := event.NewRebuildHandler(projectionSync, logger)
	projectionHandler := event.NewProjectionHandler(projectionSync, logger)

	// Router
	router, err := messaging.NewRouter(wmLogger, publisher, "poison-queue")
	if err != nil {
		return nil, fmt.Errorf("create messaging router: %w", err)
	}

	router.AddNoPublisherHandler(
		"trigger-full-rebuild",
		messaging.EventTypeRebuildRequested,
		subscriber,
		rebuildHandler.Handle,
	)

	router.AddNoPublisherHandler(
		"sync-projection-on-create",
		messaging.EventTypeEventCreated,
		subscriber,
		projectionHandler.HandleCreated,
	)

	router.AddNoPublisherHandler(
		"sync-projection-on-merge",
		messaging.EventTypeEventMerged,
		subscriber,
		projectionHandler.HandleMerged,
	)

	router.AddNoPublisherHandler(
		"sync-projection-on-archive",
		messaging.EventTypeEventArchived,
		subscriber,
		projectionHandler.HandleArchived,
	)

	healthServer := server.NewHealthServer(cfg.Server.HealthAddr)

	shutdown.Init(logger)
	shutdown.AddDrainPhase(healthServer)
	shutdown.AddFlushPhase(publisher)
	shutdown.AddObservePhase(telemetryCloser)
	shutdown.AddDatastorePhase(db)

	return &ConsumerApp{
		Router:          router,
		HealthServer:    healthServer,
		Logger:          logger,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, nil
}
