package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
	"connectrpc.com/grpchealth"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/adapter/rpc"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/infrastructure/auth"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/infrastructure/authz"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/infrastructure/database/rdb"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/infrastructure/messaging"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/infrastructure/search"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/infrastructure/server"
	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/usecase"
	"github.com/sienaindigoandlavender/festivals-in-morocco/pkg/config"
	"github.com/sienaindigoandlavender/festivals-in-morocco/pkg/telemetry"
	"github.com/pannpers/go-logging/logging"
)

// editorialStore composes EventRepository's plain attribute writes with
// MergeRepository's one-transaction merge write, satisfying
// usecase.editorialStore without requiring either repository to know
// about the other's concern.
type editorialStore struct {
	*rdb.EventRepository
	*rdb.MergeRepository
}

// InitializeApp creates a new App with all dependencies wired up manually.
// This is the read and editorial-command surface: catalog search and the
// six editorial commands. The ingestion pipeline (source adapters, dedup
// resolver, merge writer, archival sweep) runs out of cmd/job/ingest
// instead, since it is cron-scheduled batch work, not request-serving.
func InitializeApp(ctx context.Context) (*App, error) {
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

	if len(cfg.Server.AllowedOrigins) == 0 {
		logger.Warn(ctx, "⚠️  CORS not configured, browser requests will fail")
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
	cityRepo := rdb.NewCityRepository(db)
	regionRepo := rdb.NewRegionRepository(db)
	actionRepo := rdb.NewEditorialActionRepository(db)
	eventRepo := rdb.NewEventRepository(db)
	mergeRepo := rdb.NewMergeRepository(db)
	venueRepo := rdb.NewVenueRepository(db)
	organizerRepo := rdb.NewOrganizerRepository(db)
	artistRepo := rdb.NewArtistRepository(db)
	genreRepo := rdb.NewGenreRepository(db)

	// Infrastructure - Messaging Publisher. Nothing in the API process
	// publishes through it: editorial commands call the projection
	// synchronizer directly. It is only registered as a resource to close
	// on shutdown.
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

	// Infrastructure - Authorization and Search
	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return nil, fmt.Errorf("create authorization enforcer: %w", err)
	}
	searchClient := search.New(cfg.Search.ServerURL, cfg.Search.APIKey)

	// Use Cases
	projectionSync := usecase.NewProjectionSynchronizer(searchClient, eventRepo, cityRepo, regionRepo, venueRepo, organizerRepo, artistRepo, genreRepo)
	editorialUC := usecase.NewEditorialUseCase(eventRepo, &editorialStore{EventRepository: eventRepo, MergeRepository: mergeRepo}, actionRepo, enforcer, projectionSync)

	if err := projectionSync.EnsureSchema(ctx); err != nil {
		logger.Warn(ctx, "⚠️  search schema not ready, projection sync will fail until Typesense is reachable", slog.String("error", err.Error()))
	}

	// Auth - JWT Validator
	jwtValidator, err := auth.NewJWTValidator(
		cfg.JWT.Issuer,
		cfg.JWT.Issuer+"/oauth/v2/keys",
		cfg.JWT.JWKSRefreshInterval,
	)
	if err != nil {
		return nil, err
	}

	if len(cfg.JWT.AcceptedIssuers) > 0 {
		all := append([]string{cfg.JWT.Issuer}, cfg.JWT.AcceptedIssuers...)
		jwtValidator = jwtValidator.WithAcceptedIssuers(all)
	}

	// Public procedures: the catalog search surface is a public read path;
	// every editorial command requires authentication.
	publicProcedures := map[string]bool{
		rpc.SearchEventsPath: true,
	}

	authFunc := auth.NewAuthFunc(jwtValidator, publicProcedures)

	// Health check handler (public, outside authn middleware).
	healthChecker := rpc.NewHealthCheckHandler(db, logger)
	healthHandler := func(opts ...connect.HandlerOption) (string, http.Handler) {
		return grpchealth.NewHandler(healthChecker, opts...)
	}

	// RPC handlers (protected by authn middleware, except the search
	// handler which is exempted above via publicProcedures).
	handlers := []server.RPCHandlerFunc{
		rpc.NewEditorialHandler(editorialUC),
		rpc.NewSearchHandler(searchClient),
	}

	srv := server.NewConnectServer(cfg, logger, db, authFunc, healthHandler, handlers...)

	return newApp(srv, db, telemetryCloser, publisher, healthChecker), nil
}

func provideLogger(cfg *config.Config) (*logging.Logger, error) {
	var opts []logging.Option
	switch cfg.Logging.Level {
	case "debug":
		opts = append(opts, logging.WithLevel(slog.LevelDebug))
	case "info":
		opts = append(opts, logging.WithLevel(slog.LevelInfo))
	case "warn":
		opts = append(opts, logging.WithLevel(slog.LevelWarn))
	case "error":
		opts = append(opts, logging.WithLevel(slog.LevelError))
	}
	switch cfg.Logging.Format {
	case "text":
		opts = append(opts, logging.WithFormat(logging.FormatText))
	case "json":
		opts = append(opts, logging.WithFormat(logging.FormatJSON))
	}
	return logging.New(opts...)
}
