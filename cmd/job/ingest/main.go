// Package main provides the ingestion and maintenance CronJob entry
// point. The mode argument selects which scheduled operation to run:
//
//	ingest       fetch + dedup + merge over every active source (every 6h)
//	maintenance  archive past-due events, recompute stale confidence,
//	             request a full projection rebuild (daily at 02:00 UTC)
//	gc           delete unprocessed candidates past the retention window
//	             (weekly)
//
// A single image with three CronJob manifests, one per mode, keeps the
// wiring (and its dependencies) in one place instead of three binaries.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/di"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mode := "ingest"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	log.Printf("Starting ingestion job (mode=%s)...", mode)

	app, err := di.InitializeJobApp(ctx)
	if err != nil {
		log.Printf("Failed to initialize job: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := app.Shutdown(context.Background()); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	switch mode {
	case "ingest":
		runIngest(ctx, app)
	case "maintenance":
		runMaintenance(ctx, app)
	case "gc":
		runGarbageCollection(ctx, app)
	default:
		log.Printf("Unknown job mode %q, expected one of: ingest, maintenance, gc", mode)
		os.Exit(1)
	}
}

func runIngest(ctx context.Context, app *di.JobApp) {
	report, err := app.Orchestrator.Run(ctx)
	if err != nil {
		app.Logger.Error(ctx, "ingestion run failed", err)
		os.Exit(1)
	}

	var fetched, created, merged, reviewNeeded, failedSources int
	for _, sr := range report.Sources {
		fetched += sr.Fetched
		created += sr.Created
		merged += sr.Merged
		reviewNeeded += sr.ReviewNeeded
		if sr.Err != nil {
			failedSources++
			app.Logger.Error(ctx, "source run failed", sr.Err, slog.String("source_id", sr.SourceID))
		}
	}

	log.Printf("Ingestion complete: %d sources, %d failed, %d fetched, %d created, %d merged, %d review needed",
		len(report.Sources), failedSources, fetched, created, merged, reviewNeeded)
}

func runMaintenance(ctx context.Context, app *di.JobApp) {
	if err := app.Orchestrator.RunDailyMaintenance(ctx, app.Archiver, app.Scorer); err != nil {
		app.Logger.Error(ctx, "daily maintenance failed", err)
		os.Exit(1)
	}
	log.Println("Daily maintenance complete")
}

func runGarbageCollection(ctx context.Context, app *di.JobApp) {
	deleted, err := app.Orchestrator.RunGarbageCollection(ctx)
	if err != nil {
		app.Logger.Error(ctx, "candidate garbage collection failed", err)
		os.Exit(1)
	}
	log.Printf("Garbage collection complete: %d candidates deleted", deleted)
}
