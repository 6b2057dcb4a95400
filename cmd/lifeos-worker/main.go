// Command lifeos-worker mirrors logged entries to a Google Sheets
// spreadsheet. It consumes entry events from AMQP and periodically
// reconciles the store against the mirror for events that never arrived.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"lifeos/internal/amqp"
	"lifeos/internal/cache"
	"lifeos/internal/cli"
	"lifeos/internal/config"
	"lifeos/internal/log"
	"lifeos/internal/sheets"
	gsheet "lifeos/internal/sheets/google"
	mem "lifeos/internal/sheets/memory"
	"lifeos/internal/worker"
)

const cacheSweepInterval = 10 * time.Minute

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(nil, "Configuration validation failed", err)
	}
	logger, err := cli.SetupLogger(cfg.LogLevel, false, log.ComponentWorker)
	if err != nil {
		cli.Fatal(nil, "Invalid log level", err)
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) (err error) {
	defer cli.Recover(logger, &err)

	logger.Info("Starting lifeos-worker",
		"storage", cfg.StorageBackend,
		"events", cfg.EventsEnabled(),
		"mirror", cfg.MirrorEnabled())

	if cfg.StorageBackend == "memory" {
		logger.Warn("Worker is reading an in-memory store; it will only ever see its own empty state")
	}
	store, err := cli.OpenStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	writer, err := openMirror(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var consumer worker.Consumer
	if cfg.EventsEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			return fmt.Errorf("connect to AMQP: %w", err)
		}
		defer client.Close()
		consumer = client
	} else {
		logger.Info("AMQP disabled, relying on periodic reconcile only", "interval", cfg.SyncInterval)
	}

	mirror := worker.NewMirrorWorker(store, writer, cfg.SyncBatchSize, logger)

	caches := cache.NewManager(logger)
	caches.Register(mirror.Seen())
	caches.StartCleanup(cacheSweepInterval)
	defer caches.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return mirror.Run(gctx, consumer, cfg.SyncInterval)
	})
	return g.Wait()
}

// openMirror returns the spreadsheet writer, or an in-memory one that only
// logs when no spreadsheet is configured.
func openMirror(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.EntryWriter, error) {
	if !cfg.MirrorEnabled() {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, entries are mirrored in memory")
		return mem.New(), nil
	}
	client, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize Google Sheets client: %w", err)
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", client.SheetName())
	return client, nil
}
