package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/residentwelcome/internal/adapter/driven/postgres"
	sqliteadapter "github.com/ericfisherdev/residentwelcome/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/residentwelcome/internal/adapter/driven/supabase"
	"github.com/ericfisherdev/residentwelcome/internal/adapter/driven/webhook"
	"github.com/ericfisherdev/residentwelcome/internal/adapter/driving/cli"
	"github.com/ericfisherdev/residentwelcome/internal/application"
	"github.com/ericfisherdev/residentwelcome/internal/config"
	"github.com/ericfisherdev/residentwelcome/internal/domain/model"
	"github.com/ericfisherdev/residentwelcome/internal/domain/port/driven"
)

func main() {
	if err := execute(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func execute() error {
	// Cancel in-flight requests on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewCommand(func(ctx context.Context, resident model.NewResident) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logger := newLogger(cfg.LogFormat, os.Stderr)
		slog.SetDefault(logger)

		return run(ctx, cfg, resident, logger)
	})

	return cmd.ExecuteContext(ctx)
}

// run wires the configured store and the webhook notifier, then performs one
// insert-and-notify.
func run(ctx context.Context, cfg *config.Config, resident model.NewResident, logger *slog.Logger) error {
	logger.Info("config loaded",
		"store", cfg.Store,
		"table", cfg.Table,
		"webhook_url", cfg.WebhookURL,
		"http_timeout", cfg.HTTPTimeout,
	)

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeStore(); closeErr != nil {
			logger.Error("error closing store", "error", closeErr)
		}
	}()

	notifier := webhook.NewNotifier(cfg.WebhookURL, cfg.HTTPTimeout)
	svc := application.NewWelcomeService(store, notifier, logger)

	outcome, err := svc.InsertAndNotify(ctx, resident)
	if err != nil {
		return err
	}

	logger.Info("resident welcome complete",
		"run_id", outcome.RunID,
		"id", outcome.Resident.ID,
		"status", outcome.Notify.StatusCode,
	)
	return nil
}

// openStore builds the ResidentStore for cfg.Store. The returned close
// function is always non-nil.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (driven.ResidentStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store {
	case config.StoreSupabase:
		client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, cfg.Table, cfg.HTTPTimeout)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("supabase client created", "url", cfg.SupabaseURL)
		return client, noop, nil

	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("postgres connected")
		return postgres.NewResidentRepo(db, cfg.Table), db.Close, nil

	case config.StoreSQLite:
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return nil, noop, err
		}
		version, err := sqliteadapter.RunMigrations(db.Writer)
		if err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		repo := sqliteadapter.NewResidentRepo(db, cfg.Table)
		count, err := repo.Count(ctx)
		if err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		logger.Info("database opened", "path", db.Path(), "schema_version", version, "residents", count)
		return repo, db.Close, nil
	}

	return nil, noop, fmt.Errorf("unsupported store %q", cfg.Store)
}

func newLogger(format config.LogFormat, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
