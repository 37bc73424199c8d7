package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/amqp"
	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	apphttp "expensetracker/internal/http"
	applog "expensetracker/internal/log"
	"expensetracker/internal/persistence"
	"expensetracker/internal/services"
	gsheet "expensetracker/internal/sheets/google"
	"expensetracker/internal/store"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext(context.Background())
	err := run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("Expense tracker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

// run wires the medium, store, service and HTTP shell, and blocks until ctx
// is cancelled or the server fails.
func run(ctx context.Context, cfg *config.Config, logger *applog.Logger) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return fmt.Errorf("backend configuration: %w", err)
	}
	medium, err := backend.NewFactory(logger).Create(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("initialize %s backend: %w", cfg.DataBackend, err)
	}
	defer func() {
		if err := medium.Cleanup(); err != nil {
			logger.Warn("Backend cleanup failed", "error", err)
		}
	}()

	adapter := persistence.New(medium.Store, logger)
	st := store.Open(ctx, adapter, store.WithLogger(logger))

	opts := []services.Option{services.WithLogger(logger)}
	if cfg.AMQPEnabled() {
		opts = append(opts, services.WithEvents(amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)))
		logger.Info("AMQP change events enabled",
			"exchange", cfg.AMQPExchange,
			"routing_key", cfg.AMQPRoutingKey)
	}
	if cfg.SheetsEnabled() {
		exporter, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Warn("Sheets export disabled", "error", err)
		} else {
			opts = append(opts, services.WithSheets(exporter))
		}
	}
	svc := services.NewExpenseService(st, opts...)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("Service close failed", "error", err)
		}
	}()

	srv := apphttp.NewServer(cfg.Addr(), svc, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting expense tracker", "addr", cfg.Addr(), "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
