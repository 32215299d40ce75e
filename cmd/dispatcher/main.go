// Command dispatcher runs the event-driven progressive-fill engine: it
// claims queued events, runs each through an operator, and writes the
// validated result back, advancing each row's fill chain one column at a
// time. It is a long-running process distinct from cmd/server, which only
// accepts ingress and enqueues work for this process to pick up.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sheetfill/engine/internal/application/dispatcher"
	"github.com/sheetfill/engine/internal/application/validator"
	"github.com/sheetfill/engine/internal/application/wrapper"
	"github.com/sheetfill/engine/internal/config"
	"github.com/sheetfill/engine/internal/infrastructure/logger"
	"github.com/sheetfill/engine/internal/infrastructure/storage"
	"github.com/sheetfill/engine/pkg/operator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.Logging)
	logger.SetDefault(appLogger)

	appLogger.Info("starting sheetfill dispatcher")

	dbConfig := &storage.Config{
		DSN:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxConnections,
		MaxIdleConns:    cfg.Database.MinConnections,
		ConnMaxLifetime: cfg.Database.MaxConnLifetime,
		ConnMaxIdleTime: cfg.Database.MaxIdleTime,
		Debug:           cfg.Database.Debug,
	}

	db, err := storage.NewDB(dbConfig)
	if err != nil {
		appLogger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer storage.Close(db)

	sheetRepo := storage.NewSheetRepository(db)
	cellRepo := storage.NewCellRepository(db)
	eventRepo := storage.NewEventQueueRepository(db)
	statusRepo := storage.NewStatusRepository(db)
	auditRepo := storage.NewAuditRepository(db)

	// Concrete vendor clients for google_search, academic_search,
	// structured_output, similarity_expansion, and function_calling are
	// deliberately not constructed here: wiring a real LLM/search vendor
	// call is out of scope. Only url_context, which needs no vendor
	// client, is registered.
	registry, err := operator.RegisterAll(operator.Clients{
		BlockedHosts:      cfg.Wrapper.BlockedURLHosts,
		URLContextTimeout: cfg.Dispatcher.OperatorTimeout,
	})
	if err != nil {
		appLogger.Error("failed to register operators", "error", err)
		os.Exit(1)
	}

	v := validator.New(cfg.Validator.LowConfidenceThreshold, cfg.Wrapper.BlockedURLHosts)
	w := wrapper.New(cellRepo, auditRepo, eventRepo, v, cfg.Wrapper.BlockedURLHosts, cfg.Wrapper.MaxCellLength)

	d := dispatcher.New(
		dispatcher.Config{
			Parallelism:     cfg.Dispatcher.Parallelism,
			PollInterval:    cfg.Dispatcher.PollInterval,
			ClaimBatchSize:  cfg.Dispatcher.ClaimBatchSize,
			MaxRetries:      cfg.Dispatcher.MaxRetries,
			OperatorTimeout: cfg.Dispatcher.OperatorTimeout,
		},
		eventRepo, sheetRepo, cellRepo, statusRepo,
		registry, w, v, appLogger,
	)

	reaper := dispatcher.NewReaper(eventRepo, cfg.Dispatcher.ReapAfter, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := reaper.Start(ctx); err != nil {
		appLogger.Error("failed to start reaper", "error", err)
		os.Exit(1)
	}

	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	appLogger.Info("dispatcher running",
		"parallelism", cfg.Dispatcher.Parallelism,
		"poll_interval", cfg.Dispatcher.PollInterval,
	)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdown
	appLogger.Info("dispatcher shutdown initiated", "signal", sig)

	cancel()
	reaper.Stop()
	<-done

	appLogger.Info("dispatcher stopped")
}
