// Command server runs the sheet-fill engine's REST ingress: it accepts
// cell edits, manual operator triggers, and bulk row imports, and exposes
// cell-processing status for polling. The actual fill work is done by the
// dispatcher process (cmd/dispatcher), which this server only enqueues
// work for.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sheetfill/engine/internal/application/observer"
	"github.com/sheetfill/engine/internal/application/queue"
	"github.com/sheetfill/engine/internal/config"
	"github.com/sheetfill/engine/internal/infrastructure/api/rest"
	"github.com/sheetfill/engine/internal/infrastructure/cache"
	"github.com/sheetfill/engine/internal/infrastructure/logger"
	"github.com/sheetfill/engine/internal/infrastructure/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.Logging)
	logger.SetDefault(appLogger)

	appLogger.Info("starting sheetfill server",
		"port", cfg.Server.Port,
	)

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

	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		appLogger.Error("failed to initialize redis cache", "error", err)
		os.Exit(1)
	}
	defer redisCache.Close()

	cellRepo := storage.NewCellRepository(db)
	eventRepo := storage.NewEventQueueRepository(db)
	statusRepo := storage.NewStatusRepository(db)

	observerManager := observer.NewObserverManager(
		observer.WithLogger(appLogger),
	)
	if err := observerManager.Register(observer.NewLoggerObserver(appLogger)); err != nil {
		appLogger.Error("failed to register logger observer", "error", err)
	}
	if err := observerManager.Register(observer.NewRedisObserver(redisCache.Client())); err != nil {
		appLogger.Error("failed to register redis observer", "error", err)
	}

	q := queue.New(eventRepo, cellRepo, observerManager)

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	recoveryMiddleware := rest.NewRecoveryMiddleware(appLogger)
	loggingMiddleware := rest.NewLoggingMiddleware(appLogger)
	bodySizeMiddleware := rest.NewBodySizeMiddleware(appLogger, 1<<20)
	ingressLimiter := rest.NewRedisIngressRateLimiter(
		redisCache.Client(),
		240,
		time.Minute,
		time.Minute,
	)

	router.Use(recoveryMiddleware.Recovery())
	router.Use(loggingMiddleware.RequestLogger())
	router.Use(bodySizeMiddleware.LimitBodySize())

	if cfg.Server.CORS {
		router.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusNoContent)
				return
			}
			c.Next()
		})
	}

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := storage.Ping(ctx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": fmt.Sprintf("database: %s", err)})
			return
		}
		if err := redisCache.Health(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": fmt.Sprintf("redis: %s", err)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	sheetHandlers := rest.NewSheetHandlers(q, statusRepo, appLogger)

	apiV1 := router.Group("/api/v1")
	apiV1.Use(ingressLimiter.Middleware())
	{
		sheets := apiV1.Group("/sheets")
		{
			sheets.POST("/:id/cells", sheetHandlers.HandleEnqueueCellEdit)
			sheets.POST("/:id/triggers", sheetHandlers.HandleEnqueueManualTrigger)
			sheets.POST("/:id/rows:bulk", sheetHandlers.HandleBulkCreateRows)
			sheets.GET("/:id/cells/:row/:col/status", sheetHandlers.HandleGetCellStatus)
			sheets.GET("/:id/rows/:row/status", sheetHandlers.HandleListRowStatus)
		}
	}

	appLogger.Info("REST API routes registered")

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		appLogger.Info("HTTP server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		appLogger.Error("server error", "error", err)
		os.Exit(1)

	case sig := <-shutdown:
		appLogger.Info("server shutdown initiated", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			appLogger.Error("graceful shutdown failed", "error", err)
			if err := server.Close(); err != nil {
				appLogger.Error("server close failed", "error", err)
			}
		}

		appLogger.Info("server stopped")
	}
}
