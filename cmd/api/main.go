package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/loan-guidance/loan-guidance-backend/config"
	httpapi "github.com/loan-guidance/loan-guidance-backend/internal/api/http"
	"github.com/loan-guidance/loan-guidance-backend/internal/bootstrap"
	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/artifact"
	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/service"
	"github.com/loan-guidance/loan-guidance-backend/internal/observability"
	"github.com/loan-guidance/loan-guidance-backend/internal/storage/postgres"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.App.LogLevel,
		Format:  cfg.App.LogFormat,
		Service: cfg.App.ServiceName,
		Env:     cfg.App.Environment,
	})
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Model artifact -----------------------------------------------------
	source, err := bootstrap.NewArtifactSource(ctx, cfg.Model)
	if err != nil {
		logger.Error("model source", "error", err)
		os.Exit(1)
	}
	store := artifact.NewStore(source, cfg.Model.Fallback, logger)
	if err := store.Load(ctx); err != nil {
		logger.Warn("starting without a model; /predict will answer 503", "error", err)
	}

	var refresher *artifact.Refresher
	if cfg.Model.RefreshCron != "" {
		refresher, err = artifact.NewRefresher(store, cfg.Model.RefreshCron, 0, logger)
		if err != nil {
			logger.Error("model refresher", "error", err)
			os.Exit(1)
		}
		refresher.Start()
	}

	// --- Optional cache and assessment log ----------------------------------
	var (
		cache      *redis.Client
		cachePing  httpapi.Pinger
		db         *sql.DB
		dbPing     httpapi.Pinger
		svcOptions []service.Option
	)

	if cfg.CacheEnabled() {
		cache, err = bootstrap.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("assessment cache disabled", "error", err)
		} else {
			client := cache
			cachePing = httpapi.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
			logger.Info("assessment cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	if cfg.DatabaseEnabled() {
		var assessmentLog *postgres.AssessmentLog
		db, assessmentLog, err = bootstrap.OpenAssessmentLog(ctx, &cfg.Database)
		if err != nil {
			logger.Warn("assessment log disabled", "error", err)
		} else {
			dbPing = assessmentLog
			svcOptions = append(svcOptions, service.WithRecorder(assessmentLog))
			logger.Info("assessment log enabled", "host", cfg.Database.Host, "db", cfg.Database.Name)
		}
	}

	// --- Service and HTTP ---------------------------------------------------
	sc := bootstrap.BuildScorer(cfg, store, cache, logger)
	guidanceSvc := service.NewGuidanceService(sc, cfg.Scorer.Timeout, logger, svcOptions...)

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    cfg.App.ServiceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		Guidance:       guidanceSvc,
		Cache:          cachePing,
		DB:             dbPing,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr, "scorer", sc.Name(), "version", cfg.App.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if refresher != nil {
		refresher.Stop()
	}
	if cache != nil {
		_ = cache.Close()
	}
	if db != nil {
		_ = db.Close()
	}

	logger.Info("stopped")
}
