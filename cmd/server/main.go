package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spotsense/spotscore/internal/cache"
	"github.com/spotsense/spotscore/internal/config"
	"github.com/spotsense/spotscore/internal/database"
	"github.com/spotsense/spotscore/internal/monitoring"
	"github.com/spotsense/spotscore/internal/ranking"
	"github.com/spotsense/spotscore/internal/ratelimit"
	"github.com/spotsense/spotscore/internal/scoring"
)

func main() {
	cfg := config.Load()

	appLogger := monitoring.NewLogger()
	slog.SetDefault(appLogger.Logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewDB(cfg.Database.DataDir)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	engine := scoring.NewEngine(cfg.Scoring)
	appMetrics := monitoring.NewMetrics()

	redisClient, err := ratelimit.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Warn("Redis unavailable, rate limiting falls back to in-memory", "error", err)
	}
	defer redisClient.Close()

	limiter := ratelimit.NewRateLimiter(redisClient, cfg.RateLimit, appMetrics)
	defer limiter.Close()

	// Daily retention sweep over old check-ins
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			cutoff := time.Now().AddDate(0, 0, -cfg.Database.RetentionDays)
			if n, err := repo.PruneCheckins(cutoff); err != nil {
				slog.Error("Check-in retention sweep failed", "error", err)
			} else if n > 0 {
				slog.Info("Pruned old check-ins", "deleted", n, "cutoff", cutoff.Format(time.RFC3339))
			}
		}
	}()

	srv := &server{
		cfg:        cfg,
		db:         db,
		repo:       repo,
		engine:     engine,
		scoreCache: cache.NewCache(cfg.Cache.ScoreTTL),
		rankings:   ranking.NewService(repo),
		limiter:    limiter,
		redis:      redisClient,
		metrics:    appMetrics,
		logger:     appLogger,
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      newRouter(srv),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("Starting server", "addr", httpServer.Addr, "environment", cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}
