package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aeye-server/internal/adapter/api"
	"aeye-server/internal/adapter/metrics"
	"aeye-server/internal/adapter/store"
	"aeye-server/internal/adapter/system"
	"aeye-server/internal/config"
	"aeye-server/internal/domain/catalog"
	"aeye-server/internal/domain/repository"
	"aeye-server/internal/logging"
	"aeye-server/internal/usecase"
	"aeye-server/web"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		slog.Error("failed to build logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	// Cancelled on SIGINT/SIGTERM; pending simulated delays end with it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Uploads directory exists whether or not saving is on.
	sink, err := store.NewDiskSink(cfg.UploadsDir)
	if err != nil {
		logger.Error("failed to prepare uploads directory", "error", err)
		os.Exit(1)
	}
	var imageSink repository.ImageSink
	if cfg.SaveImages {
		imageSink = sink
		logger.Info("images will be saved", "dir", sink.Dir())
	}

	// Usage counting: Redis when configured, memory otherwise
	var usage repository.UsageCounter = store.NewMemoryCounter()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis not reachable yet, counting locally until it is", "addr", cfg.RedisAddr, "error", err)
		}
		cancel()

		usage = usecase.NewResilientUsage(store.NewRedisCounter(rdb, cfg.RedisPrefix), usage, logger)
	}

	reg := prometheus.NewRegistry()
	analysisMetrics := metrics.NewAnalysisMetrics(reg)

	var probe repository.ProcessProbe
	if p, err := system.NewProcessProbe(); err != nil {
		logger.Warn("process probe unavailable, memory will not be reported", "error", err)
	} else {
		probe = p
	}

	responder := usecase.NewResponder(usecase.ResponderConfig{
		Catalogs: catalog.Default(),
		Policy:   usecase.DefaultPolicy(),
		Rand:     usecase.NewSeededRand(uint64(time.Now().UnixNano())),
		Sink:     imageSink,
		Usage:    usage,
		Observer: analysisMetrics,
		Logger:   logger,
	})

	info := usecase.ServerInfo{
		Name:        cfg.ServerName,
		Version:     cfg.AppVersion,
		SaveImages:  cfg.SaveImages,
		MaxUploadMB: cfg.BodyLimitMB,
	}
	status := usecase.NewStatusService(info, probe, usage, logger)

	// Initialize API Layer (Delivery Layer)
	app := api.NewApp(api.AppConfig{
		Name:      cfg.ServerName,
		BodyLimit: cfg.BodyLimit(),
	}, logger)

	handler := api.NewHandler(ctx, responder, status, info, logger)
	api.SetupRouter(app, handler, api.RouterOptions{
		AccessLog:        os.Stdout,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		Metrics:          analysisMetrics.Handler(),
		Panel:            web.Panel(),
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mock AI analysis server running",
			"port", cfg.Port,
			"analyze", "POST /analyze",
			"health", "GET /health",
			"panel", "GET /panel/",
		)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("received shutdown signal, shutting down gracefully")
	}

	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
