package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nijaru/yt-transcript/config"
	"github.com/nijaru/yt-transcript/db"
	"github.com/nijaru/yt-transcript/handlers"
	"github.com/nijaru/yt-transcript/logger"
	"github.com/nijaru/yt-transcript/metrics"
	"github.com/nijaru/yt-transcript/middleware"
	"github.com/nijaru/yt-transcript/nodes/youtubetranscript"
	"github.com/nijaru/yt-transcript/storage"
	"github.com/nijaru/yt-transcript/transcription"
	"github.com/nijaru/yt-transcript/validation"
	"github.com/nijaru/yt-transcript/workflow"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.LoadConfig()

	if err := logger.Init(cfg.LogLevel, cfg.LogFormat, cfg.LogDir); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logger")
	}
	if err := config.ValidateConfig(cfg); err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	store, err := db.InitializeDB(cfg.DBPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize database")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close database")
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(reg)

	node := youtubetranscript.New(youtubetranscript.WithClientOptions(cfg.ClientOptions(nil)))
	registry := workflow.NewRegistry(node)

	var archiver transcription.Archiver
	if cfg.Spaces.Enabled() {
		spaces, err := storage.NewSpacesClient(context.Background(), storage.SpacesConfig{
			AccessKey: cfg.Spaces.AccessKey,
			SecretKey: cfg.Spaces.SecretKey,
			Region:    cfg.Spaces.Region,
			Endpoint:  cfg.Spaces.Endpoint,
			Bucket:    cfg.Spaces.Bucket,
		})
		if err != nil {
			logrus.WithError(err).Fatal("Failed to initialize transcript archive")
		}
		archiver = spaces
		logrus.WithField("bucket", cfg.Spaces.Bucket).Info("Archiving transcripts")
	}

	service := transcription.NewService(registry, store, archiver, cfg.ExecuteTimeout)
	h := handlers.NewHandler(service, registry, validation.NewValidator(registry, 0), store, cfg.MaxBodyBytes)
	router := h.Routes(
		middleware.NewRateLimiter(cfg.RateLimit, cfg.RateLimitInterval),
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		logrus.WithField("port", cfg.ServerPort).Info("Listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Could not listen")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop

	logrus.Info("Shutting down the server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server shutdown failed")
	}
}
