package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nvr-timeline/internal/platform/config"
	"nvr-timeline/internal/platform/logger"
	"nvr-timeline/internal/platform/metrics"
	"nvr-timeline/internal/timeline"

	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "8080")
	archiveURL := config.GetEnv("ARCHIVE_URL", "http://localhost:9080")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")
	logFile := config.GetEnv("LOG_FILE", "")
	debounce := config.GetEnvMillis("DEBOUNCE_MS", timeline.DefaultDebounceDelay)
	settle := config.GetEnvMillis("SETTLE_MS", timeline.DefaultSettleDelay)
	refresh := time.Duration(config.GetEnvInt("SEGMENT_REFRESH_SECONDS", 5)) * time.Second
	tz := config.GetEnv("TIMEZONE", "")

	log := logger.New(logLevel, logFormat, logFile)

	loc := time.Local
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			log.Error("invalid TIMEZONE", "timezone", tz, "error", err)
			os.Exit(1)
		}
		loc = l
	}

	archive := timeline.NewHTTPArchive(archiveURL, nil)
	met := metrics.New()
	h := timeline.NewHandler(archive, log, met, timeline.Options{
		DebounceDelay: debounce,
		SettleDelay:   settle,
		Location:      loc,
	}, refresh)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() { met.SetActiveSessions(h.SessionCount()) }).ServeHTTP(w, r)
	})
	r.Route("/api", h.Routes)

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"archive_url", archiveURL,
		"debounce_ms", debounce.Milliseconds(),
		"log_level", logLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
