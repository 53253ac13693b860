package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jang1563/worship-vocal-ai/internal/adapters/decoder"
	"github.com/jang1563/worship-vocal-ai/internal/adapters/fetch"
	"github.com/jang1563/worship-vocal-ai/internal/adapters/rest"
	"github.com/jang1563/worship-vocal-ai/internal/adapters/sqlite"
	"github.com/jang1563/worship-vocal-ai/internal/config"
	"github.com/jang1563/worship-vocal-ai/internal/core/ports"
	"github.com/jang1563/worship-vocal-ai/internal/core/services"
	"github.com/jang1563/worship-vocal-ai/internal/logger"
	"github.com/jang1563/worship-vocal-ai/internal/worker"
)

func main() {
	// 1. Configuration. A missing .env is fine; the environment wins.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// No logger yet.
		os.Stderr.WriteString("FATAL: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString("FATAL: " + err.Error() + "\n")
		os.Exit(1)
	}

	code := serve(cfg, log)
	_ = log.Sync()
	os.Exit(code)
}

// serve runs the server and maps its outcome to a process exit code.
func serve(cfg config.Config, log *zap.Logger) int {
	if err := run(cfg, log); err != nil {
		log.Error("server exited", zap.Error(err))
		return 1
	}
	return 0
}

func run(cfg config.Config, log *zap.Logger) error {
	cal, err := config.LoadCalibration(cfg.CalibrationFile)
	if err != nil {
		return err
	}

	// 2. Driven adapters
	repo, err := sqlite.NewAdapter(cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	var fetcher ports.AudioFetcher
	if cfg.Fetch.Enabled {
		fetcher = fetch.NewClient(fetch.Config{
			Timeout:      cfg.Fetch.Timeout,
			MaxBytes:     cfg.Fetch.MaxBytes,
			MaxRetries:   cfg.Fetch.MaxRetries,
			BaseBackoff:  cfg.Fetch.Backoff,
			AllowedHosts: cfg.Fetch.AllowedHosts,
			ClientID:     cfg.Fetch.ClientID,
			ClientSecret: cfg.Fetch.ClientSecret,
			TokenURL:     cfg.Fetch.TokenURL,
			Scopes:       cfg.Fetch.Scopes,
		}, log.Named("fetch"))
	}

	// 3. Core
	analyzer, err := services.NewAnalyzer(cal, log.Named("analyzer"))
	if err != nil {
		return err
	}
	svc := services.NewOrchestrator(analyzer, decoder.New(cfg.MaxRecordingSeconds), fetcher, repo, log.Named("service"))

	// 4. Driving adapters
	var pool *worker.Pool
	if fetcher != nil {
		pool = worker.NewPool(svc, cfg.Workers, cfg.QueueSize, log.Named("worker"))
		pool.Start()
		defer pool.Stop()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           rest.NewHandler(svc, pool, log.Named("http")),
		ReadHeaderTimeout: 15 * time.Second,
	}

	// 5. Serve until signalled
	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()
	log.Info("vocal scoring API listening",
		zap.String("addr", srv.Addr),
		zap.String("calibration_version", cal.Version),
		zap.Bool("remote_fetch", fetcher != nil),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown error", zap.Error(err))
		}
	}
	return nil
}
