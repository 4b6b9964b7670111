/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Chroma-Case/PLDGenerator/internal/adapters/github"
	"github.com/Chroma-Case/PLDGenerator/internal/adapters/openai"
	"github.com/Chroma-Case/PLDGenerator/internal/adapters/telegram"
	"github.com/Chroma-Case/PLDGenerator/internal/config"
	apihttp "github.com/Chroma-Case/PLDGenerator/internal/http"
	"github.com/Chroma-Case/PLDGenerator/internal/jobs"
	"github.com/Chroma-Case/PLDGenerator/internal/logger"
	"github.com/Chroma-Case/PLDGenerator/internal/metrics"
	"github.com/Chroma-Case/PLDGenerator/internal/repo"
	"github.com/Chroma-Case/PLDGenerator/internal/services"
)

// lockedService routes admin runs through the cron lock.
type lockedService struct {
	*services.Service
	cron *jobs.Cron
}

func (s lockedService) RunScheduled(ctx context.Context) error {
	ran, err := s.cron.RunOnce(ctx)
	if err == nil && !ran {
		return errors.New("a generation is already running")
	}
	return err
}

func main() {
	cfg := config.Load()
	log := logger.New(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store
	store, err := repo.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("store open failed")
	}
	defer store.Close()

	// Adapters
	gh := github.NewClient(cfg, log)
	var llm services.Summarizer
	if cfg.OpenAIKey != "" {
		llm = openai.NewClient(cfg, log)
	}
	var tg services.Notifier
	if cfg.TelegramToken != "" {
		tg = telegram.NewClient(cfg, log)
	}

	// Services
	m := metrics.New()
	svc := services.New(cfg, log, gh, llm, tg, store, m)

	// Cron
	cron, err := jobs.NewCron(cfg, log, svc, store)
	if err != nil {
		log.Fatal().Err(err).Msg("cron setup failed")
	}
	cron.Start()
	defer cron.Stop()

	// HTTP server (Gin)
	router := apihttp.NewRouter(cfg, log, lockedService{Service: svc, cron: cron}, m.Handler())
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreDriver).Str("cron", cfg.ReportCron).Msg("pld api started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info().Msg("shutting down...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server error")
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
}
