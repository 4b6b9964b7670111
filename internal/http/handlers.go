/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Chroma-Case/PLDGenerator/internal/config"
	"github.com/Chroma-Case/PLDGenerator/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type service interface {
	RunScheduled(ctx context.Context) error
	GetLastRun(ctx context.Context) (*domain.Run, error)
	LatestReport(ctx context.Context) (*domain.Report, error)
}

type Handlers struct {
	cfg config.Config
	log zerolog.Logger
	svc service
	// background runs the queued generation; tests replace it to run inline.
	background func(func())
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc service) *Handlers {
	return &Handlers{cfg: cfg, log: log, svc: svc, background: func(f func()) { go f() }}
}

func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) LastRun(c *gin.Context) {
	lr, err := h.svc.GetLastRun(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if lr == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no run yet"})
		return
	}
	// the report is served by /reports/latest
	out := *lr
	out.Report = nil
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) LatestReport(c *gin.Context) {
	r, err := h.svc.LatestReport(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no report yet"})
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handlers) RunNow(c *gin.Context) {
	// detached from the request context, which ends with the response
	h.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := h.svc.RunScheduled(ctx); err != nil {
			h.log.Error().Err(err).Msg("admin run failed")
		}
	})
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
