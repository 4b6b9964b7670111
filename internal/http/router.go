/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
	"net/http"

	"github.com/Chroma-Case/PLDGenerator/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter mounts the API. metricsHandler may be nil.
func NewRouter(cfg config.Config, log zerolog.Logger, svc service, metricsHandler http.Handler) *gin.Engine {
	return newRouter(NewHandlers(cfg, log, svc), cfg, log, metricsHandler)
}

func newRouter(h *Handlers, cfg config.Config, log zerolog.Logger, metricsHandler http.Handler) *gin.Engine {
	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		c.Next()
		log.Info().Str("m", c.Request.Method).Str("p", c.FullPath()).Int("s", c.Writer.Status()).Msg("http")
	})

	r.GET("/healthz", h.Healthz)
	r.GET("/reports/latest", h.LatestReport)
	r.GET("/admin/last-run", h.LastRun)
	r.POST("/admin/run", h.RunNow)
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}
	return r
}
