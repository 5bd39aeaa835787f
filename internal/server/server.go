// Package server exposes the acquisition and horoscope pipeline over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"incident-horoscope/internal/config"
)

// New wires up the HTTP handlers and returns a configured server.
func New(cfg config.ServerConfig, handler *Handler, logger zerolog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(logger),
	)

	api := router.Group("/api")
	{
		api.GET("/ephemeris", handler.GetEphemeris)
		api.POST("/ephemeris/bulk", handler.BulkEphemeris)
		api.GET("/ephemeris/test", handler.TestHorizons)
		api.GET("/horoscope", handler.GetHoroscope)
	}

	router.GET("/health", handler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &http.Server{
		Addr:           cfg.Address,
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	logger = logger.With().Str("component", "http").Logger()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Msg("http request")
	}
}
