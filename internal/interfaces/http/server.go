// Package httpserver hosts the chemprep HTTP API behind a gin router with
// structured request logging, Prometheus instrumentation and graceful
// shutdown.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/ChemPrep/internal/config"
	"github.com/turtacn/ChemPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemPrep/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemPrep/internal/interfaces/http/handlers"
	"github.com/turtacn/ChemPrep/pkg/errors"
)

// Server wraps the gin router and the underlying http.Server.
type Server struct {
	cfg     config.ServerConfig
	logger  logging.Logger
	metrics *prometheus.Metrics
	router  *gin.Engine
}

// New builds the router and mounts the API. metrics may be nil; the
// /metrics endpoint is then omitted.
func New(cfg config.ServerConfig, api *handlers.API, metrics *prometheus.Metrics, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.Named("server")

	gin.SetMode(cfg.Mode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{cfg: cfg, logger: logger, metrics: metrics, router: router}
	router.Use(s.observe())

	api.Register(router)
	if metrics != nil && cfg.EnableMetrics {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	return s
}

// Router exposes the handler for tests and embedding.
func (s *Server) Router() http.Handler { return s.router }

// observe logs each request and feeds the Prometheus instruments.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		c.Next()
		elapsed := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		if s.metrics != nil {
			s.metrics.ObserveHTTP(c.Request.Method, path, strconv.Itoa(status), elapsed)
		}
		s.logger.Info("request handled",
			logging.String("request_id", requestID),
			logging.String("method", c.Request.Method),
			logging.String("path", path),
			logging.Int("status", status),
			logging.Duration("elapsed", elapsed),
		)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully with a
// 10-second drain window.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", logging.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "http server failed")
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "http server shutdown failed")
	}
	return nil
}
