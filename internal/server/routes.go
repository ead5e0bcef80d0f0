// Package server exposes the solver over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pdrpinto/sokoban/internal/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the sokoban endpoints under rg.
//
//	POST /sokoban/solve
//	POST /sokoban/taboo
//	POST /sokoban/check
//	POST /sokoban/explore
//	GET  /sokoban/health
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	api := rg.Group("/sokoban")
	{
		api.POST("/solve", handlers.HandleSolve)
		api.POST("/taboo", handlers.HandleTaboo)
		api.POST("/check", handlers.HandleCheck)
		api.POST("/explore", handlers.HandleExplore)
		api.GET("/health", handlers.HandleHealth)
	}
}

// NewRouter builds the engine: request IDs and access logging on every
// route, the API under /v1 and Prometheus metrics at /metrics.
func NewRouter(handlers *Handlers, logger *slog.Logger, maxBodyBytes int64) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestContext(logger, maxBodyBytes))
	RegisterRoutes(router.Group("/v1"), handlers)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

// requestContext tags the request with an ID, carries a request-scoped logger
// in its context and logs the outcome.
func requestContext(logger *slog.Logger, maxBodyBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		requestID := getOrCreateRequestID(c)
		reqLogger := logger.With("request_id", requestID)
		if maxBodyBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
		}
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), reqLogger))

		c.Next()

		reqLogger.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(started))
	}
}

// Serve runs router on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, router http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger := logging.FromContext(ctx)
	logger.Info("server listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
