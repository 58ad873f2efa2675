// Package httpapi exposes the engine as a JSON API on gin.
//
// Routes:
//
//	POST /predict        {text, k?}         -> {suggestions, order}
//	GET  /sources                           -> {sources}
//	POST /toggle_source  {source, active}   -> {success, closest?}
//	POST /complete       {prefix, limit?}   -> {completions}
//	GET  /stats                             -> engine statistics
//	GET  /health
//	GET  /metrics                           prometheus exposition
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter builds the gin engine with every route and middleware.
func SetupRouter(h *Handlers, logger *log.Logger) *gin.Engine {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name": "wordchain",
			"routes": []string{
				"POST /predict",
				"GET /sources",
				"POST /toggle_source",
				"POST /complete",
				"GET /stats",
				"GET /health",
				"GET /metrics",
			},
		})
	})
	router.POST("/predict", h.Predict)
	router.GET("/sources", h.Sources)
	router.POST("/toggle_source", h.ToggleSource)
	router.POST("/complete", h.Complete)
	router.GET("/stats", h.Stats)
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", RequestID: c.GetString(requestIDKey)})
	})

	return router
}

// Serve runs the router on addr until ctx is canceled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, router http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
