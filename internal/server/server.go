// Package server exposes the report pipelines over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// ReportsPrefix is the URL prefix the output directory is served under.
const ReportsPrefix = "/reports"

// NewRouter builds the echo instance with every route registered.
func NewRouter(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error == nil {
				zap.S().Infof("%d %s", v.Status, v.URI)
			} else {
				zap.S().Warnf("%d %s - %v", v.Status, v.URI, v.Error)
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.Static(ReportsPrefix, h.OutputDir)
	e.GET("/health", h.Health)

	api := e.Group("/api")
	api.POST("/fundamentals/:symbol", h.RunFundamentals)
	api.GET("/fundamentals/:symbol/history", h.History)
	api.POST("/portfolio", h.RunPortfolio)
	return e
}

// Serve runs e on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		zap.S().Infof("starting server on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	zap.S().Info("shutting down server")
	return e.Shutdown(shutdownCtx)
}
