package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type Routes interface {
	Register(g *echo.Group)
}

// NewRouter builds the echo instance serving routes under /api/v1.
func NewRouter(logger *zap.Logger, routes Routes) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			logger.Info("request", fields...)
			return nil
		},
	}))
	e.Pre(middleware.RemoveTrailingSlash())

	routes.Register(e.Group("/api/v1"))
	return e
}

// RegisterAndStart serves routes on address until ctx is cancelled.
func RegisterAndStart(ctx context.Context, logger *zap.Logger, address string, routes Routes) error {
	e := NewRouter(logger, routes)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", zap.String("address", address))
		errCh <- e.Start(address)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
