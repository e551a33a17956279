// Package router wires the HTTP routes to their handlers and installs
// the shared error boundary.
package router

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
)

// RegisterRoutes registers every route on the provided Echo instance.
// The optional limiter (nil-safe via a passthrough) applies to the API
// routes but not the health check.
func RegisterRoutes(e *echo.Echo, rh *handler.ReservationHandler, th *handler.TableHandler, limiter echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	api := e.Group("")
	if limiter != nil {
		api.Use(limiter)
	}

	api.GET("/reservations", rh.List)
	api.POST("/reservations", rh.Create)
	api.GET("/reservations/:reservation_id", rh.Read)
	api.PUT("/reservations/:reservation_id", rh.Update)
	api.PUT("/reservations/:reservation_id/status", rh.UpdateStatus)

	api.GET("/tables", th.List)
	api.GET("/tables/available", th.ListAvailable)
	api.POST("/tables", th.Create)
	api.PUT("/tables/:table_id/seat", th.Seat)
	api.DELETE("/tables/:table_id/seat", th.Unseat)
}

// Setup applies the global middleware and the error boundary that
// shapes every uncaught failure as {"error": message}.  Handlers
// normally answer their own errors; this catches panics, unknown
// routes and anything a handler lets bubble up.
func Setup(e *echo.Echo, log *zap.Logger) {
	e.HideBanner = true
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.HTTPErrorHandler = errorHandler(log)
}

func errorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		message := "internal server error"

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				message = m
			}
		}
		if status >= http.StatusInternalServerError {
			log.Error("unhandled request error",
				zap.Error(err),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
			)
		}
		if jsonErr := c.JSON(status, echo.Map{"error": message}); jsonErr != nil {
			log.Error("write error response", zap.Error(jsonErr))
		}
	}
}
