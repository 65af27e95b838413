package router

import (
	"github.com/labstack/echo/v4"

	"github.com/courtside/arena-booking/internal/handler"
	"github.com/courtside/arena-booking/internal/middleware"
)

// RegisterBookings registers booking lifecycle endpoints under /v1. All
// routes require a valid JWT; any authenticated role may book. The optional
// limit middleware (redis token bucket) throttles write-heavy clients.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	mws := []echo.MiddlewareFunc{middleware.JWTAuth(jwtSecret)}
	if limit != nil {
		mws = append(mws, limit)
	}
	g := e.Group("/v1", mws...)

	g.POST("/bookings", h.Create)
	g.GET("/bookings", h.List)
	g.GET("/bookings/history", h.History)
	g.GET("/bookings/:id", h.Get)
	g.PATCH("/bookings/:id/cancel", h.Cancel)
}
