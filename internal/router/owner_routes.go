package router

import (
	"github.com/labstack/echo/v4"

	"github.com/courtside/arena-booking/internal/handler"
	"github.com/courtside/arena-booking/internal/middleware"
)

// RegisterOwnerArenas registers OWNER-scoped catalog management under /v1.
// All routes require a valid JWT and the OWNER role.
func RegisterOwnerArenas(e *echo.Echo, h *handler.ArenaHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER"),
	)

	g.POST("/arenas", h.CreateArena)
	g.POST("/arenas/:id/courts", h.CreateCourt)
	g.GET("/my-arenas", h.ListMyArenas)
}
