// Package handler exposes HTTP handlers for both authenticated and public endpoints.
// This file covers the arena catalog: owners create arenas and courts, while
// unauthenticated users browse them. Public responses are sanitized so owner
// IDs and timestamps never leak.
package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/courtside/arena-booking/internal/repository"
)

// ArenaHandler aggregates the repository needed for catalog management and
// public browsing.
type ArenaHandler struct {
	ArenaRepo *repository.ArenaRepo
}

// NewArenaHandler constructs an ArenaHandler.
func NewArenaHandler(repo *repository.ArenaRepo) *ArenaHandler {
	return &ArenaHandler{ArenaRepo: repo}
}

// PublicArena is an arena exposed via the public API. It contains only safe
// fields.
type PublicArena struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// PublicCourt is a court exposed via the public API.
type PublicCourt struct {
	ID                uint64 `json:"id"`
	Name              string `json:"name"`
	Sport             string `json:"sport"`
	PricePerHourCents uint32 `json:"price_per_hour_cents"`
}

// CreateArena handles POST /v1/arenas and creates a new arena for the
// authenticated owner.
func (h *ArenaHandler) CreateArena(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Name        string `json:"name"`
		Location    string `json:"location"`
		Description string `json:"description"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	location := strings.TrimSpace(body.Location)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if location == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "location is required"})
	}
	arena := &repository.Arena{
		OwnerID:     ownerID,
		Name:        name,
		Location:    location,
		Description: strings.TrimSpace(body.Description),
	}
	if err := h.ArenaRepo.CreateArena(c.Request().Context(), arena); err != nil {
		if repository.IsDuplicateEntry(err) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "arena name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create arena"})
	}
	return c.JSON(http.StatusCreated, arena)
}

// CreateCourt handles POST /v1/arenas/:id/courts. The arena must belong to
// the authenticated owner.
func (h *ArenaHandler) CreateCourt(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	arenaID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Name              string `json:"name"`
		Sport             string `json:"sport"`
		PricePerHourCents uint32 `json:"price_per_hour_cents"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	sport := strings.TrimSpace(body.Sport)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if sport == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sport is required"})
	}
	if body.PricePerHourCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_per_hour_cents must be positive"})
	}
	// ownership check before any insert
	if _, err := h.ArenaRepo.GetArenaByIDAndOwner(c.Request().Context(), arenaID, ownerID); err != nil {
		if err == repository.ErrArenaNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "arena not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	court := &repository.Court{
		ArenaID:           arenaID,
		Name:              name,
		Sport:             sport,
		PricePerHourCents: body.PricePerHourCents,
	}
	if err := h.ArenaRepo.CreateCourt(c.Request().Context(), court); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create court"})
	}
	return c.JSON(http.StatusCreated, court)
}

// ListMyArenas handles GET /v1/my-arenas and returns all arenas owned by
// the authenticated user.
func (h *ArenaHandler) ListMyArenas(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.ArenaRepo.ListArenasByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetPublicArenas returns the arena catalog for unauthenticated users.
func (h *ArenaHandler) GetPublicArenas(c echo.Context) error {
	arenas, err := h.ArenaRepo.ListArenas(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicArena, 0, len(arenas))
	for _, a := range arenas {
		out = append(out, PublicArena{ID: a.ID, Name: a.Name, Location: a.Location})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetPublicCourts lists active courts of an arena for unauthenticated users.
func (h *ArenaHandler) GetPublicCourts(c echo.Context) error {
	ctx := c.Request().Context()
	arenaID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	courts, err := h.ArenaRepo.ListCourtsByArena(ctx, arenaID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicCourt, 0, len(courts))
	for _, ct := range courts {
		if !ct.IsActive {
			continue
		}
		out = append(out, PublicCourt{ID: ct.ID, Name: ct.Name, Sport: ct.Sport, PricePerHourCents: ct.PricePerHourCents})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
