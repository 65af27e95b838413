package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/courtside/arena-booking/internal/booking"
	"github.com/courtside/arena-booking/internal/queue"
	queue_publisher "github.com/courtside/arena-booking/internal/service"
)

// BookingService is the slice of the lifecycle engine the HTTP facade
// consumes. *booking.Engine satisfies it; tests substitute a stub.
type BookingService interface {
	CreateBooking(ctx context.Context, req booking.CreateRequest) (*booking.Booking, error)
	CancelBooking(ctx context.Context, ownerID, bookingID uint64) (*booking.Booking, error)
	GetBooking(ctx context.Context, ownerID, bookingID uint64) (*booking.Booking, error)
	ListBookings(ctx context.Context, ownerID uint64) ([]booking.Booking, error)
	ListBookingHistory(ctx context.Context, ownerID uint64) (booking.History, error)
}

// BookingHandler exposes the booking lifecycle over HTTP. It translates
// engine errors into status codes and publishes lifecycle events after
// successful writes; event publishing is best-effort and never fails the
// request.
type BookingHandler struct {
	Svc BookingService
}

// NewBookingHandler constructs a BookingHandler. The service must be
// non-nil.
func NewBookingHandler(svc BookingService) *BookingHandler {
	if svc == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Svc: svc}
}

// Create handles POST /v1/bookings. The body carries the court, window and
// optional payment authorization. Responds 201 with the persisted booking,
// 409 on a slot conflict, 400 on validation or payment reconciliation
// failures and 404 when the court does not exist.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		CourtID         uint64 `json:"court_id"`
		Date            string `json:"date"`
		StartHour       int    `json:"start_hour"`
		DurationHours   int    `json:"duration_hours"`
		AuthorizationID string `json:"authorization_id"`
		AmountCents     uint32 `json:"amount_cents"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	b, err := h.Svc.CreateBooking(c.Request().Context(), booking.CreateRequest{
		OwnerID: userID,
		Window: booking.Window{
			CourtID:       body.CourtID,
			Date:          body.Date,
			StartHour:     body.StartHour,
			DurationHours: body.DurationHours,
		},
		AuthorizationID: body.AuthorizationID,
		AmountCents:     body.AmountCents,
	})
	if err != nil {
		return bookingError(c, err)
	}

	go publishCreated(b)
	return c.JSON(http.StatusCreated, b)
}

// List handles GET /v1/bookings and returns all bookings of the caller.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Svc.ListBookings(c.Request().Context(), userID)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// History handles GET /v1/bookings/history and returns the caller's
// bookings split into upcoming and past groups.
func (h *BookingHandler) History(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	hist, err := h.Svc.ListBookingHistory(c.Request().Context(), userID)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, hist)
}

// Get handles GET /v1/bookings/:id, scoped to the caller.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Svc.GetBooking(c.Request().Context(), userID, id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Cancel handles PATCH /v1/bookings/:id/cancel. Only active bookings can be
// cancelled; the booking row is kept with status CANCELLED, never deleted.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Svc.CancelBooking(c.Request().Context(), userID, id)
	if err != nil {
		return bookingError(c, err)
	}

	go publishCancelled(b)
	return c.JSON(http.StatusOK, echo.Map{"message": "booking cancelled", "booking": b})
}

// bookingError maps the engine's error taxonomy onto HTTP status codes.
func bookingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrInvalidRequest),
		errors.Is(err, booking.ErrPaymentNotFound),
		errors.Is(err, booking.ErrPaymentMismatch),
		errors.Is(err, booking.ErrPaymentIncomplete),
		errors.Is(err, booking.ErrInvalidTransition):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrCourtNotFound),
		errors.Is(err, booking.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrSlotConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		log.Printf("booking: unclassified failure: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking service unavailable"})
	}
}

func publishCreated(b *booking.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = queue_publisher.PublishBookingEvent(ctx, queue.RoutingKeyBookingCreated, queue.NewBookingEvent(b))
}

func publishCancelled(b *booking.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = queue_publisher.PublishBookingEvent(ctx, queue.RoutingKeyBookingCancelled, queue.NewBookingEvent(b))
}
