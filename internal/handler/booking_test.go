package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/courtside/arena-booking/internal/booking"
)

// stubService returns canned results so tests can focus on the HTTP layer.
type stubService struct {
	createErr error
	cancelErr error
	booking   *booking.Booking
}

func (s *stubService) CreateBooking(ctx context.Context, req booking.CreateRequest) (*booking.Booking, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	b := *s.booking
	b.OwnerID = req.OwnerID
	b.Window = req.Window
	return &b, nil
}

func (s *stubService) CancelBooking(ctx context.Context, ownerID, bookingID uint64) (*booking.Booking, error) {
	if s.cancelErr != nil {
		return nil, s.cancelErr
	}
	b := *s.booking
	b.Status = booking.StatusCancelled
	return &b, nil
}

func (s *stubService) GetBooking(ctx context.Context, ownerID, bookingID uint64) (*booking.Booking, error) {
	return s.booking, nil
}

func (s *stubService) ListBookings(ctx context.Context, ownerID uint64) ([]booking.Booking, error) {
	return []booking.Booking{*s.booking}, nil
}

func (s *stubService) ListBookingHistory(ctx context.Context, ownerID uint64) (booking.History, error) {
	return booking.History{Active: []booking.Booking{*s.booking}, Past: []booking.Booking{}}, nil
}

func newStub() *stubService {
	return &stubService{
		booking: &booking.Booking{
			ID:        7,
			Reference: "ref-7",
			OwnerID:   42,
			Window: booking.Window{
				CourtID:       1,
				Date:          "2025-06-01",
				StartHour:     10,
				DurationHours: 2,
			},
			Status:        booking.StatusActive,
			PaymentStatus: booking.PaymentNotRequired,
		},
	}
}

// ctxWithUser builds an echo context carrying the claims JWTAuth would set.
func ctxWithUser(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(42)) // numeric JWT claims decode as float64
	c.Set("role", "PLAYER")
	return c, rec
}

func TestCreateReturnsCreated(t *testing.T) {
	h := NewBookingHandler(newStub())
	c, rec := ctxWithUser(http.MethodPost, "/v1/bookings",
		`{"court_id":1,"date":"2025-06-01","start_hour":10,"duration_hours":2}`)

	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	var got booking.Booking
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.OwnerID != 42 || got.CourtID != 1 {
		t.Fatalf("unexpected booking in response: %+v", got)
	}
}

func TestCreateErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", booking.ErrInvalidRequest, http.StatusBadRequest},
		{"payment missing", booking.ErrPaymentNotFound, http.StatusBadRequest},
		{"payment mismatch", booking.ErrPaymentMismatch, http.StatusBadRequest},
		{"payment incomplete", booking.ErrPaymentIncomplete, http.StatusBadRequest},
		{"unknown court", booking.ErrCourtNotFound, http.StatusNotFound},
		{"slot taken", booking.ErrSlotConflict, http.StatusConflict},
		{"store down", booking.ErrStoreUnavailable, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := newStub()
			stub.createErr = tc.err
			h := NewBookingHandler(stub)
			c, rec := ctxWithUser(http.MethodPost, "/v1/bookings",
				`{"court_id":1,"date":"2025-06-01","start_hour":10,"duration_hours":2}`)

			if err := h.Create(c); err != nil {
				t.Fatalf("Create: %v", err)
			}
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestCreateWithoutIdentity(t *testing.T) {
	h := NewBookingHandler(newStub())
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec) // no user_id in context

	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCancelMapsLifecycleErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"already terminal", booking.ErrInvalidTransition, http.StatusBadRequest},
		{"not owned or missing", booking.ErrBookingNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := newStub()
			stub.cancelErr = tc.err
			h := NewBookingHandler(stub)
			c, rec := ctxWithUser(http.MethodPatch, "/v1/bookings/7/cancel", "")
			c.SetParamNames("id")
			c.SetParamValues("7")

			if err := h.Cancel(c); err != nil {
				t.Fatalf("Cancel: %v", err)
			}
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestCancelBadID(t *testing.T) {
	h := NewBookingHandler(newStub())
	c, rec := ctxWithUser(http.MethodPatch, "/v1/bookings/abc/cancel", "")
	c.SetParamNames("id")
	c.SetParamValues("abc")

	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHistorySplitsGroups(t *testing.T) {
	h := NewBookingHandler(newStub())
	c, rec := ctxWithUser(http.MethodGet, "/v1/bookings/history", "")

	if err := h.History(c); err != nil {
		t.Fatalf("History: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got booking.History
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(got.Active) != 1 || len(got.Past) != 0 {
		t.Fatalf("history groups = %d active / %d past, want 1/0", len(got.Active), len(got.Past))
	}
}
