package booking

import (
	"fmt"
	"strings"
	"time"
)

// Booking status values as stored in the database. ACTIVE bookings
// participate in conflict checks; CANCELLED and COMPLETED are terminal.
const (
	StatusActive    = "ACTIVE"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

// Payment status values. A booking either required no payment or carries a
// settled payment record; there is no intermediate persisted state.
const (
	PaymentNotRequired = "NOT_REQUIRED"
	PaymentCompleted   = "COMPLETED"
)

// dateLayout is the calendar-day format accepted at the boundary and stored
// with every booking. All window arithmetic happens in UTC.
const dateLayout = "2006-01-02"

// Window describes the time extent of a reservation: a court, a calendar
// date and an hour-granular half-open interval [StartHour, EndHour). Start
// times are whole hours; a window never crosses midnight.
type Window struct {
	CourtID       uint64 `json:"court_id"`
	Date          string `json:"date"`
	StartHour     int    `json:"start_hour"`
	DurationHours int    `json:"duration_hours"`
}

// EndHour returns the exclusive end of the window.
func (w Window) EndHour() int { return w.StartHour + w.DurationHours }

// Validate checks the window shape: a parseable date, an hour-of-day start
// and a positive duration that keeps the window inside one calendar day.
func (w Window) Validate() error {
	if w.CourtID == 0 {
		return fmt.Errorf("%w: court_id is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(w.Date) == "" {
		return fmt.Errorf("%w: date is required", ErrInvalidRequest)
	}
	if _, err := time.Parse(dateLayout, w.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidRequest)
	}
	if w.StartHour < 0 || w.StartHour > 23 {
		return fmt.Errorf("%w: start_hour must be between 0 and 23", ErrInvalidRequest)
	}
	if w.DurationHours < 1 {
		return fmt.Errorf("%w: duration_hours must be at least 1", ErrInvalidRequest)
	}
	if w.EndHour() > 24 {
		return fmt.Errorf("%w: booking may not cross midnight", ErrInvalidRequest)
	}
	return nil
}

// End returns the UTC timestamp at which the window ends. An unparseable
// date yields the zero time; validated windows never hit that path.
func (w Window) End() time.Time {
	day, err := time.Parse(dateLayout, w.Date)
	if err != nil {
		return time.Time{}
	}
	return day.Add(time.Duration(w.EndHour()) * time.Hour)
}

// PaymentRecord captures the settled authorization attached to a booking.
// Present if and only if the booking's payment status is COMPLETED.
type PaymentRecord struct {
	AmountCents     uint32 `json:"amount_cents"`
	AuthorizationID string `json:"authorization_id"`
}

// Booking is a persisted reservation of a single court for a single time
// window. Identity is the store-generated ID; Reference is a stable UUID
// carried in events and client-facing payloads.
type Booking struct {
	ID            uint64         `json:"id"`
	Reference     string         `json:"reference"`
	OwnerID       uint64         `json:"owner_id"`
	Window                       // court, date and time range
	Status        string         `json:"status"`
	PaymentStatus string         `json:"payment_status"`
	Payment       *PaymentRecord `json:"payment,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// EffectiveStatus derives the status presented to readers: an ACTIVE
// booking whose window has fully elapsed reads as COMPLETED without the
// stored row being rewritten.
func (b *Booking) EffectiveStatus(now time.Time) string {
	if b.Status == StatusActive && !b.End().After(now) {
		return StatusCompleted
	}
	return b.Status
}

// CreateRequest carries a validated booking creation request into the
// engine. AuthorizationID and AmountCents are optional: both empty means a
// free or deferred-payment booking.
type CreateRequest struct {
	OwnerID uint64
	Window
	AuthorizationID string
	AmountCents     uint32
}

// History splits a user's bookings into upcoming and past groups. The two
// slices are disjoint and together cover every booking the user owns.
type History struct {
	Active []Booking `json:"active"`
	Past   []Booking `json:"past"`
}
