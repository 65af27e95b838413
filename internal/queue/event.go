// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

import (
	"time"

	"github.com/courtside/arena-booking/internal/booking"
)

// Routing keys (also used as queue names on the default exchange) for
// booking lifecycle events.
const (
	RoutingKeyBookingCreated   = "booking.created"
	RoutingKeyBookingCancelled = "booking.cancelled"
)

// BookingEvent is published when a booking is created or cancelled. It
// carries enough information for downstream consumers to log, notify or
// feed analytics without querying the primary database.
type BookingEvent struct {
	BookingID     uint64 `json:"booking_id"`
	Reference     string `json:"reference"`
	UserID        uint64 `json:"user_id"`
	CourtID       uint64 `json:"court_id"`
	Date          string `json:"date"`
	StartHour     int    `json:"start_hour"`
	DurationHours int    `json:"duration_hours"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	AmountCents   uint32 `json:"amount_cents,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}

// NewBookingEvent builds the event payload for a persisted booking.
func NewBookingEvent(b *booking.Booking) BookingEvent {
	ev := BookingEvent{
		BookingID:     b.ID,
		Reference:     b.Reference,
		UserID:        b.OwnerID,
		CourtID:       b.CourtID,
		Date:          b.Date,
		StartHour:     b.StartHour,
		DurationHours: b.DurationHours,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if b.Payment != nil {
		ev.AmountCents = b.Payment.AmountCents
	}
	return ev
}
