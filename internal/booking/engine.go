package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/courtside/arena-booking/internal/payment"
)

// CourtDirectory resolves courts from the arena catalog. The engine only
// needs existence and pricing; catalog management lives elsewhere.
type CourtDirectory interface {
	CourtExists(ctx context.Context, courtID uint64) (bool, error)
	CourtPriceCents(ctx context.Context, courtID uint64) (uint32, error)
}

// PaymentGateway fetches an externally created payment authorization. The
// production implementation is payment.StripeClient; calls may be slow and
// must never run while the store holds its conflict lock.
type PaymentGateway interface {
	RetrieveAuthorization(ctx context.Context, id string) (payment.Authorization, error)
}

// Store is the durable booking persistence contract. InsertIfNoConflict is
// the authoritative overlap check: it must serialize concurrent inserts for
// the same court and date so two overlapping windows can never both land,
// and reject the loser with ErrSlotConflict. UpdateStatus applies only the
// ACTIVE -> {CANCELLED|COMPLETED} transition and fails with
// ErrInvalidTransition when the booking is no longer active.
type Store interface {
	InsertIfNoConflict(ctx context.Context, b *Booking) error
	FindByID(ctx context.Context, id uint64) (*Booking, error)
	FindByOwner(ctx context.Context, ownerID uint64) ([]Booking, error)
	FindByCourtAndDate(ctx context.Context, courtID uint64, date string) ([]Booking, error)
	UpdateStatus(ctx context.Context, id uint64, to string) (*Booking, error)
}

// Engine orchestrates booking creation, cancellation and reads. It owns no
// locks itself: the conflict pre-check is advisory and the store's insert
// provides the only binding no-double-booking guarantee.
type Engine struct {
	courts   CourtDirectory
	payments PaymentGateway
	store    Store
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the engine's time source. Tests use it to pin "now"
// when checking history partitioning and derived completion.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine constructs the lifecycle engine. All dependencies must be
// non-nil.
func NewEngine(courts CourtDirectory, payments PaymentGateway, store Store, opts ...Option) *Engine {
	if courts == nil || payments == nil || store == nil {
		panic("nil dependency passed to NewEngine")
	}
	e := &Engine{courts: courts, payments: payments, store: store, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateBooking validates the request, pre-checks the window against
// existing active bookings, reconciles the optional payment authorization
// and finally claims the slot through the store. The pre-check runs before
// the gateway call so an obviously taken slot never costs a network round
// trip; the insert re-checks under lock, so a request that passed the
// pre-check can still lose the race and surface ErrSlotConflict even after
// its payment settled. The authorization is not voided in that case; that
// reconciliation belongs to the payment provider side.
func (e *Engine) CreateBooking(ctx context.Context, req CreateRequest) (*Booking, error) {
	if req.OwnerID == 0 {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidRequest)
	}
	if err := req.Window.Validate(); err != nil {
		return nil, err
	}
	if req.AuthorizationID == "" && req.AmountCents > 0 {
		return nil, fmt.Errorf("%w: amount_cents requires authorization_id", ErrInvalidRequest)
	}

	exists, err := e.courts.CourtExists(ctx, req.CourtID)
	if err != nil {
		return nil, fmt.Errorf("%w: court lookup: %v", ErrStoreUnavailable, err)
	}
	if !exists {
		return nil, ErrCourtNotFound
	}

	// Advisory pre-check over a fresh snapshot. Cheap rejection before any
	// payment-gateway traffic; the store repeats the check under lock.
	existing, err := e.store.FindByCourtAndDate(ctx, req.CourtID, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: load bookings: %v", ErrStoreUnavailable, err)
	}
	if HasConflict(activeWindows(existing), req.Window) {
		return nil, ErrSlotConflict
	}

	b := &Booking{
		Reference:     uuid.NewString(),
		OwnerID:       req.OwnerID,
		Window:        req.Window,
		Status:        StatusActive,
		PaymentStatus: PaymentNotRequired,
	}

	if req.AuthorizationID != "" {
		rec, err := e.reconcilePayment(ctx, req)
		if err != nil {
			return nil, err
		}
		b.PaymentStatus = PaymentCompleted
		b.Payment = rec
	}

	if err := e.store.InsertIfNoConflict(ctx, b); err != nil {
		if errors.Is(err, ErrSlotConflict) {
			return nil, ErrSlotConflict
		}
		return nil, fmt.Errorf("%w: insert booking: %v", ErrStoreUnavailable, err)
	}
	return b, nil
}

// reconcilePayment fetches the authorization and verifies it is settled and
// bound to the requesting user and court, that its amount matches the
// server-side price (hourly court price times duration) and, when the
// caller stated an amount, that it agrees too. The recorded amount always
// comes from the authorization, not the request.
func (e *Engine) reconcilePayment(ctx context.Context, req CreateRequest) (*PaymentRecord, error) {
	auth, err := e.payments.RetrieveAuthorization(ctx, req.AuthorizationID)
	if err != nil {
		if errors.Is(err, payment.ErrAuthorizationNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("%w: payment gateway: %v", ErrStoreUnavailable, err)
	}
	if auth.CourtID != req.CourtID || auth.UserID != req.OwnerID {
		return nil, fmt.Errorf("%w: authorization bound to a different court or user", ErrPaymentMismatch)
	}
	price, err := e.courts.CourtPriceCents(ctx, req.CourtID)
	if err != nil {
		return nil, fmt.Errorf("%w: court price lookup: %v", ErrStoreUnavailable, err)
	}
	if expected := uint64(price) * uint64(req.DurationHours); uint64(auth.AmountCents) != expected {
		return nil, fmt.Errorf("%w: authorized amount does not match the court price", ErrPaymentMismatch)
	}
	if req.AmountCents > 0 && auth.AmountCents != req.AmountCents {
		return nil, fmt.Errorf("%w: authorized amount differs from requested amount", ErrPaymentMismatch)
	}
	if auth.Status != payment.StatusSucceeded {
		return nil, fmt.Errorf("%w: status is %q", ErrPaymentIncomplete, auth.Status)
	}
	return &PaymentRecord{AmountCents: auth.AmountCents, AuthorizationID: auth.ID}, nil
}

// CancelBooking moves an active booking owned by the caller to CANCELLED.
// Bookings whose window has already elapsed read as completed and can no
// longer be cancelled. No refund is attempted.
func (e *Engine) CancelBooking(ctx context.Context, ownerID, bookingID uint64) (*Booking, error) {
	b, err := e.findOwned(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}
	if b.EffectiveStatus(e.now()) != StatusActive {
		return nil, ErrInvalidTransition
	}
	updated, err := e.store.UpdateStatus(ctx, bookingID, StatusCancelled)
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrBookingNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: update status: %v", ErrStoreUnavailable, err)
	}
	return updated, nil
}

// GetBooking returns a single booking scoped to its owner, with the
// derived read-time status applied.
func (e *Engine) GetBooking(ctx context.Context, ownerID, bookingID uint64) (*Booking, error) {
	b, err := e.findOwned(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}
	b.Status = b.EffectiveStatus(e.now())
	return b, nil
}

// ListBookings returns every booking owned by the caller, sorted by date
// then start hour for deterministic output.
func (e *Engine) ListBookings(ctx context.Context, ownerID uint64) ([]Booking, error) {
	items, err := e.store.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: load bookings: %v", ErrStoreUnavailable, err)
	}
	now := e.now()
	for i := range items {
		items[i].Status = items[i].EffectiveStatus(now)
	}
	sortByWindow(items)
	return items, nil
}

// ListBookingHistory partitions the caller's bookings into upcoming and
// past. Active means stored ACTIVE with the window end still in the
// future; everything else (cancelled, completed, or elapsed) is past. The
// two groups are disjoint and cover all bookings.
func (e *Engine) ListBookingHistory(ctx context.Context, ownerID uint64) (History, error) {
	items, err := e.store.FindByOwner(ctx, ownerID)
	if err != nil {
		return History{}, fmt.Errorf("%w: load bookings: %v", ErrStoreUnavailable, err)
	}
	now := e.now()
	h := History{Active: []Booking{}, Past: []Booking{}}
	for _, b := range items {
		if b.Status == StatusActive && b.End().After(now) {
			h.Active = append(h.Active, b)
			continue
		}
		b.Status = b.EffectiveStatus(now)
		h.Past = append(h.Past, b)
	}
	sortByWindow(h.Active)
	sortByWindow(h.Past)
	return h, nil
}

// findOwned loads a booking and enforces ownership. A booking owned by
// someone else is indistinguishable from a missing one.
func (e *Engine) findOwned(ctx context.Context, ownerID, bookingID uint64) (*Booking, error) {
	b, err := e.store.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%w: load booking: %v", ErrStoreUnavailable, err)
	}
	if b.OwnerID != ownerID {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

// activeWindows extracts the windows of stored-ACTIVE bookings; only those
// participate in conflict detection.
func activeWindows(items []Booking) []Window {
	out := make([]Window, 0, len(items))
	for _, b := range items {
		if b.Status == StatusActive {
			out = append(out, b.Window)
		}
	}
	return out
}

func sortByWindow(items []Booking) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date < items[j].Date
		}
		if items[i].StartHour != items[j].StartHour {
			return items[i].StartHour < items[j].StartHour
		}
		return items[i].ID < items[j].ID
	})
}
