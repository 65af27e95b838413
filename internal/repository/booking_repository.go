package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/courtside/arena-booking/internal/booking"
)

// BookingRepo is the durable implementation of the booking engine's Store
// contract on MySQL. The conflict-checked insert is the concurrency-critical
// path: the overlap re-check and the insert run in one transaction with the
// candidate's competitors locked, so two overlapping windows can never both
// be persisted no matter how requests interleave.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, reference, user_id, court_id,
       DATE_FORMAT(play_date, '%Y-%m-%d'), start_hour, duration_hours,
       status, payment_status, payment_amount_cents, payment_auth_id,
       created_at, updated_at`

// InsertIfNoConflict atomically claims the booking's window. Inside a
// transaction it locks every active booking row for the same court and date
// that would overlap the candidate (SELECT ... FOR UPDATE); if any exists
// the insert is abandoned with booking.ErrSlotConflict.
//
// When two transactions race for the same free window, both overlap checks
// lock an empty gap and the inserts then deadlock on each other's gap lock;
// InnoDB kills one with error 1213. The victim's transaction is re-run
// once: the second pass sees the winner's committed row and returns
// booking.ErrSlotConflict instead of surfacing the deadlock as an
// infrastructure failure.
func (r *BookingRepo) InsertIfNoConflict(ctx context.Context, b *booking.Booking) error {
	err := r.claimSlot(ctx, b)
	if isLockContention(err) {
		err = r.claimSlot(ctx, b)
	}
	return err
}

func (r *BookingRepo) claimSlot(ctx context.Context, b *booking.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const qLock = `SELECT id FROM bookings
	               WHERE court_id = ? AND play_date = ? AND status = ?
	                 AND start_hour < ? AND start_hour + duration_hours > ?
	               LIMIT 1
	               FOR UPDATE`
	var blocker uint64
	err = tx.QueryRowContext(ctx, qLock, b.CourtID, b.Date, booking.StatusActive, b.EndHour(), b.StartHour).Scan(&blocker)
	if err == nil {
		return booking.ErrSlotConflict
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lock overlapping bookings: %w", err)
	}

	var amount sql.NullInt64
	var authID sql.NullString
	if b.Payment != nil {
		amount = sql.NullInt64{Int64: int64(b.Payment.AmountCents), Valid: true}
		authID = sql.NullString{String: b.Payment.AuthorizationID, Valid: true}
	}
	const qInsert = `INSERT INTO bookings
	                 (reference, user_id, court_id, play_date, start_hour, duration_hours,
	                  status, payment_status, payment_amount_cents, payment_auth_id)
	                 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, qInsert,
		b.Reference, b.OwnerID, b.CourtID, b.Date, b.StartHour, b.DurationHours,
		b.Status, b.PaymentStatus, amount, authID)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	b.ID = uint64(id)

	const qSelect = "SELECT created_at, updated_at FROM bookings WHERE id = ?"
	if err := tx.QueryRowContext(ctx, qSelect, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("read back booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// FindByID returns a single booking or booking.ErrBookingNotFound.
func (r *BookingRepo) FindByID(ctx context.Context, id uint64) (*booking.Booking, error) {
	q := "SELECT " + bookingColumns + " FROM bookings WHERE id = ?"
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrBookingNotFound
	}
	return b, err
}

// FindByOwner returns every booking created by the given user.
func (r *BookingRepo) FindByOwner(ctx context.Context, ownerID uint64) ([]booking.Booking, error) {
	q := "SELECT " + bookingColumns + " FROM bookings WHERE user_id = ? ORDER BY play_date, start_hour, id"
	return r.queryBookings(ctx, q, ownerID)
}

// FindByCourtAndDate returns every booking for a court on a calendar day.
// The engine filters down to active windows before running its conflict
// pre-check.
func (r *BookingRepo) FindByCourtAndDate(ctx context.Context, courtID uint64, date string) ([]booking.Booking, error) {
	q := "SELECT " + bookingColumns + " FROM bookings WHERE court_id = ? AND play_date = ? ORDER BY start_hour, id"
	return r.queryBookings(ctx, q, courtID, date)
}

// UpdateStatus applies an ACTIVE -> terminal transition as a compare-and-
// swap: the UPDATE only matches while the stored status is still ACTIVE. A
// zero-row result is disambiguated with a follow-up read into
// booking.ErrBookingNotFound or booking.ErrInvalidTransition.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, to string) (*booking.Booking, error) {
	if to != booking.StatusCancelled && to != booking.StatusCompleted {
		return nil, booking.ErrInvalidTransition
	}
	const qUpdate = "UPDATE bookings SET status = ? WHERE id = ? AND status = ?"
	res, err := r.db.ExecContext(ctx, qUpdate, to, id, booking.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, booking.ErrInvalidTransition
	}
	return r.FindByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*booking.Booking, error) {
	var (
		b      booking.Booking
		amount sql.NullInt64
		authID sql.NullString
		cAt    time.Time
		uAt    time.Time
	)
	err := row.Scan(&b.ID, &b.Reference, &b.OwnerID, &b.CourtID,
		&b.Date, &b.StartHour, &b.DurationHours,
		&b.Status, &b.PaymentStatus, &amount, &authID,
		&cAt, &uAt)
	if err != nil {
		return nil, err
	}
	if authID.Valid {
		b.Payment = &booking.PaymentRecord{
			AmountCents:     uint32(amount.Int64),
			AuthorizationID: authID.String,
		}
	}
	b.CreatedAt = cAt.UTC()
	b.UpdatedAt = uAt.UTC()
	return &b, nil
}

func (r *BookingRepo) queryBookings(ctx context.Context, q string, args ...any) ([]booking.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]booking.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
