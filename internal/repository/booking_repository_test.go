package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/courtside/arena-booking/internal/booking"
)

// The tests below drive BookingRepo against a scripted database/sql driver:
// each step answers the next query or exec in order. That keeps the
// transaction plumbing (begin, lock select, insert, read-back, commit) under
// test without a live MySQL server, in particular the deadlock handling on
// the conflict-checked insert.

type step struct {
	kind   string // "query" or "exec"
	cols   []string
	rows   [][]driver.Value
	err    error
	lastID int64
}

type script struct {
	mu    sync.Mutex
	steps []step
}

func (s *script) next(kind string) (step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.steps) == 0 {
		return step{}, fmt.Errorf("unexpected %s: script exhausted", kind)
	}
	st := s.steps[0]
	s.steps = s.steps[1:]
	if st.kind != kind {
		return step{}, fmt.Errorf("script expected %s, got %s", st.kind, kind)
	}
	return st, nil
}

func (s *script) remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.steps)
}

type scriptConnector struct{ s *script }

func (c scriptConnector) Connect(context.Context) (driver.Conn, error) {
	return &scriptConn{s: c.s}, nil
}
func (c scriptConnector) Driver() driver.Driver { return scriptDriver{} }

type scriptDriver struct{}

func (scriptDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("open by DSN not supported")
}

type scriptConn struct{ s *script }

func (c *scriptConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not scripted")
}
func (c *scriptConn) Close() error              { return nil }
func (c *scriptConn) Begin() (driver.Tx, error) { return scriptTx{}, nil }

func (c *scriptConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return scriptTx{}, nil
}

func (c *scriptConn) QueryContext(_ context.Context, _ string, _ []driver.NamedValue) (driver.Rows, error) {
	st, err := c.s.next("query")
	if err != nil {
		return nil, err
	}
	if st.err != nil {
		return nil, st.err
	}
	return &scriptRows{cols: st.cols, rows: st.rows}, nil
}

func (c *scriptConn) ExecContext(_ context.Context, _ string, _ []driver.NamedValue) (driver.Result, error) {
	st, err := c.s.next("exec")
	if err != nil {
		return nil, err
	}
	if st.err != nil {
		return nil, st.err
	}
	return scriptResult{lastID: st.lastID}, nil
}

type scriptTx struct{}

func (scriptTx) Commit() error   { return nil }
func (scriptTx) Rollback() error { return nil }

type scriptRows struct {
	cols []string
	rows [][]driver.Value
	pos  int
}

func (r *scriptRows) Columns() []string { return r.cols }
func (r *scriptRows) Close() error      { return nil }
func (r *scriptRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}

type scriptResult struct{ lastID int64 }

func (r scriptResult) LastInsertId() (int64, error) { return r.lastID, nil }
func (scriptResult) RowsAffected() (int64, error)   { return 1, nil }

func newScriptedRepo(steps ...step) (*BookingRepo, *script) {
	s := &script{steps: steps}
	db := sql.OpenDB(scriptConnector{s: s})
	return NewBookingRepo(db), s
}

func deadlockErr() error {
	return &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}
}

func testBooking() *booking.Booking {
	return &booking.Booking{
		Reference: "ref-race",
		OwnerID:   7,
		Window: booking.Window{
			CourtID:       1,
			Date:          "2025-06-01",
			StartHour:     10,
			DurationHours: 2,
		},
		Status:        booking.StatusActive,
		PaymentStatus: booking.PaymentNotRequired,
	}
}

// Two transactions racing for the same free window both pass the gap-locked
// overlap select; the slower insert is killed as a deadlock victim. The
// retry must then see the winner's committed row and report a slot
// conflict, not an infrastructure failure.
func TestInsertIfNoConflictDeadlockBecomesConflict(t *testing.T) {
	repo, s := newScriptedRepo(
		step{kind: "query", cols: []string{"id"}},                                  // overlap check: gap empty
		step{kind: "exec", err: deadlockErr()},                                     // insert loses the race
		step{kind: "query", cols: []string{"id"}, rows: [][]driver.Value{{int64(41)}}}, // retry sees the winner
	)

	err := repo.InsertIfNoConflict(context.Background(), testBooking())
	if !errors.Is(err, booking.ErrSlotConflict) {
		t.Fatalf("expected ErrSlotConflict after deadlock retry, got %v", err)
	}
	if n := s.remaining(); n != 0 {
		t.Fatalf("%d scripted steps left unconsumed", n)
	}
}

// A deadlock victim whose competitor claimed a non-overlapping window must
// succeed on the retry.
func TestInsertIfNoConflictDeadlockRetrySucceeds(t *testing.T) {
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	repo, s := newScriptedRepo(
		step{kind: "query", cols: []string{"id"}},
		step{kind: "exec", err: deadlockErr()},
		step{kind: "query", cols: []string{"id"}}, // retry: still no overlap
		step{kind: "exec", lastID: 7},
		step{kind: "query", cols: []string{"created_at", "updated_at"}, rows: [][]driver.Value{{now, now}}},
	)

	b := testBooking()
	if err := repo.InsertIfNoConflict(context.Background(), b); err != nil {
		t.Fatalf("retry after deadlock: %v", err)
	}
	if b.ID != 7 {
		t.Fatalf("booking id = %d, want 7", b.ID)
	}
	if !b.CreatedAt.Equal(now) {
		t.Fatalf("created_at not read back, got %v", b.CreatedAt)
	}
	if n := s.remaining(); n != 0 {
		t.Fatalf("%d scripted steps left unconsumed", n)
	}
}

// Non-lock failures pass through without a second transaction.
func TestInsertIfNoConflictDoesNotRetryOtherErrors(t *testing.T) {
	repo, s := newScriptedRepo(
		step{kind: "query", cols: []string{"id"}},
		step{kind: "exec", err: &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}},
	)

	err := repo.InsertIfNoConflict(context.Background(), testBooking())
	if err == nil || errors.Is(err, booking.ErrSlotConflict) {
		t.Fatalf("expected the insert error to surface, got %v", err)
	}
	if n := s.remaining(); n != 0 {
		t.Fatalf("%d scripted steps left unconsumed", n)
	}
}

func TestMySQLErrorClassification(t *testing.T) {
	wrapped := fmt.Errorf("insert booking: %w", deadlockErr())
	if !isLockContention(wrapped) {
		t.Fatal("wrapped 1213 must classify as lock contention")
	}
	if !isLockContention(&mysql.MySQLError{Number: 1205}) {
		t.Fatal("1205 must classify as lock contention")
	}
	if isLockContention(errors.New("1213")) {
		t.Fatal("string match must not classify as lock contention")
	}
	if !IsDuplicateEntry(fmt.Errorf("create: %w", &mysql.MySQLError{Number: 1062})) {
		t.Fatal("wrapped 1062 must classify as duplicate entry")
	}
	if IsDuplicateEntry(deadlockErr()) {
		t.Fatal("1213 is not a duplicate entry")
	}
}
