// Package repository contains data access logic separated from HTTP handlers.
// This file defines the Arena and Court records plus the repository backing
// the arena catalog. The catalog is a plain CRUD store; the booking engine
// only consults it for court existence and pricing.
package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Arena represents a sports facility owned by a user. Each arena can
// contain multiple bookable courts.
type Arena struct {
	ID          uint64 `json:"id"`
	OwnerID     uint64 `json:"owner_id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Court is a bookable unit inside an arena. PricePerHourCents feeds the
// payment-intent amount computed on the client side; the booking engine
// re-reads it when cross-checking authorizations.
type Court struct {
	ID                uint64 `json:"id"`
	ArenaID           uint64 `json:"arena_id"`
	Name              string `json:"name"`
	Sport             string `json:"sport"`
	PricePerHourCents uint32 `json:"price_per_hour_cents"`
	IsActive          bool   `json:"is_active"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

// ErrArenaNotFound is returned when an arena cannot be found in the DB.
var ErrArenaNotFound = errors.New("arena not found")

// ErrCourtNotFound is returned when a court cannot be found in the DB.
var ErrCourtNotFound = errors.New("court not found")

// ArenaRepo encapsulates all database queries related to arenas and their
// courts. It also implements the booking engine's CourtDirectory contract.
type ArenaRepo struct {
	db *sql.DB
}

// NewArenaRepo constructs an ArenaRepo with the provided DB handle.
func NewArenaRepo(db *sql.DB) *ArenaRepo {
	return &ArenaRepo{db: db}
}

// CreateArena inserts a new arena. On success the ID and timestamp fields
// are populated from the stored row.
func (r *ArenaRepo) CreateArena(ctx context.Context, a *Arena) error {
	const qInsert = "INSERT INTO arenas (owner_id, name, location, description) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, a.OwnerID, a.Name, a.Location, a.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)

	const qSelect = "SELECT created_at, updated_at FROM arenas WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, a.ID).Scan(&a.CreatedAt, &a.UpdatedAt)
}

// GetArenaByIDAndOwner fetches an arena by id but only if it belongs to the
// specified owner. If the arena doesn't exist or is owned by someone else,
// ErrArenaNotFound is returned.
func (r *ArenaRepo) GetArenaByIDAndOwner(ctx context.Context, id, ownerID uint64) (*Arena, error) {
	const q = "SELECT id, owner_id, name, location, description, created_at, updated_at FROM arenas WHERE id = ? AND owner_id = ?"
	var a Arena
	if err := r.db.QueryRowContext(ctx, q, id, ownerID).Scan(&a.ID, &a.OwnerID, &a.Name, &a.Location, &a.Description, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrArenaNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListArenas returns the full catalog ordered by id. Public browsing uses
// this; responses are cached at the middleware layer.
func (r *ArenaRepo) ListArenas(ctx context.Context) ([]*Arena, error) {
	const q = "SELECT id, owner_id, name, location, description, created_at, updated_at FROM arenas ORDER BY id"
	return r.scanArenas(ctx, q)
}

// ListArenasByOwner returns all arenas for a specific owner ordered by id.
func (r *ArenaRepo) ListArenasByOwner(ctx context.Context, ownerID uint64) ([]*Arena, error) {
	const q = "SELECT id, owner_id, name, location, description, created_at, updated_at FROM arenas WHERE owner_id = ? ORDER BY id"
	return r.scanArenas(ctx, q, ownerID)
}

func (r *ArenaRepo) scanArenas(ctx context.Context, q string, args ...any) ([]*Arena, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*Arena, 0)
	for rows.Next() {
		a := new(Arena)
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Name, &a.Location, &a.Description, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCourt inserts a court under an arena. Ownership of the arena must
// be verified by the caller beforehand.
func (r *ArenaRepo) CreateCourt(ctx context.Context, c *Court) error {
	const qInsert = "INSERT INTO courts (arena_id, name, sport, price_per_hour_cents) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, c.ArenaID, c.Name, c.Sport, c.PricePerHourCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)

	const qSelect = "SELECT is_active, created_at, updated_at FROM courts WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, c.ID).Scan(&c.IsActive, &c.CreatedAt, &c.UpdatedAt)
}

// ListCourtsByArena returns all courts under an arena ordered by id.
func (r *ArenaRepo) ListCourtsByArena(ctx context.Context, arenaID uint64) ([]*Court, error) {
	const q = `SELECT id, arena_id, name, sport, price_per_hour_cents, is_active, created_at, updated_at
	           FROM courts WHERE arena_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, arenaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*Court, 0)
	for rows.Next() {
		c := new(Court)
		if err := rows.Scan(&c.ID, &c.ArenaID, &c.Name, &c.Sport, &c.PricePerHourCents, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CourtExists reports whether an active court with the given id exists.
// Part of the booking engine's CourtDirectory contract.
func (r *ArenaRepo) CourtExists(ctx context.Context, courtID uint64) (bool, error) {
	const q = "SELECT 1 FROM courts WHERE id = ? AND is_active = 1 LIMIT 1"
	var one int
	err := r.db.QueryRowContext(ctx, q, courtID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CourtPriceCents returns the hourly price of an active court, or
// ErrCourtNotFound when the court is missing or inactive.
func (r *ArenaRepo) CourtPriceCents(ctx context.Context, courtID uint64) (uint32, error) {
	const q = "SELECT price_per_hour_cents FROM courts WHERE id = ? AND is_active = 1 LIMIT 1"
	var price uint32
	if err := r.db.QueryRowContext(ctx, q, courtID).Scan(&price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrCourtNotFound
		}
		return 0, err
	}
	return price, nil
}
