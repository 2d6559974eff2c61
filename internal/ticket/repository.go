package ticket

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the PostgreSQL-backed ticket store. Atomicity of the
// redemption race rests on the conditional UPDATE in CheckIn: the row
// transitions only while still in the registered state, so of N concurrent
// verifications exactly one sees a row affected.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a ticket repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

// SetTicketHash replaces the registration's ticket hash in a single update.
func (r *Repository) SetTicketHash(ctx context.Context, registrationID uuid.UUID, hash string) (bool, error) {
	const q = `UPDATE registrations SET ticket_hash = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, registrationID, hash)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// FindByTicketHash returns the registration holding the hash, joined with
// the attendee's display name and role. ticket_hash is unique, so at most
// one row matches.
func (r *Repository) FindByTicketHash(ctx context.Context, hash string) (*Attendee, error) {
	const q = `SELECT r.id, r.status, r.check_in_at, p.full_name, p.role
		FROM registrations r
		JOIN profiles p ON p.id = r.user_id
		WHERE r.ticket_hash = $1`
	var a Attendee
	err := r.pool.QueryRow(ctx, q, hash).Scan(&a.RegistrationID, &a.Status, &a.CheckInAt, &a.FullName, &a.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CheckIn marks the registration attended, conditional on it still being
// registered. Returns false when a concurrent check-in already won.
func (r *Repository) CheckIn(ctx context.Context, registrationID uuid.UUID, staffID *uuid.UUID, notes *string, at time.Time) (bool, error) {
	const q = `UPDATE registrations
		SET status = 'attended', check_in_at = $2, checked_in_by = $3, attendance_notes = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'registered'`
	tag, err := r.pool.Exec(ctx, q, registrationID, at, staffID, notes)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
