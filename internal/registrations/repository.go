package registrations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carecircle/backend/internal/models"
)

// Repository handles registration persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a registrations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const regColumns = `id, event_id, user_id, ticket_hash, status, check_in_at, checked_in_by, attendance_notes, created_at, updated_at`

func scanRegistration(row interface{ Scan(...any) error }) (*models.Registration, error) {
	var reg models.Registration
	err := row.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.TicketHash, &reg.Status,
		&reg.CheckInAt, &reg.CheckedInBy, &reg.AttendanceNotes, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// Create inserts a registration (unique per event+user).
func (r *Repository) Create(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error) {
	const q = `INSERT INTO registrations (event_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (event_id, user_id) DO UPDATE SET updated_at = NOW()
		RETURNING ` + regColumns
	return scanRegistration(r.pool.QueryRow(ctx, q, eventID, userID))
}

// GetByID returns a registration by ID, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	reg, err := scanRegistration(r.pool.QueryRow(ctx, `SELECT `+regColumns+` FROM registrations WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return reg, err
}

// ListByUser returns all registrations for a user, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Registration, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+regColumns+` FROM registrations WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// EventAttendee is a registration row joined with attendee display fields,
// for the staff listing at the event entrance.
type EventAttendee struct {
	RegistrationID  uuid.UUID               `json:"registration_id"`
	UserID          uuid.UUID               `json:"user_id"`
	FullName        string                  `json:"full_name"`
	Role            models.Role             `json:"role"`
	Status          models.AttendanceStatus `json:"status"`
	CheckInAt       *time.Time              `json:"check_in_at,omitempty"`
	AttendanceNotes *string                 `json:"attendance_notes,omitempty"`
}

// ListByEvent returns all registrations for an event with attendee info.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]EventAttendee, error) {
	const q = `SELECT r.id, r.user_id, p.full_name, p.role, r.status, r.check_in_at, r.attendance_notes
		FROM registrations r
		JOIN profiles p ON p.id = r.user_id
		WHERE r.event_id = $1
		ORDER BY p.full_name`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []EventAttendee
	for rows.Next() {
		var a EventAttendee
		if err := rows.Scan(&a.RegistrationID, &a.UserID, &a.FullName, &a.Role, &a.Status, &a.CheckInAt, &a.AttendanceNotes); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// CountByEvent returns total and attended registration counts for an event.
func (r *Repository) CountByEvent(ctx context.Context, eventID uuid.UUID) (total, attended int, err error) {
	const q = `SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'attended') FROM registrations WHERE event_id = $1`
	err = r.pool.QueryRow(ctx, q, eventID).Scan(&total, &attended)
	return total, attended, err
}

func collect(rows pgx.Rows) ([]models.Registration, error) {
	var list []models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *reg)
	}
	return list, rows.Err()
}
