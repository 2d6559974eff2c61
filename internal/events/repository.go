package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carecircle/backend/internal/models"
)

// Repository handles event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `id, title, description, location, start_time, end_time, capacity, is_accessible, status, created_by, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.StartTime, &e.EndTime,
		&e.Capacity, &e.IsAccessible, &e.Status, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new event.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (title, description, location, start_time, end_time, capacity, is_accessible, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, status, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, e.Title, e.Description, e.Location, e.StartTime, e.EndTime, e.Capacity, e.IsAccessible, e.CreatedBy).
		Scan(&e.ID, &e.Status, &e.CreatedAt, &e.UpdatedAt)
}

// Upsert inserts an event or refreshes an existing one with the same title
// and start time (deduplication for bulk imports).
func (r *Repository) Upsert(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (title, description, location, start_time, end_time, capacity, is_accessible, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (title, start_time) DO UPDATE SET
			description = EXCLUDED.description,
			location = EXCLUDED.location,
			end_time = EXCLUDED.end_time,
			capacity = EXCLUDED.capacity,
			is_accessible = EXCLUDED.is_accessible,
			updated_at = NOW()
		RETURNING id, status, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, e.Title, e.Description, e.Location, e.StartTime, e.EndTime, e.Capacity, e.IsAccessible, e.CreatedBy).
		Scan(&e.ID, &e.Status, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID returns an event by ID, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

// ListActive returns active events ordered by start time.
func (r *Repository) ListActive(ctx context.Context) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events WHERE status = 'active' ORDER BY start_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// List returns all events, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY start_time DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// Update updates mutable event fields. Nil fields keep their current value.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, title, description, location *string, startTime, endTime *time.Time, capacity *int) error {
	const q = `UPDATE events SET
		title = COALESCE($1, title),
		description = COALESCE($2, description),
		location = COALESCE($3, location),
		start_time = COALESCE($4, start_time),
		end_time = COALESCE($5, end_time),
		capacity = COALESCE($6, capacity),
		updated_at = NOW()
		WHERE id = $7`
	_, err := r.pool.Exec(ctx, q, title, description, location, startTime, endTime, capacity, id)
	return err
}

// Archive marks an event archived.
func (r *Repository) Archive(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE events SET status = 'archived', updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}

func collect(rows pgx.Rows) ([]models.Event, error) {
	var list []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}
