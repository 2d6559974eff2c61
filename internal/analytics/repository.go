package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carecircle/backend/internal/models"
)

// Repository runs attendance analytics aggregates.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an analytics repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EventAttendanceSummary is registered-vs-attended counts for one event.
type EventAttendanceSummary struct {
	EventID            uuid.UUID `json:"event_id"`
	Title              string    `json:"title"`
	StartTime          time.Time `json:"start_time"`
	TotalRegistrations int       `json:"total_registrations"`
	TotalAttended      int       `json:"total_attended"`
	AttendanceRate     float64   `json:"attendance_rate"`
}

// AttendanceByEvent returns per-event attendance counts, optionally limited
// to events starting within [start, end].
func (r *Repository) AttendanceByEvent(ctx context.Context, start, end *time.Time) ([]EventAttendanceSummary, error) {
	const q = `SELECT e.id, e.title, e.start_time,
			COUNT(r.id),
			COUNT(r.id) FILTER (WHERE r.status = 'attended')
		FROM events e
		LEFT JOIN registrations r ON r.event_id = e.id
		WHERE ($1::timestamptz IS NULL OR e.start_time >= $1)
		  AND ($2::timestamptz IS NULL OR e.start_time <= $2)
		GROUP BY e.id, e.title, e.start_time
		ORDER BY e.start_time DESC`
	rows, err := r.pool.Query(ctx, q, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []EventAttendanceSummary
	for rows.Next() {
		var s EventAttendanceSummary
		if err := rows.Scan(&s.EventID, &s.Title, &s.StartTime, &s.TotalRegistrations, &s.TotalAttended); err != nil {
			return nil, err
		}
		if s.TotalRegistrations > 0 {
			s.AttendanceRate = float64(s.TotalAttended) / float64(s.TotalRegistrations) * 100
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// AttendeeSummary is one subject's registration and attendance counts.
type AttendeeSummary struct {
	UserID             uuid.UUID   `json:"user_id"`
	FullName           string      `json:"full_name"`
	Role               models.Role `json:"role"`
	TotalRegistrations int         `json:"total_registrations"`
	TotalAttended      int         `json:"total_attended"`
}

// TopAttendees returns subjects of the given role ranked by events attended.
func (r *Repository) TopAttendees(ctx context.Context, role models.Role, limit int) ([]AttendeeSummary, error) {
	const q = `SELECT p.id, p.full_name, p.role,
			COUNT(r.id),
			COUNT(r.id) FILTER (WHERE r.status = 'attended')
		FROM profiles p
		JOIN registrations r ON r.user_id = p.id
		WHERE p.role = $1
		GROUP BY p.id, p.full_name, p.role
		ORDER BY COUNT(r.id) FILTER (WHERE r.status = 'attended') DESC, p.full_name
		LIMIT $2`
	rows, err := r.pool.Query(ctx, q, string(role), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []AttendeeSummary
	for rows.Next() {
		var s AttendeeSummary
		if err := rows.Scan(&s.UserID, &s.FullName, &s.Role, &s.TotalRegistrations, &s.TotalAttended); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// StaffSummary is one staff member's productivity counters.
type StaffSummary struct {
	UserID            uuid.UUID `json:"user_id"`
	FullName          string    `json:"full_name"`
	EventsCreated     int       `json:"events_created"`
	CheckInsPerformed int       `json:"check_ins_performed"`
}

// StaffProductivity returns staff ranked by events created and check-ins performed.
func (r *Repository) StaffProductivity(ctx context.Context, limit int) ([]StaffSummary, error) {
	const q = `SELECT p.id, p.full_name,
			(SELECT COUNT(*) FROM events e WHERE e.created_by = p.id),
			(SELECT COUNT(*) FROM registrations r WHERE r.checked_in_by = p.id)
		FROM profiles p
		WHERE p.role IN ('staff', 'admin')
		ORDER BY 3 DESC, 4 DESC, p.full_name
		LIMIT $1`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []StaffSummary
	for rows.Next() {
		var s StaffSummary
		if err := rows.Scan(&s.UserID, &s.FullName, &s.EventsCreated, &s.CheckInsPerformed); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
