package caregivers

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carecircle/backend/internal/models"
)

// Repository handles caregiver-participant link persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a caregivers repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Link associates a caregiver with a participant they manage.
func (r *Repository) Link(ctx context.Context, caregiverID, participantID uuid.UUID) error {
	const q = `INSERT INTO caregiver_links (caregiver_id, participant_id)
		VALUES ($1, $2)
		ON CONFLICT (caregiver_id, participant_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, q, caregiverID, participantID)
	return err
}

// Unlink removes a caregiver-participant association.
func (r *Repository) Unlink(ctx context.Context, caregiverID, participantID uuid.UUID) error {
	const q = `DELETE FROM caregiver_links WHERE caregiver_id = $1 AND participant_id = $2`
	_, err := r.pool.Exec(ctx, q, caregiverID, participantID)
	return err
}

// IsLinked reports whether the caregiver manages the participant.
func (r *Repository) IsLinked(ctx context.Context, caregiverID, participantID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM caregiver_links WHERE caregiver_id = $1 AND participant_id = $2)`
	var linked bool
	err := r.pool.QueryRow(ctx, q, caregiverID, participantID).Scan(&linked)
	return linked, err
}

// ListParticipants returns the participants a caregiver manages.
func (r *Repository) ListParticipants(ctx context.Context, caregiverID uuid.UUID) ([]models.UserPublic, error) {
	const q = `SELECT p.id, p.email, p.full_name, p.role, p.created_at
		FROM caregiver_links l
		JOIN profiles p ON p.id = l.participant_id
		WHERE l.caregiver_id = $1
		ORDER BY p.full_name`
	rows, err := r.pool.Query(ctx, q, caregiverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserPublic
	for rows.Next() {
		var u models.UserPublic
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
