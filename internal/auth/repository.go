package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carecircle/backend/internal/models"
)

// Repository handles profile persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const profileColumns = `id, COALESCE(external_id,''), email, COALESCE(password_hash,''), full_name, role, is_first_time, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.ExternalID, &u.Email, &u.Password, &u.FullName, &u.Role, &u.IsFirstTime, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns a profile by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
}

// GetByEmail returns a profile by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email = $1`, email))
}

// Create inserts a new locally registered profile.
func (r *Repository) Create(ctx context.Context, email, passwordHash, fullName string, role models.Role) (*models.User, error) {
	const q = `INSERT INTO profiles (email, password_hash, full_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + profileColumns
	return scanUser(r.pool.QueryRow(ctx, q, email, passwordHash, fullName, string(role)))
}

// UpsertByExternalID creates or updates a profile synced from the identity provider.
func (r *Repository) UpsertByExternalID(ctx context.Context, externalID, email, fullName, role string) (*models.User, error) {
	const q = `INSERT INTO profiles (external_id, email, full_name, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (external_id) DO UPDATE SET
			email = EXCLUDED.email,
			full_name = EXCLUDED.full_name,
			role = EXCLUDED.role,
			updated_at = NOW()
		RETURNING ` + profileColumns
	return scanUser(r.pool.QueryRow(ctx, q, externalID, email, fullName, role))
}

// SetFullName updates a profile's display name and clears the first-time flag.
func (r *Repository) SetFullName(ctx context.Context, id uuid.UUID, fullName string) error {
	const q = `UPDATE profiles SET full_name = $1, is_first_time = FALSE, updated_at = NOW() WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, fullName, id)
	return err
}

// List returns all profiles for admin tooling.
func (r *Repository) List(ctx context.Context) ([]models.UserPublic, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, email, full_name, role, created_at FROM profiles ORDER BY full_name, email`)
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

// SetRole updates a profile's role (admin tooling).
func (r *Repository) SetRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	const q = `UPDATE profiles SET role = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, string(role), id)
	return err
}
