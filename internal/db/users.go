package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"marketmind/internal/models"
)

const userColumns = `id, COALESCE(sub, ''), email, username, full_name, user_type, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Sub,
		&user.Email,
		&user.Username,
		&user.FullName,
		&user.UserType,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertUser creates or updates a user keyed on email. The user type of an
// existing user is preserved.
func (d *DB) UpsertUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (sub, email, username, full_name, user_type)
		VALUES ($1, $2, $3, $4, COALESCE($5, 'user'))
		ON CONFLICT (email) DO UPDATE SET
			sub = COALESCE(EXCLUDED.sub, users.sub),
			full_name = EXCLUDED.full_name,
			updated_at = NOW()
		RETURNING id, user_type, is_active, created_at, updated_at
	`

	return d.Pool.QueryRow(ctx, query,
		nullIfEmpty(user.Sub),
		user.Email,
		user.Username,
		user.FullName,
		nullIfEmpty(user.UserType),
	).Scan(&user.ID, &user.UserType, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// GetUserByID retrieves a user by ID.
func (d *DB) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(d.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetUserBySub retrieves a user by their OIDC subject identifier.
func (d *DB) GetUserBySub(ctx context.Context, sub string) (*models.User, error) {
	return scanUser(d.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE sub = $1`, sub))
}

// UpdateUserType changes a user's type.
func (d *DB) UpdateUserType(ctx context.Context, id uuid.UUID, userType string) error {
	result, err := d.Pool.Exec(ctx, `UPDATE users SET user_type = $1, updated_at = NOW() WHERE id = $2`, userType, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListUsers returns all users ordered by username.
func (d *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := d.Pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}
