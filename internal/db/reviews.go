package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"marketmind/internal/models"
)

// lockTool takes a row lock on the tool so concurrent review writes for the
// same tool aggregate in sequence.
func lockTool(ctx context.Context, tx pgx.Tx, toolID uuid.UUID) error {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM tools WHERE id = $1 FOR UPDATE`, toolID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrToolNotFound
	}
	return err
}

// refreshToolRating recomputes rating and total_reviews from the reviews table.
func refreshToolRating(ctx context.Context, tx pgx.Tx, toolID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE tools SET
			rating = COALESCE((SELECT AVG(rating)::float8 FROM reviews WHERE tool_id = $1), 0),
			total_reviews = (SELECT COUNT(*) FROM reviews WHERE tool_id = $1),
			updated_at = NOW()
		WHERE id = $1
	`, toolID)
	return err
}

// CreateReview inserts a review and refreshes the tool's rating aggregate.
func (d *DB) CreateReview(ctx context.Context, review *models.Review) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockTool(ctx, tx, review.ToolID); err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO reviews (tool_id, user_id, rating, title, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, review.ToolID, review.UserID, review.Rating, review.Title, review.Content,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateReview
		}
		return err
	}

	if err := refreshToolRating(ctx, tx, review.ToolID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetReviewByID retrieves a review by ID.
func (d *DB) GetReviewByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var r models.Review
	err := d.Pool.QueryRow(ctx, `
		SELECT r.id, r.tool_id, r.user_id, r.rating, r.title, r.content, r.created_at, r.updated_at, u.username
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.id = $1
	`, id).Scan(&r.ID, &r.ToolID, &r.UserID, &r.Rating, &r.Title, &r.Content, &r.CreatedAt, &r.UpdatedAt, &r.Username)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateReview changes a review's rating and text and refreshes the aggregate.
func (d *DB) UpdateReview(ctx context.Context, review *models.Review) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockTool(ctx, tx, review.ToolID); err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		UPDATE reviews SET rating = $1, title = $2, content = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`, review.Rating, review.Title, review.Content, review.ID).Scan(&review.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrReviewNotFound
	}
	if err != nil {
		return err
	}

	if err := refreshToolRating(ctx, tx, review.ToolID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// DeleteReview removes a review and refreshes the tool's rating aggregate.
func (d *DB) DeleteReview(ctx context.Context, review *models.Review) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockTool(ctx, tx, review.ToolID); err != nil {
		return err
	}

	result, err := tx.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, review.ID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrReviewNotFound
	}

	if err := refreshToolRating(ctx, tx, review.ToolID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListReviewsForTool returns a tool's reviews, newest first.
func (d *DB) ListReviewsForTool(ctx context.Context, toolID uuid.UUID) ([]models.Review, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT r.id, r.tool_id, r.user_id, r.rating, r.title, r.content, r.created_at, r.updated_at, u.username
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.tool_id = $1
		ORDER BY r.created_at DESC
	`, toolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ID, &r.ToolID, &r.UserID, &r.Rating, &r.Title, &r.Content, &r.CreatedAt, &r.UpdatedAt, &r.Username); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
