package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"marketmind/internal/models"
)

// toolColumns is the standard column list for tool queries.
const toolColumns = `id, name, slug, short_description, description, content, website_url, category, pricing_model,
	seo_title, seo_description, seo_keywords, views, rating, total_reviews, trending_score,
	is_hot, is_featured, assigned_admin_id, created_by, created_at, updated_at`

func toolScanArgs(tool *models.Tool) []any {
	return []any{
		&tool.ID,
		&tool.Name,
		&tool.Slug,
		&tool.ShortDescription,
		&tool.Description,
		&tool.Content,
		&tool.WebsiteURL,
		&tool.Category,
		&tool.PricingModel,
		&tool.SEOTitle,
		&tool.SEODescription,
		&tool.SEOKeywords,
		&tool.Views,
		&tool.Rating,
		&tool.TotalReviews,
		&tool.TrendingScore,
		&tool.IsHot,
		&tool.IsFeatured,
		&tool.AssignedAdminID,
		&tool.CreatedBy,
		&tool.CreatedAt,
		&tool.UpdatedAt,
	}
}

// scanTool scans a row into a Tool struct.
func scanTool(row pgx.Row) (*models.Tool, error) {
	var tool models.Tool
	err := row.Scan(toolScanArgs(&tool)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrToolNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tool, nil
}

// scanTools scans multiple rows into a slice of Tools.
func scanTools(rows pgx.Rows) ([]models.Tool, error) {
	defer rows.Close()

	tools := []models.Tool{}
	for rows.Next() {
		var tool models.Tool
		if err := rows.Scan(toolScanArgs(&tool)...); err != nil {
			return nil, err
		}
		tools = append(tools, tool)
	}
	return tools, rows.Err()
}

// CreateTool inserts a new tool. Popularity counters start at zero.
func (d *DB) CreateTool(ctx context.Context, tool *models.Tool) error {
	query := `
		INSERT INTO tools (name, slug, short_description, description, website_url, category, pricing_model,
			is_hot, is_featured, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + toolColumns

	row := d.Pool.QueryRow(ctx, query,
		tool.Name,
		tool.Slug,
		tool.ShortDescription,
		tool.Description,
		tool.WebsiteURL,
		tool.Category,
		tool.PricingModel,
		tool.IsHot,
		tool.IsFeatured,
		tool.CreatedBy,
	)
	if err := row.Scan(toolScanArgs(tool)...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateSlug
		}
		return err
	}
	return nil
}

// GetToolByID retrieves a tool by ID.
func (d *DB) GetToolByID(ctx context.Context, id uuid.UUID) (*models.Tool, error) {
	return scanTool(d.Pool.QueryRow(ctx, `SELECT `+toolColumns+` FROM tools WHERE id = $1`, id))
}

// UpdateToolContent applies the non-nil fields of an editorial update.
func (d *DB) UpdateToolContent(ctx context.Context, id uuid.UUID, upd models.ToolContentUpdate) (*models.Tool, error) {
	query := `
		UPDATE tools SET
			short_description = COALESCE($1, short_description),
			description = COALESCE($2, description),
			content = COALESCE($3, content),
			seo_title = COALESCE($4, seo_title),
			seo_description = COALESCE($5, seo_description),
			seo_keywords = COALESCE($6, seo_keywords),
			updated_at = NOW()
		WHERE id = $7
		RETURNING ` + toolColumns

	return scanTool(d.Pool.QueryRow(ctx, query,
		upd.ShortDescription,
		upd.Description,
		upd.Content,
		upd.SEOTitle,
		upd.SEODescription,
		upd.SEOKeywords,
		id,
	))
}

// UpdateToolCuration sets the non-nil curation flags.
func (d *DB) UpdateToolCuration(ctx context.Context, id uuid.UUID, upd models.ToolCurationUpdate) (*models.Tool, error) {
	query := `
		UPDATE tools SET
			is_hot = COALESCE($1, is_hot),
			is_featured = COALESCE($2, is_featured),
			updated_at = NOW()
		WHERE id = $3
		RETURNING ` + toolColumns

	return scanTool(d.Pool.QueryRow(ctx, query, upd.IsHot, upd.IsFeatured, id))
}

// IncrementToolViews atomically adds one view and returns the updated tool.
func (d *DB) IncrementToolViews(ctx context.Context, id uuid.UUID) (*models.Tool, error) {
	return scanTool(d.Pool.QueryRow(ctx,
		`UPDATE tools SET views = views + 1 WHERE id = $1 RETURNING `+toolColumns, id))
}

// GetScoreMaxima returns the largest view and review counts across all tools.
func (d *DB) GetScoreMaxima(ctx context.Context) (int64, int, error) {
	var maxViews int64
	var maxReviews int
	err := d.Pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(views), 0), COALESCE(MAX(total_reviews), 0) FROM tools`,
	).Scan(&maxViews, &maxReviews)
	return maxViews, maxReviews, err
}

// SetTrendingScore stores the trending score of a single tool.
func (d *DB) SetTrendingScore(ctx context.Context, id uuid.UUID, score float64) error {
	result, err := d.Pool.Exec(ctx, `UPDATE tools SET trending_score = $1 WHERE id = $2`, score, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrToolNotFound
	}
	return nil
}

// ListToolStats returns the trending inputs of every tool.
func (d *DB) ListToolStats(ctx context.Context) ([]models.ToolStats, error) {
	rows, err := d.Pool.Query(ctx, `SELECT id, views, rating, total_reviews, created_at FROM tools`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.ToolStats
	for rows.Next() {
		var s models.ToolStats
		if err := rows.Scan(&s.ID, &s.Views, &s.Rating, &s.TotalReviews, &s.CreatedAt); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// UpdateTrendingScores writes all scores in a single statement and returns the
// IDs that no longer exist.
func (d *DB) UpdateTrendingScores(ctx context.Context, scores []models.ToolScore) ([]uuid.UUID, error) {
	if len(scores) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(scores))
	values := make([]float64, len(scores))
	for i, s := range scores {
		ids[i] = s.ID
		values[i] = s.Score
	}

	rows, err := d.Pool.Query(ctx, `
		UPDATE tools SET trending_score = v.score
		FROM unnest($1::uuid[], $2::float8[]) AS v(id, score)
		WHERE tools.id = v.id
		RETURNING tools.id
	`, ids, values)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	updated := make(map[uuid.UUID]bool, len(scores))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		updated[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []uuid.UUID
	for _, id := range ids {
		if !updated[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// toolOrderClauses maps each curated ordering to its filter and sort.
var toolOrderClauses = map[models.ToolOrder]string{
	models.OrderTrending:   `ORDER BY trending_score DESC, id`,
	models.OrderTopRated:   `ORDER BY rating DESC, total_reviews DESC, id`,
	models.OrderMostViewed: `ORDER BY views DESC, id`,
	models.OrderNewest:     `ORDER BY created_at DESC, id`,
	models.OrderFeatured:   `WHERE is_featured ORDER BY trending_score DESC, id`,
	models.OrderHot:        `WHERE is_hot ORDER BY trending_score DESC, id`,
}

// ListTools returns up to limit tools in the given curated order.
func (d *DB) ListTools(ctx context.Context, order models.ToolOrder, limit int) ([]models.Tool, error) {
	clause, ok := toolOrderClauses[order]
	if !ok {
		return nil, fmt.Errorf("unknown tool order %q", order)
	}

	rows, err := d.Pool.Query(ctx, `SELECT `+toolColumns+` FROM tools `+clause+` LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return scanTools(rows)
}
