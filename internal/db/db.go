package db

import (
	"context"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketmind/internal/models"
	"marketmind/migrations"
)

// DB wraps a pgxpool connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new database connection pool.
func New(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// RunMigrations runs all embedded SQL migrations.
func (d *DB) RunMigrations(connString string) error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, connString)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Ping checks that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.Pool.Ping(ctx)
}

// Close closes the connection pool.
func (d *DB) Close() {
	d.Pool.Close()
}

// SeedDevData inserts a superadmin, an admin, a regular user and a few tools
// for development. Existing rows are left alone. Returns the superadmin.
func (d *DB) SeedDevData(ctx context.Context) (*models.User, error) {
	users := []*models.User{
		{Email: "superadmin@marketmind.local", Username: "superadmin", FullName: "Dev Superadmin", UserType: models.UserTypeSuperadmin},
		{Email: "admin@marketmind.local", Username: "admin", FullName: "Dev Admin", UserType: models.UserTypeAdmin},
		{Email: "user@marketmind.local", Username: "user", FullName: "Dev User", UserType: models.UserTypeUser},
	}
	for _, u := range users {
		if err := d.UpsertUser(ctx, u); err != nil {
			return nil, fmt.Errorf("failed to seed user %s: %w", u.Username, err)
		}
	}

	tools := []struct {
		name, slug, url, category string
	}{
		{"Notion", "notion", "https://www.notion.so", "productivity"},
		{"HubSpot", "hubspot", "https://www.hubspot.com", "crm"},
		{"Jasper", "jasper", "https://www.jasper.ai", "ai-writing"},
		{"Ahrefs", "ahrefs", "https://ahrefs.com", "seo"},
	}

	query := `
		INSERT INTO tools (name, slug, website_url, category, created_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (slug) DO NOTHING
	`
	for _, tool := range tools {
		if _, err := d.Pool.Exec(ctx, query, tool.name, tool.slug, tool.url, tool.category, users[0].ID); err != nil {
			return nil, fmt.Errorf("failed to seed tool %s: %w", tool.slug, err)
		}
	}

	return users[0], nil
}
