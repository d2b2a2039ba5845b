package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"marketmind/internal/models"
)

const pgForeignKeyViolation = "23503"

// accessRequestSelect joins the tool name and admin username for display.
const accessRequestSelect = `
	SELECT r.id, r.tool_id, r.admin_id, r.superadmin_id, r.status, r.request_message, r.response_message,
		r.created_at, r.resolved_at, t.name, u.username
	FROM tool_access_requests r
	JOIN tools t ON t.id = r.tool_id
	JOIN users u ON u.id = r.admin_id
`

func accessRequestScanArgs(req *models.AccessRequest) []any {
	return []any{
		&req.ID, &req.ToolID, &req.AdminID, &req.SuperadminID, &req.Status, &req.RequestMessage, &req.ResponseMessage,
		&req.CreatedAt, &req.ResolvedAt, &req.ToolName, &req.AdminUsername,
	}
}

func scanAccessRequests(rows pgx.Rows) ([]models.AccessRequest, error) {
	defer rows.Close()

	requests := []models.AccessRequest{}
	for rows.Next() {
		var req models.AccessRequest
		if err := rows.Scan(accessRequestScanArgs(&req)...); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// CreateAccessRequest inserts a new pending access request. The partial unique
// index on (tool_id, admin_id) WHERE status = 'pending' rejects duplicates.
func (d *DB) CreateAccessRequest(ctx context.Context, req *models.AccessRequest) error {
	err := d.Pool.QueryRow(ctx, `
		INSERT INTO tool_access_requests (tool_id, admin_id, request_message)
		VALUES ($1, $2, $3)
		RETURNING id, status, response_message, created_at
	`, req.ToolID, req.AdminID, req.RequestMessage,
	).Scan(&req.ID, &req.Status, &req.ResponseMessage, &req.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch {
			case pgErr.Code == pgUniqueViolation:
				return ErrDuplicateAccessRequest
			case pgErr.Code == pgForeignKeyViolation && pgErr.ConstraintName == "tool_access_requests_tool_id_fkey":
				return ErrToolNotFound
			case pgErr.Code == pgForeignKeyViolation:
				return ErrUserNotFound
			}
		}
		return err
	}
	return nil
}

// GetAccessRequestByID retrieves an access request with tool and admin info.
func (d *DB) GetAccessRequestByID(ctx context.Context, id uuid.UUID) (*models.AccessRequest, error) {
	var req models.AccessRequest
	err := d.Pool.QueryRow(ctx, accessRequestSelect+` WHERE r.id = $1`, id).Scan(accessRequestScanArgs(&req)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccessRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetPendingAccessRequest returns the pending request of an admin for a tool.
func (d *DB) GetPendingAccessRequest(ctx context.Context, toolID, adminID uuid.UUID) (*models.AccessRequest, error) {
	var req models.AccessRequest
	err := d.Pool.QueryRow(ctx, accessRequestSelect+` WHERE r.tool_id = $1 AND r.admin_id = $2 AND r.status = $3`,
		toolID, adminID, models.AccessPending,
	).Scan(accessRequestScanArgs(&req)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccessRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ResolveAccessRequest moves a pending request to approved or denied. The
// status check and update are a single compare-and-swap, so of two concurrent
// resolutions exactly one succeeds. Approval assigns the admin to the tool in
// the same transaction.
func (d *DB) ResolveAccessRequest(ctx context.Context, id, superadminID uuid.UUID, status, responseMessage string) (*models.AccessRequest, error) {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var toolID, adminID uuid.UUID
	err = tx.QueryRow(ctx, `
		UPDATE tool_access_requests
		SET status = $1, superadmin_id = $2, response_message = $3, resolved_at = NOW()
		WHERE id = $4 AND status = $5
		RETURNING tool_id, admin_id
	`, status, superadminID, responseMessage, id, models.AccessPending).Scan(&toolID, &adminID)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tool_access_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrAccessRequestResolved
		}
		return nil, ErrAccessRequestNotFound
	}
	if err != nil {
		return nil, err
	}

	if status == models.AccessApproved {
		result, err := tx.Exec(ctx, `
			UPDATE tools SET assigned_admin_id = $1, updated_at = NOW() WHERE id = $2
		`, adminID, toolID)
		if err != nil {
			return nil, err
		}
		if result.RowsAffected() == 0 {
			return nil, ErrToolNotFound
		}
	}

	var req models.AccessRequest
	if err := tx.QueryRow(ctx, accessRequestSelect+` WHERE r.id = $1`, id).Scan(accessRequestScanArgs(&req)...); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &req, nil
}

// ListAccessRequestsByAdmin returns all requests made by an admin, newest first.
func (d *DB) ListAccessRequestsByAdmin(ctx context.Context, adminID uuid.UUID) ([]models.AccessRequest, error) {
	rows, err := d.Pool.Query(ctx, accessRequestSelect+` WHERE r.admin_id = $1 ORDER BY r.created_at DESC`, adminID)
	if err != nil {
		return nil, err
	}
	return scanAccessRequests(rows)
}

// ListAccessRequests returns all requests, optionally filtered by status.
// Pending requests are returned oldest first so they are handled in order.
func (d *DB) ListAccessRequests(ctx context.Context, status string) ([]models.AccessRequest, error) {
	var rows pgx.Rows
	var err error

	switch status {
	case "":
		rows, err = d.Pool.Query(ctx, accessRequestSelect+` ORDER BY r.created_at DESC`)
	case models.AccessPending:
		rows, err = d.Pool.Query(ctx, accessRequestSelect+` WHERE r.status = $1 ORDER BY r.created_at ASC`, status)
	default:
		rows, err = d.Pool.Query(ctx, accessRequestSelect+` WHERE r.status = $1 ORDER BY r.resolved_at DESC`, status)
	}
	if err != nil {
		return nil, err
	}
	return scanAccessRequests(rows)
}

// CountAccessRequestsByStatus returns the number of requests per status.
func (d *DB) CountAccessRequestsByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := d.Pool.Query(ctx, `SELECT status, COUNT(*) FROM tool_access_requests GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int64{
		models.AccessPending:  0,
		models.AccessApproved: 0,
		models.AccessDenied:   0,
	}
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
