// Package access implements the tool access request workflow: admins request
// editorial access to a tool, superadmins approve or deny, and approval makes
// the requester the tool's assigned admin.
//
// Requests move pending -> approved or pending -> denied exactly once. The
// compare-and-swap on status lives in the store, so concurrent resolutions
// of one request cannot both succeed.
package access

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"marketmind/internal/apperr"
	"marketmind/internal/db"
	"marketmind/internal/metrics"
	"marketmind/internal/models"
)

// Workflow errors not originating in the store.
var (
	ErrNotAdmin        = apperr.New(apperr.ErrForbidden, "admin access required")
	ErrNotSuperadmin   = apperr.New(apperr.ErrForbidden, "superadmin access required")
	ErrNoToolAccess    = apperr.New(apperr.ErrForbidden, "you do not have access to edit this tool")
	ErrInvalidDecision = apperr.New(apperr.ErrValidation, "status must be approved or denied")
	ErrInvalidStatus   = apperr.New(apperr.ErrValidation, "status filter must be pending, approved or denied")
	ErrEmptyUpdate     = apperr.New(apperr.ErrValidation, "no fields to update")
)

// Store is the persistence used by the workflow.
type Store interface {
	GetToolByID(ctx context.Context, id uuid.UUID) (*models.Tool, error)
	UpdateToolContent(ctx context.Context, id uuid.UUID, upd models.ToolContentUpdate) (*models.Tool, error)
	GetPendingAccessRequest(ctx context.Context, toolID, adminID uuid.UUID) (*models.AccessRequest, error)
	CreateAccessRequest(ctx context.Context, req *models.AccessRequest) error
	ResolveAccessRequest(ctx context.Context, id, superadminID uuid.UUID, status, responseMessage string) (*models.AccessRequest, error)
	ListAccessRequestsByAdmin(ctx context.Context, adminID uuid.UUID) ([]models.AccessRequest, error)
	ListAccessRequests(ctx context.Context, status string) ([]models.AccessRequest, error)
}

// Service runs the access request workflow.
type Service struct {
	store Store
}

// NewService creates a new access service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// HasToolAccess reports whether user may edit tool: superadmins always may,
// otherwise only the tool's assigned admin.
func HasToolAccess(user *models.User, tool *models.Tool) bool {
	if user == nil || tool == nil {
		return false
	}
	if user.IsSuperadmin() {
		return true
	}
	return tool.AssignedAdminID != nil && *tool.AssignedAdminID == user.ID
}

// CheckToolAccess loads the tool and applies HasToolAccess.
func (s *Service) CheckToolAccess(ctx context.Context, user *models.User, toolID uuid.UUID) (bool, error) {
	tool, err := s.store.GetToolByID(ctx, toolID)
	if err != nil {
		return false, apperr.Dependency(err)
	}
	return HasToolAccess(user, tool), nil
}

// UpdateToolContent applies an editorial update after the access check.
func (s *Service) UpdateToolContent(ctx context.Context, user *models.User, toolID uuid.UUID, upd models.ToolContentUpdate) (*models.Tool, error) {
	if upd.IsEmpty() {
		return nil, ErrEmptyUpdate
	}

	allowed, err := s.CheckToolAccess(ctx, user, toolID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNoToolAccess
	}

	tool, err := s.store.UpdateToolContent(ctx, toolID, upd)
	if err != nil {
		return nil, apperr.Dependency(err)
	}
	return tool, nil
}

// RequestAccess creates a pending access request from admin for a tool.
func (s *Service) RequestAccess(ctx context.Context, admin *models.User, toolID uuid.UUID, message string) (*models.AccessRequest, error) {
	if admin == nil || !admin.IsAdmin() {
		return nil, ErrNotAdmin
	}

	tool, err := s.store.GetToolByID(ctx, toolID)
	if err != nil {
		return nil, apperr.Dependency(err)
	}
	if tool.AssignedAdminID != nil && *tool.AssignedAdminID == admin.ID {
		return nil, db.ErrAlreadyAssigned
	}

	_, err = s.store.GetPendingAccessRequest(ctx, toolID, admin.ID)
	if err == nil {
		return nil, db.ErrDuplicateAccessRequest
	}
	if !errors.Is(err, db.ErrAccessRequestNotFound) {
		return nil, apperr.Dependency(err)
	}

	req := &models.AccessRequest{
		ToolID:         toolID,
		AdminID:        admin.ID,
		RequestMessage: message,
		ToolName:       tool.Name,
		AdminUsername:  admin.Username,
	}
	if err := s.store.CreateAccessRequest(ctx, req); err != nil {
		return nil, apperr.Dependency(err)
	}

	metrics.RecordAccessTransition(models.AccessPending)
	slog.Info("access requested", "request_id", req.ID, "tool_id", toolID, "admin_id", admin.ID)
	return req, nil
}

// Resolve approves or denies a pending request. Resolving a request that is
// no longer pending fails with a conflict, even for the same decision.
func (s *Service) Resolve(ctx context.Context, superadmin *models.User, requestID uuid.UUID, decision, responseMessage string) (*models.AccessRequest, error) {
	if superadmin == nil || !superadmin.IsSuperadmin() {
		return nil, ErrNotSuperadmin
	}
	if decision != models.AccessApproved && decision != models.AccessDenied {
		return nil, ErrInvalidDecision
	}

	req, err := s.store.ResolveAccessRequest(ctx, requestID, superadmin.ID, decision, responseMessage)
	if err != nil {
		return nil, apperr.Dependency(err)
	}

	metrics.RecordAccessTransition(decision)
	slog.Info("access request resolved",
		"request_id", req.ID, "status", req.Status, "tool_id", req.ToolID,
		"admin_id", req.AdminID, "superadmin_id", superadmin.ID)
	return req, nil
}

// ListRequestsForAdmin returns the requests made by admin.
func (s *Service) ListRequestsForAdmin(ctx context.Context, admin *models.User) ([]models.AccessRequest, error) {
	if admin == nil || !admin.IsAdmin() {
		return nil, ErrNotAdmin
	}
	requests, err := s.store.ListAccessRequestsByAdmin(ctx, admin.ID)
	if err != nil {
		return nil, apperr.Dependency(err)
	}
	return requests, nil
}

// ListAllRequests returns every request, optionally filtered by status.
func (s *Service) ListAllRequests(ctx context.Context, superadmin *models.User, status string) ([]models.AccessRequest, error) {
	if superadmin == nil || !superadmin.IsSuperadmin() {
		return nil, ErrNotSuperadmin
	}
	if status != "" && !models.ValidAccessStatus(status) {
		return nil, ErrInvalidStatus
	}
	requests, err := s.store.ListAccessRequests(ctx, status)
	if err != nil {
		return nil, apperr.Dependency(err)
	}
	return requests, nil
}
