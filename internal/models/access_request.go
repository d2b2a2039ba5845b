package models

import (
	"time"

	"github.com/google/uuid"
)

// Access request status constants
const (
	AccessPending  = "pending"
	AccessApproved = "approved"
	AccessDenied   = "denied"
)

// AccessRequest is an admin's request to edit a tool's content. Approved and
// denied requests are terminal.
type AccessRequest struct {
	ID              uuid.UUID  `json:"id"`
	ToolID          uuid.UUID  `json:"tool_id"`
	AdminID         uuid.UUID  `json:"admin_id"`
	SuperadminID    *uuid.UUID `json:"superadmin_id"`
	Status          string     `json:"status"`
	RequestMessage  string     `json:"request_message"`
	ResponseMessage string     `json:"response_message"`
	CreatedAt       time.Time  `json:"created_at"`
	ResolvedAt      *time.Time `json:"resolved_at"`

	// Non-DB fields, populated via JOIN for display
	ToolName      string `json:"tool_name,omitempty"`
	AdminUsername string `json:"admin_username,omitempty"`
}

// IsPending returns true if the request has not been resolved.
func (r *AccessRequest) IsPending() bool {
	return r.Status == AccessPending
}

// IsApproved returns true if the request was approved.
func (r *AccessRequest) IsApproved() bool {
	return r.Status == AccessApproved
}

// IsDenied returns true if the request was denied.
func (r *AccessRequest) IsDenied() bool {
	return r.Status == AccessDenied
}

// ValidAccessStatus reports whether s is a known access request status.
func ValidAccessStatus(s string) bool {
	switch s {
	case AccessPending, AccessApproved, AccessDenied:
		return true
	}
	return false
}

// AccessRequestInput is the payload an admin sends when requesting access.
type AccessRequestInput struct {
	Message string `json:"request_message" validate:"max=2000"`
}

// AccessDecision is the payload a superadmin sends when resolving a request.
type AccessDecision struct {
	Status          string `json:"status" validate:"required,oneof=approved denied"`
	ResponseMessage string `json:"response_message" validate:"max=2000"`
}
