package db

import "marketmind/internal/apperr"

// Domain-level database error sentinels. Each wraps an apperr kind.
var (
	// Tool errors
	ErrToolNotFound  = apperr.New(apperr.ErrNotFound, "tool not found")
	ErrDuplicateSlug = apperr.New(apperr.ErrConflict, "a tool with this slug already exists")

	// User errors
	ErrUserNotFound = apperr.New(apperr.ErrNotFound, "user not found")

	// Review errors
	ErrReviewNotFound  = apperr.New(apperr.ErrNotFound, "review not found")
	ErrDuplicateReview = apperr.New(apperr.ErrConflict, "you have already reviewed this tool")

	// Access request errors
	ErrAccessRequestNotFound  = apperr.New(apperr.ErrNotFound, "access request not found")
	ErrDuplicateAccessRequest = apperr.New(apperr.ErrConflict, "you already have a pending access request for this tool")
	ErrAccessRequestResolved  = apperr.New(apperr.ErrConflict, "access request has already been resolved")
	ErrAlreadyAssigned        = apperr.New(apperr.ErrConflict, "you are already assigned to this tool")
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"
