package api

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"marketmind/internal/apperr"
	"marketmind/internal/models"
)

// UserStore is the persistence behind user management.
type UserStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserType(ctx context.Context, id uuid.UUID, userType string) error
}

// UserHandler handles user management operations via JSON API.
type UserHandler struct {
	store UserStore
}

// NewUserHandler creates a new API user handler.
func NewUserHandler(store UserStore) *UserHandler {
	return &UserHandler{store: store}
}

// Me returns the authenticated user.
func (h *UserHandler) Me(c fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return jsonSuccess(c, user)
}

// List returns all users (superadmin only).
func (h *UserHandler) List(c fiber.Ctx) error {
	user := currentUser(c)
	if user == nil || !user.IsSuperadmin() {
		return jsonError(c, fiber.StatusForbidden, "superadmin access required")
	}

	users, err := h.store.ListUsers(c.Context())
	if err != nil {
		return jsonFailure(c, apperr.Dependency(err))
	}
	return jsonSuccess(c, users)
}

// UpdateType changes a user's type (superadmin only).
func (h *UserHandler) UpdateType(c fiber.Ctx) error {
	current := currentUser(c)
	if current == nil || !current.IsSuperadmin() {
		return jsonError(c, fiber.StatusForbidden, "superadmin access required")
	}

	userID, ok := paramID(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid user id")
	}

	var body struct {
		UserType string `json:"user_type"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if !models.ValidUserType(body.UserType) {
		return jsonError(c, fiber.StatusUnprocessableEntity, "user_type must be user, admin or superadmin")
	}

	if userID == current.ID && body.UserType != models.UserTypeSuperadmin {
		return jsonError(c, fiber.StatusBadRequest, "cannot change your own user type")
	}

	if err := h.store.UpdateUserType(c.Context(), userID, body.UserType); err != nil {
		return jsonFailure(c, apperr.Dependency(err))
	}

	return jsonSuccess(c, fiber.Map{
		"message": "user type updated successfully",
	})
}
