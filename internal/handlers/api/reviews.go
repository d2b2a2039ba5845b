package api

import (
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"

	"marketmind/internal/models"
	"marketmind/internal/reviews"
)

// ReviewHandler handles tool reviews via JSON API.
type ReviewHandler struct {
	reviews *reviews.Service
}

// NewReviewHandler creates a new API review handler.
func NewReviewHandler(svc *reviews.Service) *ReviewHandler {
	return &ReviewHandler{reviews: svc}
}

// List returns the reviews of a tool.
func (h *ReviewHandler) List(c fiber.Ctx) error {
	toolID, ok := paramID(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid tool id")
	}

	list, err := h.reviews.List(c.Context(), toolID)
	if err != nil {
		return jsonFailure(c, err)
	}
	return jsonSuccess(c, list)
}

// Create adds the caller's review of a tool.
func (h *ReviewHandler) Create(c fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	toolID, ok := paramID(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid tool id")
	}

	var body models.ReviewInput
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	review, err := h.reviews.Create(c.Context(), user, toolID, body)
	if err != nil {
		return jsonFailure(c, err)
	}
	return jsonCreated(c, review)
}

// Update edits the caller's review.
func (h *ReviewHandler) Update(c fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, ok := paramID(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid review id")
	}

	var body models.ReviewInput
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	review, err := h.reviews.Update(c.Context(), user, id, body)
	if err != nil {
		return jsonFailure(c, err)
	}
	return jsonSuccess(c, review)
}

// Delete removes a review.
func (h *ReviewHandler) Delete(c fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, ok := paramID(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid review id")
	}

	if err := h.reviews.Delete(c.Context(), user, id); err != nil {
		return jsonFailure(c, err)
	}
	return jsonSuccess(c, nil)
}
