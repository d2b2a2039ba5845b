package api

import (
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"

	"marketmind/internal/access"
	"marketmind/internal/models"
	"marketmind/internal/validation"
)

// AccessRequestHandler handles the tool access request workflow via JSON API.
type AccessRequestHandler struct {
	access *access.Service
}

// NewAccessRequestHandler creates a new API access request handler.
func NewAccessRequestHandler(accessSvc *access.Service) *AccessRequestHandler {
	return &AccessRequestHandler{access: accessSvc}
}

// RequestAccess asks for editorial access to a tool. The message is optional.
func (h *AccessRequestHandler) RequestAccess(c fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	toolID, ok := paramID(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid tool id")
	}

	var body models.AccessRequestInput
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}
	if err := validation.Struct(body); err != nil {
		return jsonFailure(c, err)
	}

	req, err := h.access.RequestAccess(c.Context(), user, toolID, body.Message)
	if err != nil {
		return jsonFailure(c, err)
	}
	return jsonCreated(c, req)
}

// MyRequests returns the caller's own access requests.
func (h *AccessRequestHandler) MyRequests(c fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	requests, err := h.access.ListRequestsForAdmin(c.Context(), user)
	if err != nil {
		return jsonFailure(c, err)
	}
	return jsonSuccess(c, requests)
}

// ListAll returns every access request, optionally filtered by ?status=.
func (h *AccessRequestHandler) ListAll(c fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	requests, err := h.access.ListAllRequests(c.Context(), user, c.Query("status"))
	if err != nil {
		return jsonFailure(c, err)
	}
	return jsonSuccess(c, requests)
}

// Resolve approves or denies a pending access request.
func (h *AccessRequestHandler) Resolve(c fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, ok := paramID(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid request id")
	}

	var body models.AccessDecision
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validation.Struct(body); err != nil {
		return jsonFailure(c, err)
	}

	req, err := h.access.Resolve(c.Context(), user, id, body.Status, body.ResponseMessage)
	if err != nil {
		return jsonFailure(c, err)
	}
	return jsonSuccess(c, req)
}
