package api

import (
	"context"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"marketmind/internal/access"
	"marketmind/internal/apperr"
	"marketmind/internal/models"
	"marketmind/internal/trending"
	"marketmind/internal/validation"
)

// ToolAdminStore is the persistence behind superadmin tool management.
type ToolAdminStore interface {
	CreateTool(ctx context.Context, tool *models.Tool) error
	UpdateToolCuration(ctx context.Context, id uuid.UUID, upd models.ToolCurationUpdate) (*models.Tool, error)
}

// ToolHandler handles tool reads, rankings and administration via JSON API.
type ToolHandler struct {
	engine *trending.Engine
	access *access.Service
	store  ToolAdminStore
}

// NewToolHandler creates a new API tool handler.
func NewToolHandler(engine *trending.Engine, accessSvc *access.Service, store ToolAdminStore) *ToolHandler {
	return &ToolHandler{engine: engine, access: accessSvc, store: store}
}

// Analytics returns the six curated lists. recalculate=true recomputes every
// score first and is limited to admins.
func (h *ToolHandler) Analytics(c fiber.Ctx) error {
	recalculate := false
	if raw := c.Query("recalculate"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "recalculate must be true or false")
		}
		recalculate = v
	}

	if recalculate {
		user := currentUser(c)
		if user == nil {
			return jsonError(c, fiber.StatusUnauthorized, "authentication required")
		}
		if !user.IsAdmin() {
			return jsonError(c, fiber.StatusForbidden, "admin access required to recalculate")
		}
	}

	lists, err := h.engine.CuratedLists(c.Context(), recalculate)
	if err != nil {
		return jsonFailure(c, err)
	}
	return jsonSuccess(c, lists)
}

// Get returns a single tool and counts the view.
func (h *ToolHandler) Get(c fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid tool id")
	}

	tool, err := h.engine.RecordView(c.Context(), id)
	if err != nil {
		return jsonFailure(c, err)
	}
	return jsonSuccess(c, tool)
}

// UpdateTrending recomputes every trending score and returns the run summary.
func (h *ToolHandler) UpdateTrending(c fiber.Ctx) error {
	user := currentUser(c)
	if user == nil || !user.IsSuperadmin() {
		return jsonError(c, fiber.StatusForbidden, "superadmin access required")
	}

	summary, err := h.engine.RecomputeAll(c.Context())
	if err != nil {
		return jsonFailure(c, err)
	}
	return jsonSuccess(c, summary)
}

// Create adds a tool to the catalog.
func (h *ToolHandler) Create(c fiber.Ctx) error {
	user := currentUser(c)
	if user == nil || !user.IsSuperadmin() {
		return jsonError(c, fiber.StatusForbidden, "superadmin access required")
	}

	var body models.ToolCreate
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	body.Slug = validation.NormalizeSlug(body.Slug)
	if err := validation.Struct(body); err != nil {
		return jsonFailure(c, err)
	}

	tool := &models.Tool{
		Name:             body.Name,
		Slug:             body.Slug,
		ShortDescription: body.ShortDescription,
		Description:      body.Description,
		WebsiteURL:       body.WebsiteURL,
		Category:         body.Category,
		PricingModel:     body.PricingModel,
		IsHot:            body.IsHot,
		IsFeatured:       body.IsFeatured,
		CreatedBy:        &user.ID,
	}
	if err := h.store.CreateTool(c.Context(), tool); err != nil {
		return jsonFailure(c, apperr.Dependency(err))
	}
	h.engine.InvalidateLists()

	return jsonCreated(c, tool)
}

// UpdateCuration sets the hot and featured flags of a tool.
func (h *ToolHandler) UpdateCuration(c fiber.Ctx) error {
	user := currentUser(c)
	if user == nil || !user.IsSuperadmin() {
		return jsonError(c, fiber.StatusForbidden, "superadmin access required")
	}

	id, ok := paramID(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid tool id")
	}

	var body models.ToolCurationUpdate
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if body.IsEmpty() {
		return jsonFailure(c, access.ErrEmptyUpdate)
	}

	tool, err := h.store.UpdateToolCuration(c.Context(), id, body)
	if err != nil {
		return jsonFailure(c, apperr.Dependency(err))
	}
	h.engine.InvalidateLists()

	return jsonSuccess(c, tool)
}

// UpdateContent applies an editorial update for the tool's assigned admin
// or a superadmin.
func (h *ToolHandler) UpdateContent(c fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, ok := paramID(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid tool id")
	}

	var body models.ToolContentUpdate
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validation.Struct(body); err != nil {
		return jsonFailure(c, err)
	}

	tool, err := h.access.UpdateToolContent(c.Context(), user, id, body)
	if err != nil {
		return jsonFailure(c, err)
	}
	return jsonSuccess(c, tool)
}

// CheckAccess reports whether the caller may edit the tool's content.
func (h *ToolHandler) CheckAccess(c fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, ok := paramID(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid tool id")
	}

	allowed, err := h.access.CheckToolAccess(c.Context(), user, id)
	if err != nil {
		return jsonFailure(c, err)
	}
	return jsonSuccess(c, models.ToolAccessResponse{ToolID: id, HasAccess: allowed})
}
