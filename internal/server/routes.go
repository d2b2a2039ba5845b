package server

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketmind/internal/access"
	"marketmind/internal/handlers/api"
	"marketmind/internal/middleware"
	"marketmind/internal/reviews"
	"marketmind/internal/trending"
)

// Store is everything the HTTP layer needs from persistence.
type Store interface {
	middleware.UserStore
	access.Store
	reviews.Store
	api.ToolAdminStore
	api.UserStore
	api.Pinger
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, store Store, engine *trending.Engine) error {
	// Initialize middleware
	auth := middleware.NewAuthMiddleware(store, s.Cfg.JWTSecret, s.Cfg.JWTIssuer)
	if s.Cfg.HasOIDC() {
		if err := auth.EnableOIDC(ctx, s.Cfg.OIDCIssuer, s.Cfg.OIDCClientID); err != nil {
			return err
		}
		log.Printf("Accepting OIDC ID tokens from %s", s.Cfg.OIDCIssuer)
	}

	// Initialize services and handlers
	accessSvc := access.NewService(store)
	toolHandler := api.NewToolHandler(engine, accessSvc, store)
	accessHandler := api.NewAccessRequestHandler(accessSvc)
	reviewHandler := api.NewReviewHandler(reviews.NewService(store, reviews.WithAggregateHook(engine.InvalidateLists)))
	userHandler := api.NewUserHandler(store)
	healthHandler := api.NewHealthHandler(store)

	// Operational routes
	s.App.Get("/healthz", healthHandler.Check)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Public routes - identity is optional
	s.App.Get("/tools/analytics", auth.OptionalAuth, toolHandler.Analytics)
	s.App.Get("/tools/:id", auth.OptionalAuth, toolHandler.Get)
	s.App.Get("/tools/:id/reviews", auth.OptionalAuth, reviewHandler.List)

	// Authenticated routes
	s.App.Get("/me", auth.RequireAuth, userHandler.Me)
	s.App.Post("/tools/:id/reviews", auth.RequireAuth, reviewHandler.Create)
	s.App.Put("/reviews/:id", auth.RequireAuth, reviewHandler.Update)
	s.App.Delete("/reviews/:id", auth.RequireAuth, reviewHandler.Delete)

	// Admin routes (admin and superadmin)
	admin := s.App.Group("/admin", auth.RequireAuth, middleware.RequireAdmin)
	admin.Post("/tools/update-trending", middleware.RequireSuperadmin, toolHandler.UpdateTrending)
	admin.Get("/tools/my-requests", accessHandler.MyRequests)
	admin.Post("/tools/:id/request-access", accessHandler.RequestAccess)
	admin.Put("/tools/:id/content", toolHandler.UpdateContent)
	admin.Get("/tools/:id/access", toolHandler.CheckAccess)

	// Superadmin routes
	superadmin := s.App.Group("/superadmin", auth.RequireAuth, middleware.RequireSuperadmin)
	superadmin.Post("/tools", toolHandler.Create)
	superadmin.Put("/tools/:id/curation", toolHandler.UpdateCuration)
	superadmin.Get("/tools/access-requests", accessHandler.ListAll)
	superadmin.Put("/tools/access-requests/:id", accessHandler.Resolve)
	superadmin.Get("/users", userHandler.List)
	superadmin.Put("/users/:id/type", userHandler.UpdateType)

	return nil
}
