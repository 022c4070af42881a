package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/salesdesk/api"
	"github.com/frahmantamala/salesdesk/internal"
	"github.com/frahmantamala/salesdesk/internal/auth"
	"github.com/frahmantamala/salesdesk/internal/metrics"
	"github.com/frahmantamala/salesdesk/internal/orgchart"
	"github.com/frahmantamala/salesdesk/internal/transport/middleware"
	"github.com/frahmantamala/salesdesk/internal/transport/swagger"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// RouterDeps collects what RegisterAllRoutes wires. OpenAPIRouter is nil
// when request validation is disabled.
type RouterDeps struct {
	Config         *internal.Config
	DB             *sql.DB
	TokenValidator auth.TokenValidator
	OrgHandler     *orgchart.Handler
	OpenAPIRouter  routers.Router
	Logger         *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, deps RouterDeps) {
	healthHandler := NewHealthHandler(deps.DB)
	cfg := deps.Config

	// Apply global middleware
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	if cfg.Observability.Metrics.Enabled {
		router.Use(metrics.Middleware)
		router.Handle(cfg.Observability.Metrics.Path, metrics.Handler())
	}

	// Serve the OpenAPI document at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.Spec)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if deps.OrgHandler == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(middleware.Tenant(deps.TokenValidator, deps.Logger))
			if deps.OpenAPIRouter != nil {
				pr.Use(middleware.OpenAPIValidator(deps.OpenAPIRouter, deps.Logger))
			}

			pr.Route("/org", func(orgRouter chi.Router) {
				orgRouter.Get("/users", deps.OrgHandler.ListUsers)
				orgRouter.Get("/tree", deps.OrgHandler.GetTree)
				orgRouter.Get("/audit-logs", deps.OrgHandler.GetAuditLogs)

				// Mutations are limited to editor roles
				orgRouter.Group(func(er chi.Router) {
					er.Use(middleware.RequireRoles(deps.Logger, cfg.Security.EditorRoles...))
					er.Post("/users/quick-add", deps.OrgHandler.QuickAdd)
					er.Put("/users/{id}", deps.OrgHandler.SaveUser)
					er.Delete("/users/{id}", deps.OrgHandler.DeleteUser)
					er.Post("/users/{id}/move", deps.OrgHandler.MoveUser)
					er.Post("/drop", deps.OrgHandler.Drop)
				})
			})
		})
	})
}
