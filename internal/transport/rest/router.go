package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/approval"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/audit"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/auth"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/report"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/transport/middleware"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/transport/swagger"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/user"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/workitem"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers bundles everything RegisterAllRoutes mounts. Nil entries are
// skipped so partial wiring stays possible in tests.
type Handlers struct {
	Auth     *auth.Handler
	Roles    *auth.RoleMiddleware
	User     *user.Handler
	Webhook  *user.WebhookHandler
	Report   *report.Handler
	WorkItem *workitem.Handler
	Approval *approval.Handler
	Audit    *audit.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// OpenAPI document and Swagger UI live outside the API prefix
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Webhook != nil {
			r.Post("/webhooks/identity", h.Webhook.HandleIdentityEvent)
		}

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)
			}

			if h.Report != nil {
				pr.Route("/reports", func(rr chi.Router) {
					rr.Post("/", h.Report.CreateReport)
					rr.Get("/", h.Report.ListReports)
					rr.Get("/{id}", h.Report.GetReport)
					rr.Patch("/{id}", h.Report.UpdateReport)
					rr.Delete("/{id}", h.Report.DeleteReport)
					rr.Post("/{id}/restore", h.Report.RestoreReport)

					rr.Post("/{id}/comments", h.Report.AddComment)
					rr.Get("/{id}/comments", h.Report.ListComments)
					rr.Get("/{id}/approvals", h.Report.ListApprovals)

					if h.WorkItem != nil {
						rr.Get("/{id}/work-items", h.WorkItem.ListWorkItems)
						rr.Post("/{id}/work-items", h.WorkItem.CreateWorkItem)
					}

					if h.Roles != nil {
						rr.Group(func(mr chi.Router) {
							mr.Use(h.Roles.RequireManager())
							mr.Get("/pending-approvals", h.Report.ListPendingApprovals)
							mr.Patch("/{id}/approve", h.Report.ApproveReport)
							mr.Patch("/{id}/reject", h.Report.RejectReport)
						})
					}
				})
			}

			if h.WorkItem != nil {
				pr.Route("/work-items", func(wr chi.Router) {
					wr.Patch("/{id}", h.WorkItem.UpdateWorkItem)
					wr.Delete("/{id}", h.WorkItem.DeleteWorkItem)
				})
			}

			if h.Approval != nil && h.Roles != nil {
				pr.Group(func(mr chi.Router) {
					mr.Use(h.Roles.RequireManager())
					mr.Route("/approval-flows", func(ar chi.Router) {
						ar.Get("/", h.Approval.ListFlowRules)
						ar.Post("/", h.Approval.CreateFlowRule)
						ar.Delete("/{id}", h.Approval.DeleteFlowRule)
					})
				})
			}

			if h.Audit != nil && h.Roles != nil {
				pr.Group(func(ar chi.Router) {
					ar.Use(h.Roles.RequireAdmin())
					ar.Get("/audit-logs", h.Audit.ListAuditLogs)
				})
			}
		})
	})
}
