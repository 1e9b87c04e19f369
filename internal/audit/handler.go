package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/auth"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/transport"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(service *Service) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// ListAuditLogs handles GET /audit-logs. Route is admin-gated; the handler
// additionally scopes to the actor's own org.
func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 50
	offset := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 200 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	entries, err := h.Service.ListByOrg(actor.OrgID, limit, offset)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to list audit logs")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"limit":   limit,
		"offset":  offset,
	})
}
