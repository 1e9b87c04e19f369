package workitem

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/auth"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/transport"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateWorkItem(actor *auth.Actor, reportID int64, dto CreateWorkItemDTO) (*WorkItem, error)
	UpdateWorkItem(actor *auth.Actor, itemID int64, dto UpdateWorkItemDTO) (*WorkItem, error)
	DeleteWorkItem(actor *auth.Actor, itemID int64) error
	ListWorkItems(actor *auth.Actor, reportID int64) ([]*WorkItem, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) CreateWorkItem(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto CreateWorkItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Service.CreateWorkItem(actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) ListWorkItems(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	items, err := h.Service.ListWorkItems(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"work_items": items})
}

func (h *Handler) UpdateWorkItem(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto UpdateWorkItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Service.UpdateWorkItem(actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) DeleteWorkItem(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteWorkItem(actor, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) actorAndID(w http.ResponseWriter, r *http.Request) (*auth.Actor, int64, bool) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, 0, false
	}

	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid ID")
		return nil, 0, false
	}

	return actor, id, true
}
