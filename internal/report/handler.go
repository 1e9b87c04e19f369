package report

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/approval"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/auth"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/transport"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateReport(actor *auth.Actor, dto CreateReportDTO) (*Report, error)
	UpdateReport(actor *auth.Actor, reportID int64, dto UpdateReportDTO) (*UpdateResult, error)
	ApproveReport(actor *auth.Actor, reportID int64, dto ApproveReportDTO) (*UpdateResult, error)
	RejectReport(actor *auth.Actor, reportID int64, dto RejectReportDTO) (*UpdateResult, error)
	DeleteReport(actor *auth.Actor, reportID int64) error
	RestoreReport(actor *auth.Actor, reportID int64) error
	AddComment(actor *auth.Actor, reportID int64, dto AddCommentDTO) (*Comment, error)
	GetReport(actor *auth.Actor, reportID int64) (*Report, error)
	ListMyReports(actor *auth.Actor, limit, offset int) ([]*Report, error)
	ListOrgReports(actor *auth.Actor, limit, offset int) ([]*Report, error)
	ListPendingApprovals(actor *auth.Actor, limit, offset int) ([]*Report, error)
	ListComments(actor *auth.Actor, reportID int64) ([]*Comment, error)
	ListApprovals(actor *auth.Actor, reportID int64) ([]*approval.Approval, error)
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

func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateReportDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateReport: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rep, err := h.Service.CreateReport(actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, rep)
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := pagination(r)

	var (
		reports []*Report
		err     error
	)
	if r.URL.Query().Get("scope") == "org" {
		reports, err = h.Service.ListOrgReports(actor, limit, offset)
	} else {
		reports, err = h.Service.ListMyReports(actor, limit, offset)
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	actor, reportID, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	rep, err := h.Service.GetReport(actor, reportID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rep)
}

func (h *Handler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	actor, reportID, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto UpdateReportDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateReport: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.UpdateReport(actor, reportID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) ApproveReport(w http.ResponseWriter, r *http.Request) {
	actor, reportID, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto ApproveReportDTO
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result, err := h.Service.ApproveReport(actor, reportID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) RejectReport(w http.ResponseWriter, r *http.Request) {
	actor, reportID, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto RejectReportDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.RejectReport(actor, reportID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	actor, reportID, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteReport(actor, reportID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RestoreReport(w http.ResponseWriter, r *http.Request) {
	actor, reportID, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	if err := h.Service.RestoreReport(actor, reportID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListPendingApprovals(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := pagination(r)
	reports, err := h.Service.ListPendingApprovals(actor, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	actor, reportID, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto AddCommentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := h.Service.AddComment(actor, reportID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, comment)
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	actor, reportID, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	comments, err := h.Service.ListComments(actor, reportID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

func (h *Handler) ListApprovals(w http.ResponseWriter, r *http.Request) {
	actor, reportID, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	approvals, err := h.Service.ListApprovals(actor, reportID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"approvals": approvals})
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
		h.WriteError(w, http.StatusBadRequest, "invalid report ID")
		return nil, 0, false
	}

	return actor, id, true
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}
	return limit, offset
}
