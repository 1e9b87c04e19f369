package user

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	errors "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/transport"
)

const signatureHeader = "X-Webhook-Signature"

// WebhookHandler receives identity provider events. The body is
// authenticated with an HMAC-SHA256 signature over the raw payload; an
// unsigned or mis-signed request never reaches the service.
type WebhookHandler struct {
	*transport.BaseHandler
	service ServiceAPI
	secret  []byte
	logger  *slog.Logger
}

func NewWebhookHandler(baseHandler *transport.BaseHandler, service ServiceAPI, secret string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler: baseHandler,
		service:     service,
		secret:      []byte(secret),
		logger:      logger,
	}
}

func (h *WebhookHandler) HandleIdentityEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "unable to read request body")
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	if !h.verifySignature(body, r.Header.Get(signatureHeader)) {
		h.logger.Warn("identity webhook rejected", "reason", "invalid signature", "remote_addr", r.RemoteAddr)
		h.HandleServiceError(w, errors.ErrInvalidSignature)
		return
	}

	var dto IdentityEventDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		h.logger.Error("invalid identity event payload", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.logger.Info("received identity event",
		"event_type", dto.EventType,
		"external_sub", dto.ExternalSub)

	profile, err := h.service.ApplyIdentityEvent(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "applied",
		"profile_id": profile.ID,
	})
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if signature == "" || len(h.secret) == 0 {
		return false
	}

	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
