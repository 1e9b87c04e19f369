package user

import (
	errors "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/auth"
)

// Identity event types accepted by the webhook.
const (
	EventProfileCreated     = "profile.created"
	EventProfileRoleChanged = "profile.role_changed"
	EventProfileDeactivated = "profile.deactivated"
	EventProfileReactivated = "profile.reactivated"
)

// IdentityEventDTO is one event from the external identity provider. The
// profile is keyed by external_sub; role and org assignments only change
// through these events, never through end-user requests.
type IdentityEventDTO struct {
	EventType   string `json:"event_type"`
	ExternalSub string `json:"external_sub"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role,omitempty"`
	OrgID       int64  `json:"org_id,omitempty"`
}

func (dto IdentityEventDTO) Validate() error {
	if dto.ExternalSub == "" {
		return errors.NewValidationFieldError("external_sub", "external_sub is required", errors.ErrCodeValidationFailed)
	}

	switch dto.EventType {
	case EventProfileCreated:
		if dto.Email == "" {
			return errors.NewValidationFieldError("email", "email is required for profile.created", errors.ErrCodeValidationFailed)
		}
		if dto.OrgID <= 0 {
			return errors.NewValidationFieldError("org_id", "org_id is required for profile.created", errors.ErrCodeValidationFailed)
		}
	case EventProfileRoleChanged:
		if !auth.Role(dto.Role).Valid() {
			return errors.NewValidationFieldError("role", "role must be member, manager or admin", errors.ErrCodeValidationFailed)
		}
	case EventProfileDeactivated, EventProfileReactivated:
	default:
		return errors.NewValidationFieldError("event_type", "unknown event_type", errors.ErrCodeValidationFailed)
	}

	if dto.EventType == EventProfileCreated && dto.Role != "" && !auth.Role(dto.Role).Valid() {
		return errors.NewValidationFieldError("role", "role must be member, manager or admin", errors.ErrCodeValidationFailed)
	}
	return nil
}
