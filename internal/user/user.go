package user

import (
	"time"

	userDatamodel "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/core/datamodel/user"
)

// Profile is the public view of a user_profiles row. The password hash
// never leaves the repository layer.
type Profile struct {
	ID          int64     `json:"id"`
	OrgID       int64     `json:"org_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	ExternalSub string    `json:"external_sub,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromDataModel(row *userDatamodel.UserProfile) *Profile {
	return &Profile{
		ID:          row.ID,
		OrgID:       row.OrgID,
		Email:       row.Email,
		DisplayName: row.DisplayName,
		Role:        row.Role,
		ExternalSub: row.ExternalSub,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
