package user

import "time"

// UserProfile is created on first authenticated sign-in. Role and org link
// are mutated by identity webhook events only, never by end-user requests.
type UserProfile struct {
	ID           int64     `gorm:"primaryKey"`
	OrgID        int64     `gorm:"column:org_id;not null;index"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	DisplayName  string    `gorm:"column:display_name;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"column:role;not null;default:member"`
	ExternalSub  string    `gorm:"column:external_sub;uniqueIndex"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `gorm:"column:updated_at;default:now()"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
