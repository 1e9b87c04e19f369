package audit

import "time"

// AuditLogEntry is append-only. Nothing in the codebase updates or deletes
// these rows; they are the source of truth for what happened and when.
type AuditLogEntry struct {
	ID        int64     `gorm:"primaryKey"`
	OrgID     int64     `gorm:"column:org_id;not null;index"`
	ActorID   int64     `gorm:"column:actor_id;not null;index"`
	Action    string    `gorm:"column:action;not null;index"`
	Payload   string    `gorm:"column:payload;type:jsonb"`
	CreatedAt time.Time `gorm:"column:created_at;default:now();index"`
}

func (AuditLogEntry) TableName() string {
	return "audit_logs"
}
