package postgres

import (
	"encoding/json"
	"time"

	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/audit"
	auditDatamodel "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/core/datamodel/audit"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.RepositoryAPI {
	return &AuditRepository{db: db}
}

// Append inserts one immutable entry. When tx is nil the write uses the
// repository's own connection (best-effort path).
func (r *AuditRepository) Append(tx *gorm.DB, orgID, actorID int64, action string, payload interface{}) error {
	db := tx
	if db == nil {
		db = r.db
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	entry := &auditDatamodel.AuditLogEntry{
		OrgID:     orgID,
		ActorID:   actorID,
		Action:    action,
		Payload:   string(raw),
		CreatedAt: time.Now(),
	}
	return db.Create(entry).Error
}

func (r *AuditRepository) ListByOrg(orgID int64, limit, offset int) ([]*audit.Entry, error) {
	var rows []*auditDatamodel.AuditLogEntry
	err := r.db.Where("org_id = ?", orgID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*audit.Entry, len(rows))
	for i, row := range rows {
		var payload interface{}
		if row.Payload != "" {
			_ = json.Unmarshal([]byte(row.Payload), &payload)
		}
		entries[i] = &audit.Entry{
			ID:        row.ID,
			OrgID:     row.OrgID,
			ActorID:   row.ActorID,
			Action:    row.Action,
			Payload:   payload,
			CreatedAt: row.CreatedAt,
		}
	}
	return entries, nil
}
