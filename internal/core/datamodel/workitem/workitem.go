package workitem

import "time"

// WorkItem is a line item owned by its parent report. It carries its own
// version so two edits of different items never conflict with each other.
type WorkItem struct {
	ID              int64     `gorm:"primaryKey"`
	OrgID           int64     `gorm:"column:org_id;not null;index"`
	ReportID        int64     `gorm:"column:report_id;not null;index"`
	ProjectID       int64     `gorm:"column:project_id;not null"`
	WorkCategoryID  int64     `gorm:"column:work_category_id;not null"`
	Description     string    `gorm:"column:description;not null"`
	DurationMinutes int       `gorm:"column:duration_minutes;not null"`
	Version         int64     `gorm:"column:version;not null;default:1"`
	CreatedAt       time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt       time.Time `gorm:"column:updated_at;default:now()"`
}

func (WorkItem) TableName() string {
	return "work_items"
}
