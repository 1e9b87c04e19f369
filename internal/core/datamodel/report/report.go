package report

import "time"

// Report is the central entity of the daily-report lifecycle. Version is the
// optimistic-lock token and strictly increases on every successful write.
type Report struct {
	ID              int64      `gorm:"primaryKey"`
	OrgID           int64      `gorm:"column:org_id;not null;index"`
	AuthorID        int64      `gorm:"column:author_id;not null;index:idx_reports_author_date"`
	ReportDate      time.Time  `gorm:"column:report_date;type:date;not null;index:idx_reports_author_date"`
	Title           string     `gorm:"column:title;not null"`
	Content         string     `gorm:"column:content;not null"`
	Status          string     `gorm:"column:status;not null;default:draft;index"`
	WorkingHours    *float64   `gorm:"column:working_hours"`
	Metadata        string     `gorm:"column:metadata;type:jsonb"`
	RejectionReason *string    `gorm:"column:rejection_reason"`
	RejectedAt      *time.Time `gorm:"column:rejected_at"`
	SubmittedAt     *time.Time `gorm:"column:submitted_at"`
	ApprovedAt      *time.Time `gorm:"column:approved_at"`
	IsDeleted       bool       `gorm:"column:is_deleted;not null;default:false"`
	Version         int64      `gorm:"column:version;not null;default:1"`
	CreatedAt       time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;default:now()"`
}

func (Report) TableName() string {
	return "reports"
}
