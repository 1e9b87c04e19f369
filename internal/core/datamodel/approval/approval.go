package approval

import "time"

// ApprovalFlow defines who approves whose reports for a project. A row with
// ApplicantID set applies to that applicant only and wins over generic rows.
type ApprovalFlow struct {
	ID            int64     `gorm:"primaryKey"`
	OrgID         int64     `gorm:"column:org_id;not null;index"`
	ProjectID     int64     `gorm:"column:project_id;not null;index:idx_approval_flows_project"`
	ApproverID    int64     `gorm:"column:approver_id;not null"`
	ApplicantID   *int64    `gorm:"column:applicant_id;index:idx_approval_flows_project"`
	ApprovalLevel int       `gorm:"column:approval_level;not null;default:1"`
	CreatedAt     time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt     time.Time `gorm:"column:updated_at;default:now()"`
}

func (ApprovalFlow) TableName() string {
	return "approval_flows"
}

// Approval is one pending decision for one resolved approver, created when
// a report transitions to submitted.
type Approval struct {
	ID         int64      `gorm:"primaryKey"`
	OrgID      int64      `gorm:"column:org_id;not null;index"`
	ReportID   int64      `gorm:"column:report_id;not null;index:idx_approvals_report_manager"`
	ManagerID  int64      `gorm:"column:manager_id;not null;index:idx_approvals_report_manager"`
	Status     string     `gorm:"column:status;not null;default:pending;index"`
	Comment    *string    `gorm:"column:comment"`
	ApprovedAt *time.Time `gorm:"column:approved_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;default:now()"`
}

func (Approval) TableName() string {
	return "approvals"
}
