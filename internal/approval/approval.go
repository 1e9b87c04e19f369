package approval

import (
	"time"

	approvalDatamodel "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/core/datamodel/approval"
	"gorm.io/gorm"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Approver is the resolved identity a submitted report is waiting on.
type Approver struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// FlowRule is the domain view of one approval_flows row. ApplicantID nil
// means the rule is generic and applies to every applicant on the project.
type FlowRule struct {
	ID            int64     `json:"id"`
	OrgID         int64     `json:"org_id"`
	ProjectID     int64     `json:"project_id"`
	ApproverID    int64     `json:"approver_id"`
	ApplicantID   *int64    `json:"applicant_id,omitempty"`
	ApprovalLevel int       `json:"approval_level"`
	CreatedAt     time.Time `json:"created_at"`
}

// Approval is the domain view of one pending/decided approval row.
type Approval struct {
	ID         int64      `json:"id"`
	ReportID   int64      `json:"report_id"`
	ManagerID  int64      `json:"manager_id"`
	Status     string     `json:"status"`
	Comment    *string    `json:"comment,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// RuleRepositoryAPI backs the pure resolver and the rule CRUD surface.
type RuleRepositoryAPI interface {
	GetSpecificRule(orgID, projectID, applicantID int64) (*FlowRule, error)
	GetGenericRules(orgID, projectID int64) ([]*FlowRule, error)
	GetApprovers(orgID int64, approverIDs []int64) ([]*Approver, error)
	ListRules(orgID int64) ([]*FlowRule, error)
	CreateRule(rule *FlowRule) error
	GetRule(orgID, ruleID int64) (*FlowRule, error)
	DeleteRule(orgID, ruleID int64) error
}

// LedgerAPI is the approvals sub-store the lifecycle engine drives inside
// its own transactions.
type LedgerAPI interface {
	CreatePending(tx *gorm.DB, orgID, reportID int64, approverIDs []int64) error
	// DeleteByReport clears every row for the report. A resubmission starts a
	// fresh approval round; rows from the previous round must not survive it
	// or an undecided approver from round one keeps the report pending forever.
	DeleteByReport(tx *gorm.DB, reportID int64) error
	// Decide flips this manager's row from pending to the given status; the
	// pending condition is the compare-and-swap that keeps two managers from
	// deciding the same row twice.
	Decide(tx *gorm.DB, reportID, managerID int64, status string, comment *string) (bool, error)
	CountPending(tx *gorm.DB, reportID int64) (int64, error)
	CountByReport(tx *gorm.DB, reportID int64) (int64, error)
	GetByReportAndManager(tx *gorm.DB, reportID, managerID int64) (*Approval, error)
	ListByReport(reportID int64) ([]*Approval, error)
}

func FromDataModel(row *approvalDatamodel.Approval) *Approval {
	return &Approval{
		ID:         row.ID,
		ReportID:   row.ReportID,
		ManagerID:  row.ManagerID,
		Status:     row.Status,
		Comment:    row.Comment,
		ApprovedAt: row.ApprovedAt,
		CreatedAt:  row.CreatedAt,
	}
}

func RuleFromDataModel(row *approvalDatamodel.ApprovalFlow) *FlowRule {
	return &FlowRule{
		ID:            row.ID,
		OrgID:         row.OrgID,
		ProjectID:     row.ProjectID,
		ApproverID:    row.ApproverID,
		ApplicantID:   row.ApplicantID,
		ApprovalLevel: row.ApprovalLevel,
		CreatedAt:     row.CreatedAt,
	}
}
