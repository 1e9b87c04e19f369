package audit

import (
	"time"
)

// Actions recorded in the audit trail. One entry per mutating call.
const (
	ActionCreateReport  = "report.create"
	ActionUpdateReport  = "report.update"
	ActionSubmitReport  = "report.submit"
	ActionApproveReport = "report.approve"
	ActionRejectReport  = "report.reject"
	ActionDeleteReport  = "report.delete"
	ActionRestoreReport = "report.restore"

	ActionAddComment = "comment.add"

	ActionCreateWorkItem = "workitem.create"
	ActionUpdateWorkItem = "workitem.update"
	ActionDeleteWorkItem = "workitem.delete"

	ActionCreateFlowRule = "approvalflow.create"
	ActionDeleteFlowRule = "approvalflow.delete"

	ActionProfileWebhook = "profile.webhook"
)

// Entry is the domain view of one audit record.
type Entry struct {
	ID        int64       `json:"id"`
	OrgID     int64       `json:"org_id"`
	ActorID   int64       `json:"actor_id"`
	Action    string      `json:"action"`
	Payload   interface{} `json:"payload"`
	CreatedAt time.Time   `json:"created_at"`
}

// Payloads are typed per action instead of free-form maps; only report
// metadata stays an open map because users enter it freely.

type ReportPayload struct {
	ReportID   int64             `json:"report_id"`
	ReportDate string            `json:"report_date,omitempty"`
	Status     string            `json:"status,omitempty"`
	Version    int64             `json:"version,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type SubmitPayload struct {
	ReportID      int64   `json:"report_id"`
	Version       int64   `json:"version"`
	ApproverIDs   []int64 `json:"approver_ids"`
	ApproverCount int     `json:"approver_count"`
}

type DecisionPayload struct {
	ReportID     int64  `json:"report_id"`
	ManagerID    int64  `json:"manager_id"`
	Decision     string `json:"decision"`
	Comment      string `json:"comment,omitempty"`
	Reason       string `json:"reason,omitempty"`
	FinalStatus  string `json:"final_status"`
	PendingCount int    `json:"pending_count"`
}

type CommentPayload struct {
	ReportID    int64  `json:"report_id"`
	CommentID   int64  `json:"comment_id"`
	CommentType string `json:"comment_type"`
}

type WorkItemPayload struct {
	ReportID   int64 `json:"report_id"`
	WorkItemID int64 `json:"work_item_id"`
	ProjectID  int64 `json:"project_id,omitempty"`
	Version    int64 `json:"version,omitempty"`
}

type FlowRulePayload struct {
	RuleID      int64  `json:"rule_id"`
	ProjectID   int64  `json:"project_id"`
	ApproverID  int64  `json:"approver_id"`
	ApplicantID *int64 `json:"applicant_id,omitempty"`
}

type ProfileWebhookPayload struct {
	ProfileID int64  `json:"profile_id"`
	EventType string `json:"event_type"`
	Role      string `json:"role,omitempty"`
	OrgID     int64  `json:"org_id,omitempty"`
}
