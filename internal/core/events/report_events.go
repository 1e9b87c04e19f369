package events

import (
	"fmt"
	"time"
)

const (
	ReportSubmitted = "report.submitted"
	ReportApproved  = "report.approved"
	ReportRejected  = "report.rejected"
)

// ReportEvent announces a lifecycle transition after it committed. Handlers
// (notifications, digests) must treat it as read-only.
type ReportEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	ReportID    int64     `json:"report_id"`
	OrgID       int64     `json:"org_id"`
	ActorID     int64     `json:"actor_id"`
	AuthorID    int64     `json:"author_id"`
	ApproverIDs []int64   `json:"approver_ids,omitempty"`
}

func NewReportEvent(eventType string, reportID, orgID, actorID, authorID int64, approverIDs []int64) ReportEvent {
	return ReportEvent{
		ID:          fmt.Sprintf("%s-%d-%d", eventType, reportID, time.Now().UnixNano()),
		Type:        eventType,
		Timestamp:   time.Now(),
		ReportID:    reportID,
		OrgID:       orgID,
		ActorID:     actorID,
		AuthorID:    authorID,
		ApproverIDs: approverIDs,
	}
}

func (e ReportEvent) EventType() string {
	return e.Type
}

func (e ReportEvent) EventID() string {
	return e.ID
}

func (e ReportEvent) OccurredAt() time.Time {
	return e.Timestamp
}

func (e ReportEvent) Payload() interface{} {
	return map[string]interface{}{
		"report_id":    e.ReportID,
		"org_id":       e.OrgID,
		"actor_id":     e.ActorID,
		"author_id":    e.AuthorID,
		"approver_ids": e.ApproverIDs,
	}
}
