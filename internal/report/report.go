package report

import (
	"encoding/json"
	"time"

	commentDatamodel "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/core/datamodel/comment"
	reportDatamodel "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/core/datamodel/report"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanTransition is the report state machine. Approved is terminal; rejected
// reports can be edited back to draft or resubmitted directly.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusDraft:
		return to == StatusSubmitted
	case StatusSubmitted:
		return to == StatusApproved || to == StatusRejected
	case StatusRejected:
		return to == StatusDraft || to == StatusSubmitted
	default:
		return false
	}
}

const (
	CommentTypeUser   = "user"
	CommentTypeSystem = "system"
	CommentTypeAI     = "ai"
)

type Report struct {
	ID              int64             `json:"id"`
	OrgID           int64             `json:"org_id"`
	AuthorID        int64             `json:"author_id"`
	ReportDate      time.Time         `json:"report_date"`
	Title           string            `json:"title"`
	Content         string            `json:"content"`
	Status          Status            `json:"status"`
	WorkingHours    *float64          `json:"working_hours,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	RejectionReason *string           `json:"rejection_reason,omitempty"`
	RejectedAt      *time.Time        `json:"rejected_at,omitempty"`
	SubmittedAt     *time.Time        `json:"submitted_at,omitempty"`
	ApprovedAt      *time.Time        `json:"approved_at,omitempty"`
	IsDeleted       bool              `json:"is_deleted"`
	Version         int64             `json:"version"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (r *Report) IsEditable() bool {
	return r.Status == StatusDraft || r.Status == StatusRejected
}

func (r *Report) CanBeDeleted() bool {
	return !r.IsDeleted && r.IsEditable()
}

type Comment struct {
	ID          int64     `json:"id"`
	ReportID    int64     `json:"report_id"`
	AuthorID    *int64    `json:"author_id,omitempty"`
	CommentType string    `json:"comment_type"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToDataModel(r *Report) *reportDatamodel.Report {
	var metadata string
	if len(r.Metadata) > 0 {
		if raw, err := json.Marshal(r.Metadata); err == nil {
			metadata = string(raw)
		}
	}

	return &reportDatamodel.Report{
		ID:              r.ID,
		OrgID:           r.OrgID,
		AuthorID:        r.AuthorID,
		ReportDate:      r.ReportDate,
		Title:           r.Title,
		Content:         r.Content,
		Status:          string(r.Status),
		WorkingHours:    r.WorkingHours,
		Metadata:        metadata,
		RejectionReason: r.RejectionReason,
		RejectedAt:      r.RejectedAt,
		SubmittedAt:     r.SubmittedAt,
		ApprovedAt:      r.ApprovedAt,
		IsDeleted:       r.IsDeleted,
		Version:         r.Version,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func FromDataModel(row *reportDatamodel.Report) *Report {
	var metadata map[string]string
	if row.Metadata != "" {
		_ = json.Unmarshal([]byte(row.Metadata), &metadata)
	}

	return &Report{
		ID:              row.ID,
		OrgID:           row.OrgID,
		AuthorID:        row.AuthorID,
		ReportDate:      row.ReportDate,
		Title:           row.Title,
		Content:         row.Content,
		Status:          Status(row.Status),
		WorkingHours:    row.WorkingHours,
		Metadata:        metadata,
		RejectionReason: row.RejectionReason,
		RejectedAt:      row.RejectedAt,
		SubmittedAt:     row.SubmittedAt,
		ApprovedAt:      row.ApprovedAt,
		IsDeleted:       row.IsDeleted,
		Version:         row.Version,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*reportDatamodel.Report) []*Report {
	result := make([]*Report, len(rows))
	for i, row := range rows {
		result[i] = FromDataModel(row)
	}
	return result
}

func CommentFromDataModel(row *commentDatamodel.Comment) *Comment {
	return &Comment{
		ID:          row.ID,
		ReportID:    row.ReportID,
		AuthorID:    row.AuthorID,
		CommentType: row.CommentType,
		Content:     row.Content,
		CreatedAt:   row.CreatedAt,
	}
}
