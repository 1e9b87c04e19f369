package workitem

import (
	"time"

	workitemDatamodel "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/core/datamodel/workitem"
)

// WorkItem is one line of a report's work ledger. Items carry their own
// version so edits to different items never conflict with each other or
// with the parent report's version.
type WorkItem struct {
	ID              int64     `json:"id"`
	OrgID           int64     `json:"org_id"`
	ReportID        int64     `json:"report_id"`
	ProjectID       int64     `json:"project_id"`
	WorkCategoryID  int64     `json:"work_category_id"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration_minutes"`
	Version         int64     `json:"version"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func ToDataModel(item *WorkItem) *workitemDatamodel.WorkItem {
	return &workitemDatamodel.WorkItem{
		ID:              item.ID,
		OrgID:           item.OrgID,
		ReportID:        item.ReportID,
		ProjectID:       item.ProjectID,
		WorkCategoryID:  item.WorkCategoryID,
		Description:     item.Description,
		DurationMinutes: item.DurationMinutes,
		Version:         item.Version,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}

func FromDataModel(row *workitemDatamodel.WorkItem) *WorkItem {
	return &WorkItem{
		ID:              row.ID,
		OrgID:           row.OrgID,
		ReportID:        row.ReportID,
		ProjectID:       row.ProjectID,
		WorkCategoryID:  row.WorkCategoryID,
		Description:     row.Description,
		DurationMinutes: row.DurationMinutes,
		Version:         row.Version,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*workitemDatamodel.WorkItem) []*WorkItem {
	result := make([]*WorkItem, len(rows))
	for i, row := range rows {
		result[i] = FromDataModel(row)
	}
	return result
}
