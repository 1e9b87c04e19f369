package postgres

import (
	"errors"
	"time"

	internal "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal"
	commentDatamodel "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/core/datamodel/comment"
	reportDatamodel "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/core/datamodel/report"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/report"
	"gorm.io/gorm"
)

// ReportRepository implements report.RepositoryAPI using GORM. The
// conditional updates carry their guard in the WHERE clause so concurrency
// control happens in the database, not in Go.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// conn falls back to the repository's own handle when no transaction is
// passed.
func (r *ReportRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *ReportRepository) Create(tx *gorm.DB, rep *report.Report) error {
	row := report.ToDataModel(rep)
	if err := r.conn(tx).Create(row).Error; err != nil {
		return err
	}
	rep.ID = row.ID
	return nil
}

func (r *ReportRepository) GetByID(tx *gorm.DB, orgID, id int64, includeDeleted bool) (*report.Report, error) {
	q := r.conn(tx).Where("id = ? AND org_id = ?", id, orgID)
	if !includeDeleted {
		q = q.Where("is_deleted = ?", false)
	}

	var row reportDatamodel.Report
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrReportNotFound
		}
		return nil, err
	}
	return report.FromDataModel(&row), nil
}

func (r *ReportRepository) FindActiveByAuthorAndDate(tx *gorm.DB, authorID int64, date time.Time) (*report.Report, error) {
	var row reportDatamodel.Report
	err := r.conn(tx).
		Where("author_id = ? AND report_date = ? AND is_deleted = ?", authorID, date, false).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return report.FromDataModel(&row), nil
}

// UpdateWithVersion is the optimistic write: the version condition makes the
// UPDATE a no-op when another writer got there first.
func (r *ReportRepository) UpdateWithVersion(tx *gorm.DB, id, expectedVersion int64, updates map[string]interface{}) (bool, error) {
	result := r.conn(tx).Model(&reportDatamodel.Report{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// TransitionStatus flips the report out of the given status. The status
// condition is the compare-and-swap that keeps two managers from finalizing
// the same report twice.
func (r *ReportRepository) TransitionStatus(tx *gorm.DB, id int64, from report.Status, updates map[string]interface{}) (bool, error) {
	result := r.conn(tx).Model(&reportDatamodel.Report{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *ReportRepository) DistinctProjectIDs(tx *gorm.DB, reportID int64) ([]int64, error) {
	var projectIDs []int64
	err := r.conn(tx).
		Table("work_items").
		Where("report_id = ?", reportID).
		Distinct("project_id").
		Pluck("project_id", &projectIDs).Error
	return projectIDs, err
}

func (r *ReportRepository) ListByAuthor(orgID, authorID int64, limit, offset int) ([]*report.Report, error) {
	var rows []*reportDatamodel.Report
	err := r.db.
		Where("org_id = ? AND author_id = ? AND is_deleted = ?", orgID, authorID, false).
		Order("report_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return report.FromDataModelSlice(rows), nil
}

func (r *ReportRepository) ListByOrg(orgID int64, limit, offset int) ([]*report.Report, error) {
	var rows []*reportDatamodel.Report
	err := r.db.
		Where("org_id = ? AND is_deleted = ?", orgID, false).
		Order("report_date DESC, author_id ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return report.FromDataModelSlice(rows), nil
}

// ListPendingForManager joins through the approvals ledger so a manager only
// sees reports still waiting on their own decision. FIFO by submission.
func (r *ReportRepository) ListPendingForManager(orgID, managerID int64, limit, offset int) ([]*report.Report, error) {
	var rows []*reportDatamodel.Report
	err := r.db.
		Joins("JOIN approvals ON approvals.report_id = reports.id").
		Where("approvals.manager_id = ? AND approvals.status = ?", managerID, "pending").
		Where("reports.org_id = ? AND reports.status = ? AND reports.is_deleted = ?", orgID, string(report.StatusSubmitted), false).
		Order("reports.submitted_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return report.FromDataModelSlice(rows), nil
}

func (r *ReportRepository) AddComment(tx *gorm.DB, orgID int64, c *report.Comment) error {
	row := &commentDatamodel.Comment{
		OrgID:       orgID,
		ReportID:    c.ReportID,
		AuthorID:    c.AuthorID,
		CommentType: c.CommentType,
		Content:     c.Content,
		CreatedAt:   c.CreatedAt,
	}
	if err := r.conn(tx).Create(row).Error; err != nil {
		return err
	}
	c.ID = row.ID
	return nil
}

func (r *ReportRepository) ListComments(orgID, reportID int64) ([]*report.Comment, error) {
	var rows []*commentDatamodel.Comment
	err := r.db.
		Where("org_id = ? AND report_id = ?", orgID, reportID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	comments := make([]*report.Comment, len(rows))
	for i, row := range rows {
		comments[i] = report.CommentFromDataModel(row)
	}
	return comments, nil
}
