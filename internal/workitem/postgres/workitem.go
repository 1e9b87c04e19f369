package postgres

import (
	"errors"

	internal "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal"
	projectDatamodel "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/core/datamodel/project"
	workitemDatamodel "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/core/datamodel/workitem"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/workitem"
	"gorm.io/gorm"
)

// WorkItemRepository implements workitem.RepositoryAPI using GORM.
type WorkItemRepository struct {
	db *gorm.DB
}

func NewWorkItemRepository(db *gorm.DB) *WorkItemRepository {
	return &WorkItemRepository{db: db}
}

func (r *WorkItemRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *WorkItemRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func (r *WorkItemRepository) Create(tx *gorm.DB, item *workitem.WorkItem) error {
	row := workitem.ToDataModel(item)
	if err := r.conn(tx).Create(row).Error; err != nil {
		return err
	}
	item.ID = row.ID
	return nil
}

func (r *WorkItemRepository) GetByID(tx *gorm.DB, orgID, id int64) (*workitem.WorkItem, error) {
	var row workitemDatamodel.WorkItem
	err := r.conn(tx).Where("id = ? AND org_id = ?", id, orgID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrWorkItemNotFound
		}
		return nil, err
	}
	return workitem.FromDataModel(&row), nil
}

func (r *WorkItemRepository) UpdateWithVersion(tx *gorm.DB, id, expectedVersion int64, updates map[string]interface{}) (bool, error) {
	result := r.conn(tx).Model(&workitemDatamodel.WorkItem{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *WorkItemRepository) Delete(tx *gorm.DB, id int64) error {
	return r.conn(tx).Delete(&workitemDatamodel.WorkItem{}, id).Error
}

func (r *WorkItemRepository) ListByReport(orgID, reportID int64) ([]*workitem.WorkItem, error) {
	var rows []*workitemDatamodel.WorkItem
	err := r.db.
		Where("org_id = ? AND report_id = ?", orgID, reportID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return workitem.FromDataModelSlice(rows), nil
}

func (r *WorkItemRepository) ProjectExists(tx *gorm.DB, orgID, projectID int64) (bool, error) {
	var count int64
	err := r.conn(tx).Model(&projectDatamodel.Project{}).
		Where("id = ? AND org_id = ? AND is_active = ?", projectID, orgID, true).
		Count(&count).Error
	return count > 0, err
}

func (r *WorkItemRepository) CategoryExists(tx *gorm.DB, orgID, categoryID int64) (bool, error) {
	var count int64
	err := r.conn(tx).Model(&projectDatamodel.WorkCategory{}).
		Where("id = ? AND org_id = ?", categoryID, orgID).
		Count(&count).Error
	return count > 0, err
}
