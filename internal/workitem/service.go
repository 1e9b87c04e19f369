package workitem

import (
	"log/slog"
	"time"

	errors "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/audit"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/auth"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/report"
	"gorm.io/gorm"
)

type RepositoryAPI interface {
	Transaction(fn func(tx *gorm.DB) error) error
	Create(tx *gorm.DB, item *WorkItem) error
	GetByID(tx *gorm.DB, orgID, id int64) (*WorkItem, error)
	UpdateWithVersion(tx *gorm.DB, id, expectedVersion int64, updates map[string]interface{}) (bool, error)
	Delete(tx *gorm.DB, id int64) error
	ListByReport(orgID, reportID int64) ([]*WorkItem, error)
	ProjectExists(tx *gorm.DB, orgID, projectID int64) (bool, error)
	CategoryExists(tx *gorm.DB, orgID, categoryID int64) (bool, error)
}

// ReportAccessAPI is the slice of the report store this service needs to
// check the parent's ownership and status.
type ReportAccessAPI interface {
	GetByID(tx *gorm.DB, orgID, id int64, includeDeleted bool) (*report.Report, error)
}

type Auditor interface {
	Append(tx *gorm.DB, orgID, actorID int64, action string, payload interface{}) error
}

// Service guards every work-item mutation with the parent report's rules:
// same org, author or manager, and the parent still editable. Items freeze
// the moment the report is submitted.
type Service struct {
	repo    RepositoryAPI
	reports ReportAccessAPI
	auditor Auditor
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, reports ReportAccessAPI, auditor Auditor, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		reports: reports,
		auditor: auditor,
		logger:  logger,
	}
}

func (s *Service) CreateWorkItem(actor *auth.Actor, reportID int64, dto CreateWorkItemDTO) (*WorkItem, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	item := &WorkItem{
		OrgID:           actor.OrgID,
		ReportID:        reportID,
		ProjectID:       dto.ProjectID,
		WorkCategoryID:  dto.WorkCategoryID,
		Description:     dto.Description,
		DurationMinutes: dto.DurationMinutes,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := s.repo.Transaction(func(tx *gorm.DB) error {
		if err := s.guardParent(tx, actor, reportID); err != nil {
			return err
		}
		if err := s.guardReferences(tx, actor.OrgID, &dto.ProjectID, &dto.WorkCategoryID); err != nil {
			return err
		}

		if err := s.repo.Create(tx, item); err != nil {
			return err
		}

		return s.auditor.Append(tx, actor.OrgID, actor.ID, audit.ActionCreateWorkItem, audit.WorkItemPayload{
			ReportID:   reportID,
			WorkItemID: item.ID,
			ProjectID:  item.ProjectID,
			Version:    item.Version,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("work item created",
		"work_item_id", item.ID,
		"report_id", reportID,
		"actor_id", actor.ID)

	return item, nil
}

func (s *Service) UpdateWorkItem(actor *auth.Actor, itemID int64, dto UpdateWorkItemDTO) (*WorkItem, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if dto.IsEmpty() {
		return nil, errors.NewValidationError("patch must contain at least one field", errors.ErrCodeValidationFailed)
	}

	var updated *WorkItem
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.GetByID(tx, actor.OrgID, itemID)
		if err != nil {
			return err
		}
		if err := s.guardParent(tx, actor, item.ReportID); err != nil {
			return err
		}
		if err := s.guardReferences(tx, actor.OrgID, dto.ProjectID, dto.WorkCategoryID); err != nil {
			return err
		}

		newVersion := item.Version + 1
		updates := map[string]interface{}{
			"version":    newVersion,
			"updated_at": time.Now(),
		}
		if dto.ProjectID != nil {
			updates["project_id"] = *dto.ProjectID
		}
		if dto.WorkCategoryID != nil {
			updates["work_category_id"] = *dto.WorkCategoryID
		}
		if dto.Description != nil {
			updates["description"] = *dto.Description
		}
		if dto.DurationMinutes != nil {
			updates["duration_minutes"] = *dto.DurationMinutes
		}

		ok, err := s.repo.UpdateWithVersion(tx, item.ID, dto.ExpectedVersion, updates)
		if err != nil {
			return err
		}
		if !ok {
			stored, err := s.repo.GetByID(tx, actor.OrgID, itemID)
			if err != nil {
				return err
			}
			return errors.NewVersionConflictError(stored.Version)
		}

		if err := s.auditor.Append(tx, actor.OrgID, actor.ID, audit.ActionUpdateWorkItem, audit.WorkItemPayload{
			ReportID:   item.ReportID,
			WorkItemID: item.ID,
			Version:    newVersion,
		}); err != nil {
			return err
		}

		updated, err = s.repo.GetByID(tx, actor.OrgID, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *Service) DeleteWorkItem(actor *auth.Actor, itemID int64) error {
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.GetByID(tx, actor.OrgID, itemID)
		if err != nil {
			return err
		}
		if err := s.guardParent(tx, actor, item.ReportID); err != nil {
			return err
		}

		if err := s.repo.Delete(tx, item.ID); err != nil {
			return err
		}

		return s.auditor.Append(tx, actor.OrgID, actor.ID, audit.ActionDeleteWorkItem, audit.WorkItemPayload{
			ReportID:   item.ReportID,
			WorkItemID: item.ID,
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("work item deleted", "work_item_id", itemID, "actor_id", actor.ID)
	return nil
}

func (s *Service) ListWorkItems(actor *auth.Actor, reportID int64) ([]*WorkItem, error) {
	rep, err := s.reports.GetByID(nil, actor.OrgID, reportID, false)
	if err != nil {
		return nil, errors.ErrReportNotFound
	}
	if err := auth.RequireRole(actor, auth.RoleMember, rep.OrgID); err != nil {
		return nil, err
	}
	return s.repo.ListByReport(actor.OrgID, reportID)
}

// guardParent loads the parent report in the actor's org and rejects the
// mutation unless the actor may edit it and it is still editable.
func (s *Service) guardParent(tx *gorm.DB, actor *auth.Actor, reportID int64) error {
	rep, err := s.reports.GetByID(tx, actor.OrgID, reportID, false)
	if err != nil {
		return errors.ErrReportNotFound
	}
	if err := auth.RequireOwnershipOrManager(actor, rep.AuthorID, rep.OrgID); err != nil {
		return err
	}
	if !rep.IsEditable() {
		return errors.ErrCannotModifyReport
	}
	return nil
}

// guardReferences checks that any referenced project and category belong to
// the actor's org. Nil means the field is untouched.
func (s *Service) guardReferences(tx *gorm.DB, orgID int64, projectID, categoryID *int64) error {
	if projectID != nil {
		ok, err := s.repo.ProjectExists(tx, orgID, *projectID)
		if err != nil {
			return err
		}
		if !ok {
			return errors.ErrProjectNotFound
		}
	}
	if categoryID != nil {
		ok, err := s.repo.CategoryExists(tx, orgID, *categoryID)
		if err != nil {
			return err
		}
		if !ok {
			return errors.ErrCategoryNotFound
		}
	}
	return nil
}
