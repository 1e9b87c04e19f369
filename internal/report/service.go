package report

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	errors "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/approval"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/audit"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/auth"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/core/events"
	"gorm.io/gorm"
)

// RepositoryAPI is the report store. Methods taking tx run inside the
// caller's transaction; the conditional updates return false instead of an
// error when their WHERE guard matched no row.
type RepositoryAPI interface {
	Transaction(fn func(tx *gorm.DB) error) error
	Create(tx *gorm.DB, rep *Report) error
	GetByID(tx *gorm.DB, orgID, id int64, includeDeleted bool) (*Report, error)
	FindActiveByAuthorAndDate(tx *gorm.DB, authorID int64, date time.Time) (*Report, error)
	UpdateWithVersion(tx *gorm.DB, id, expectedVersion int64, updates map[string]interface{}) (bool, error)
	TransitionStatus(tx *gorm.DB, id int64, from Status, updates map[string]interface{}) (bool, error)
	DistinctProjectIDs(tx *gorm.DB, reportID int64) ([]int64, error)
	ListByAuthor(orgID, authorID int64, limit, offset int) ([]*Report, error)
	ListByOrg(orgID int64, limit, offset int) ([]*Report, error)
	ListPendingForManager(orgID, managerID int64, limit, offset int) ([]*Report, error)
	AddComment(tx *gorm.DB, orgID int64, c *Comment) error
	ListComments(orgID, reportID int64) ([]*Comment, error)
}

// ApproverResolver is the approval-flow lookup, satisfied by the approval
// service.
type ApproverResolver interface {
	FindApprovers(orgID, projectID, applicantID int64) ([]*approval.Approver, error)
}

// Auditor appends immutable audit entries. Append runs inside the mutation's
// transaction; AppendBestEffort never returns an error so a logging failure
// cannot mask the mutation's own outcome.
type Auditor interface {
	Append(tx *gorm.DB, orgID, actorID int64, action string, payload interface{}) error
	AppendBestEffort(orgID, actorID int64, action string, payload interface{})
}

// Service owns the report state machine and composes the guard, the version
// check, the approval resolver and the audit logger. Handlers never touch
// the store directly.
type Service struct {
	repo     RepositoryAPI
	resolver ApproverResolver
	ledger   approval.LedgerAPI
	auditor  Auditor
	bus      *events.EventBus
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, resolver ApproverResolver, ledger approval.LedgerAPI, auditor Auditor, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		ledger:   ledger,
		auditor:  auditor,
		bus:      bus,
		logger:   logger,
	}
}

// CheckVersion is the optimistic-concurrency gate. Zero means "no
// expectation" and is only legal on creation paths; any mismatch reports the
// stored version back so the caller can re-fetch and decide.
func CheckVersion(storedVersion, expectedVersion int64) error {
	if expectedVersion == 0 {
		return nil
	}
	if expectedVersion != storedVersion {
		return errors.NewVersionConflictError(storedVersion)
	}
	return nil
}

func (s *Service) CreateReport(actor *auth.Actor, dto CreateReportDTO) (*Report, error) {
	if err := auth.RequireRole(actor, auth.RoleMember, actor.OrgID); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		s.logger.Error("report validation failed", "error", err, "actor_id", actor.ID)
		return nil, err
	}

	now := time.Now()
	rep := &Report{
		OrgID:        actor.OrgID,
		AuthorID:     actor.ID,
		ReportDate:   dto.ReportDate,
		Title:        dto.Title,
		Content:      dto.Content,
		Status:       StatusDraft,
		WorkingHours: dto.WorkingHours,
		Metadata:     dto.Metadata,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.repo.Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindActiveByAuthorAndDate(tx, actor.ID, dto.ReportDate)
		if err != nil {
			return err
		}
		if existing != nil {
			return errors.ErrDuplicateReport
		}

		if err := s.repo.Create(tx, rep); err != nil {
			return err
		}

		return s.auditor.Append(tx, actor.OrgID, actor.ID, audit.ActionCreateReport, audit.ReportPayload{
			ReportID:   rep.ID,
			ReportDate: rep.ReportDate.Format("2006-01-02"),
			Status:     string(rep.Status),
			Version:    rep.Version,
			Metadata:   rep.Metadata,
		})
	})
	if err != nil {
		s.logger.Error("failed to create report", "error", err, "actor_id", actor.ID)
		return nil, err
	}

	s.logger.Info("report created",
		"report_id", rep.ID,
		"actor_id", actor.ID,
		"report_date", rep.ReportDate.Format("2006-01-02"))

	return rep, nil
}

// UpdateReport applies a patch under the optimistic version check. When the
// patch carries status=submitted it also resolves approvers, opens the
// pending-approval ledger and records the submission.
func (s *Service) UpdateReport(actor *auth.Actor, reportID int64, dto UpdateReportDTO) (*UpdateResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if dto.IsEmpty() {
		return nil, errors.NewValidationError("patch must contain at least one field", errors.ErrCodeValidationFailed)
	}

	var (
		result      *UpdateResult
		submitEvent *events.ReportEvent
	)

	err := s.repo.Transaction(func(tx *gorm.DB) error {
		rep, err := s.repo.GetByID(tx, actor.OrgID, reportID, false)
		if err != nil {
			return errors.ErrReportNotFound
		}

		if err := auth.RequireOwnershipOrManager(actor, rep.AuthorID, rep.OrgID); err != nil {
			return err
		}
		if err := CheckVersion(rep.Version, dto.ExpectedVersion); err != nil {
			return err
		}
		if !rep.IsEditable() {
			return errors.ErrCannotModifyReport
		}

		now := time.Now()
		newVersion := rep.Version + 1
		updates := map[string]interface{}{
			"version":    newVersion,
			"updated_at": now,
		}
		if dto.Title != nil {
			updates["title"] = *dto.Title
		}
		if dto.Content != nil {
			updates["content"] = *dto.Content
		}
		if dto.WorkingHours != nil {
			updates["working_hours"] = *dto.WorkingHours
		}
		if dto.Metadata != nil {
			updates["metadata"] = marshalMetadata(*dto.Metadata)
		}

		newStatus := rep.Status
		action := audit.ActionUpdateReport
		var payload interface{} = audit.ReportPayload{
			ReportID: rep.ID,
			Status:   string(rep.Status),
			Version:  newVersion,
		}

		if dto.Status != nil && *dto.Status != rep.Status {
			if !rep.Status.CanTransition(*dto.Status) {
				return errors.ErrInvalidReportStatus
			}
			newStatus = *dto.Status
			updates["status"] = string(newStatus)

			switch newStatus {
			case StatusSubmitted:
				approverIDs, err := s.resolveApprovers(tx, rep)
				if err != nil {
					return err
				}
				if len(approverIDs) == 0 {
					s.logger.Warn("report submitted with no configured approvers",
						"report_id", rep.ID,
						"author_id", rep.AuthorID)
				}
				// a resubmission starts a fresh approval round; stale rows
				// from the rejected round must not keep the report pending
				if err := s.ledger.DeleteByReport(tx, rep.ID); err != nil {
					return err
				}
				if err := s.ledger.CreatePending(tx, rep.OrgID, rep.ID, approverIDs); err != nil {
					return err
				}
				updates["submitted_at"] = now
				updates["rejection_reason"] = nil
				updates["rejected_at"] = nil

				if err := s.addSystemComment(tx, rep, "Report submitted for approval."); err != nil {
					return err
				}

				action = audit.ActionSubmitReport
				payload = audit.SubmitPayload{
					ReportID:      rep.ID,
					Version:       newVersion,
					ApproverIDs:   approverIDs,
					ApproverCount: len(approverIDs),
				}
				ev := events.NewReportEvent(events.ReportSubmitted, rep.ID, rep.OrgID, actor.ID, rep.AuthorID, approverIDs)
				submitEvent = &ev

			case StatusDraft:
				// rejected back to draft clears the rejection bookkeeping
				updates["rejection_reason"] = nil
				updates["rejected_at"] = nil
				if err := s.addSystemComment(tx, rep, "Report returned to draft."); err != nil {
					return err
				}
			}
		}

		ok, err := s.repo.UpdateWithVersion(tx, rep.ID, dto.ExpectedVersion, updates)
		if err != nil {
			return err
		}
		if !ok {
			stored, err := s.repo.GetByID(tx, actor.OrgID, reportID, true)
			if err != nil {
				return errors.ErrReportNotFound
			}
			return errors.NewVersionConflictError(stored.Version)
		}

		if err := s.auditor.Append(tx, rep.OrgID, actor.ID, action, payload); err != nil {
			return err
		}

		result = &UpdateResult{Version: newVersion, Status: newStatus}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if submitEvent != nil {
		_ = s.bus.Publish(context.Background(), *submitEvent)
	}

	s.logger.Info("report updated",
		"report_id", reportID,
		"actor_id", actor.ID,
		"new_version", result.Version,
		"status", result.Status)

	return result, nil
}

// ApproveReport records this manager's decision. The report only leaves
// submitted once every resolved approver has approved.
func (s *Service) ApproveReport(actor *auth.Actor, reportID int64, dto ApproveReportDTO) (*UpdateResult, error) {
	var (
		result        *UpdateResult
		approvedEvent *events.ReportEvent
	)

	err := s.repo.Transaction(func(tx *gorm.DB) error {
		rep, err := s.repo.GetByID(tx, actor.OrgID, reportID, false)
		if err != nil {
			return errors.ErrReportNotFound
		}

		if err := auth.RequireRole(actor, auth.RoleManager, rep.OrgID); err != nil {
			return err
		}
		if rep.AuthorID == actor.ID {
			return errors.ErrSelfApproval
		}
		if rep.Status != StatusSubmitted {
			return errors.ErrInvalidReportStatus
		}

		decided, err := s.ledger.Decide(tx, rep.ID, actor.ID, approval.StatusApproved, dto.Comment)
		if err != nil {
			return err
		}
		if !decided {
			// a report submitted with zero configured approvers has no rows
			// at all; any manager may close that gap directly
			total, err := s.ledger.CountByReport(tx, rep.ID)
			if err != nil {
				return err
			}
			if total > 0 {
				return errors.ErrApprovalNotFound
			}
		}

		pending, err := s.ledger.CountPending(tx, rep.ID)
		if err != nil {
			return err
		}

		finalStatus := StatusSubmitted
		newVersion := rep.Version
		if pending == 0 {
			now := time.Now()
			ok, err := s.repo.TransitionStatus(tx, rep.ID, StatusSubmitted, map[string]interface{}{
				"status":      string(StatusApproved),
				"approved_at": now,
				"version":     gorm.Expr("version + 1"),
				"updated_at":  now,
			})
			if err != nil {
				return err
			}
			if !ok {
				return errors.ErrInvalidReportStatus
			}
			finalStatus = StatusApproved
			newVersion = rep.Version + 1

			if err := s.addSystemComment(tx, rep, "Report approved."); err != nil {
				return err
			}

			ev := events.NewReportEvent(events.ReportApproved, rep.ID, rep.OrgID, actor.ID, rep.AuthorID, nil)
			approvedEvent = &ev
		}

		comment := ""
		if dto.Comment != nil {
			comment = *dto.Comment
		}
		if err := s.auditor.Append(tx, rep.OrgID, actor.ID, audit.ActionApproveReport, audit.DecisionPayload{
			ReportID:     rep.ID,
			ManagerID:    actor.ID,
			Decision:     approval.StatusApproved,
			Comment:      comment,
			FinalStatus:  string(finalStatus),
			PendingCount: int(pending),
		}); err != nil {
			return err
		}

		result = &UpdateResult{Version: newVersion, Status: finalStatus}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if approvedEvent != nil {
		_ = s.bus.Publish(context.Background(), *approvedEvent)
	}

	s.logger.Info("report approval recorded",
		"report_id", reportID,
		"manager_id", actor.ID,
		"final_status", result.Status)

	return result, nil
}

// RejectReport rejects the whole report regardless of other approvers'
// pending decisions. Reason is mandatory.
func (s *Service) RejectReport(actor *auth.Actor, reportID int64, dto RejectReportDTO) (*UpdateResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var (
		result        *UpdateResult
		rejectedEvent *events.ReportEvent
	)

	err := s.repo.Transaction(func(tx *gorm.DB) error {
		rep, err := s.repo.GetByID(tx, actor.OrgID, reportID, false)
		if err != nil {
			return errors.ErrReportNotFound
		}

		if err := auth.RequireRole(actor, auth.RoleManager, rep.OrgID); err != nil {
			return err
		}
		if rep.AuthorID == actor.ID {
			return errors.ErrSelfApproval
		}
		if rep.Status != StatusSubmitted {
			return errors.ErrInvalidReportStatus
		}

		decided, err := s.ledger.Decide(tx, rep.ID, actor.ID, approval.StatusRejected, &dto.Reason)
		if err != nil {
			return err
		}
		if !decided {
			total, err := s.ledger.CountByReport(tx, rep.ID)
			if err != nil {
				return err
			}
			if total > 0 {
				return errors.ErrApprovalNotFound
			}
		}

		now := time.Now()
		ok, err := s.repo.TransitionStatus(tx, rep.ID, StatusSubmitted, map[string]interface{}{
			"status":           string(StatusRejected),
			"rejection_reason": dto.Reason,
			"rejected_at":      now,
			"version":          gorm.Expr("version + 1"),
			"updated_at":       now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return errors.ErrInvalidReportStatus
		}

		if err := s.addSystemComment(tx, rep, "Report rejected: "+dto.Reason); err != nil {
			return err
		}

		if err := s.auditor.Append(tx, rep.OrgID, actor.ID, audit.ActionRejectReport, audit.DecisionPayload{
			ReportID:    rep.ID,
			ManagerID:   actor.ID,
			Decision:    approval.StatusRejected,
			Reason:      dto.Reason,
			FinalStatus: string(StatusRejected),
		}); err != nil {
			return err
		}

		ev := events.NewReportEvent(events.ReportRejected, rep.ID, rep.OrgID, actor.ID, rep.AuthorID, nil)
		rejectedEvent = &ev

		result = &UpdateResult{Version: rep.Version + 1, Status: StatusRejected}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if rejectedEvent != nil {
		_ = s.bus.Publish(context.Background(), *rejectedEvent)
	}

	s.logger.Info("report rejected",
		"report_id", reportID,
		"manager_id", actor.ID,
		"reason", dto.Reason)

	return result, nil
}

// DeleteReport soft-deletes. Approved and submitted reports are never
// deletable.
func (s *Service) DeleteReport(actor *auth.Actor, reportID int64) error {
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		rep, err := s.repo.GetByID(tx, actor.OrgID, reportID, false)
		if err != nil {
			return errors.ErrReportNotFound
		}

		if err := auth.RequireOwnershipOrManager(actor, rep.AuthorID, rep.OrgID); err != nil {
			return err
		}
		if !rep.CanBeDeleted() {
			return errors.ErrInvalidReportStatus
		}

		ok, err := s.repo.UpdateWithVersion(tx, rep.ID, rep.Version, map[string]interface{}{
			"is_deleted": true,
			"version":    rep.Version + 1,
			"updated_at": time.Now(),
		})
		if err != nil {
			return err
		}
		if !ok {
			stored, err := s.repo.GetByID(tx, actor.OrgID, reportID, true)
			if err != nil {
				return errors.ErrReportNotFound
			}
			return errors.NewVersionConflictError(stored.Version)
		}

		return s.auditor.Append(tx, rep.OrgID, actor.ID, audit.ActionDeleteReport, audit.ReportPayload{
			ReportID: rep.ID,
			Status:   string(rep.Status),
			Version:  rep.Version + 1,
		})
	})
	if err != nil {
		s.logger.Error("failed to delete report", "error", err, "report_id", reportID, "actor_id", actor.ID)
		return err
	}

	s.logger.Info("report soft-deleted", "report_id", reportID, "actor_id", actor.ID)
	return nil
}

// RestoreReport clears the soft-delete flag on a previously deleted report.
func (s *Service) RestoreReport(actor *auth.Actor, reportID int64) error {
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		rep, err := s.repo.GetByID(tx, actor.OrgID, reportID, true)
		if err != nil {
			return errors.ErrReportNotFound
		}
		if !rep.IsDeleted {
			return errors.NewValidationError("report is not deleted", errors.ErrCodeInvalidReportStatus)
		}

		if err := auth.RequireOwnershipOrManager(actor, rep.AuthorID, rep.OrgID); err != nil {
			return err
		}

		confl, err := s.repo.FindActiveByAuthorAndDate(tx, rep.AuthorID, rep.ReportDate)
		if err != nil {
			return err
		}
		if confl != nil {
			return errors.ErrDuplicateReport
		}

		ok, err := s.repo.UpdateWithVersion(tx, rep.ID, rep.Version, map[string]interface{}{
			"is_deleted": false,
			"version":    rep.Version + 1,
			"updated_at": time.Now(),
		})
		if err != nil {
			return err
		}
		if !ok {
			stored, err := s.repo.GetByID(tx, actor.OrgID, reportID, true)
			if err != nil {
				return errors.ErrReportNotFound
			}
			return errors.NewVersionConflictError(stored.Version)
		}

		return s.auditor.Append(tx, rep.OrgID, actor.ID, audit.ActionRestoreReport, audit.ReportPayload{
			ReportID: rep.ID,
			Status:   string(rep.Status),
			Version:  rep.Version + 1,
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("report restored", "report_id", reportID, "actor_id", actor.ID)
	return nil
}

// AddComment appends a user comment. Commenting needs org membership only
// and never touches the report's version.
func (s *Service) AddComment(actor *auth.Actor, reportID int64, dto AddCommentDTO) (*Comment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var c *Comment
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		rep, err := s.repo.GetByID(tx, actor.OrgID, reportID, false)
		if err != nil {
			return errors.ErrReportNotFound
		}
		if err := auth.RequireRole(actor, auth.RoleMember, rep.OrgID); err != nil {
			return err
		}

		authorID := actor.ID
		c = &Comment{
			ReportID:    rep.ID,
			AuthorID:    &authorID,
			CommentType: CommentTypeUser,
			Content:     dto.Content,
			CreatedAt:   time.Now(),
		}
		if err := s.repo.AddComment(tx, rep.OrgID, c); err != nil {
			return err
		}

		return s.auditor.Append(tx, rep.OrgID, actor.ID, audit.ActionAddComment, audit.CommentPayload{
			ReportID:    rep.ID,
			CommentID:   c.ID,
			CommentType: CommentTypeUser,
		})
	})
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) GetReport(actor *auth.Actor, reportID int64) (*Report, error) {
	rep, err := s.repo.GetByID(nil, actor.OrgID, reportID, false)
	if err != nil {
		return nil, errors.ErrReportNotFound
	}
	if err := auth.RequireRole(actor, auth.RoleMember, rep.OrgID); err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *Service) ListMyReports(actor *auth.Actor, limit, offset int) ([]*Report, error) {
	return s.repo.ListByAuthor(actor.OrgID, actor.ID, limit, offset)
}

func (s *Service) ListOrgReports(actor *auth.Actor, limit, offset int) ([]*Report, error) {
	if err := auth.RequireRole(actor, auth.RoleManager, actor.OrgID); err != nil {
		return nil, err
	}
	return s.repo.ListByOrg(actor.OrgID, limit, offset)
}

// ListPendingApprovals returns the submitted reports still waiting on the
// acting manager's decision.
func (s *Service) ListPendingApprovals(actor *auth.Actor, limit, offset int) ([]*Report, error) {
	if err := auth.RequireRole(actor, auth.RoleManager, actor.OrgID); err != nil {
		return nil, err
	}
	return s.repo.ListPendingForManager(actor.OrgID, actor.ID, limit, offset)
}

func (s *Service) ListComments(actor *auth.Actor, reportID int64) ([]*Comment, error) {
	if _, err := s.GetReport(actor, reportID); err != nil {
		return nil, err
	}
	return s.repo.ListComments(actor.OrgID, reportID)
}

func (s *Service) ListApprovals(actor *auth.Actor, reportID int64) ([]*approval.Approval, error) {
	if _, err := s.GetReport(actor, reportID); err != nil {
		return nil, err
	}
	return s.ledger.ListByReport(reportID)
}

// resolveApprovers unions the rule matches over every project the report's
// work items reference, deduplicated in first-seen order.
func (s *Service) resolveApprovers(tx *gorm.DB, rep *Report) ([]int64, error) {
	projectIDs, err := s.repo.DistinctProjectIDs(tx, rep.ID)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	var approverIDs []int64
	for _, projectID := range projectIDs {
		approvers, err := s.resolver.FindApprovers(rep.OrgID, projectID, rep.AuthorID)
		if err != nil {
			return nil, err
		}
		for _, a := range approvers {
			if a.ID == rep.AuthorID {
				// a rule may point at the author; self-approval stays forbidden
				continue
			}
			if !seen[a.ID] {
				seen[a.ID] = true
				approverIDs = append(approverIDs, a.ID)
			}
		}
	}
	return approverIDs, nil
}

func marshalMetadata(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(raw)
}

func (s *Service) addSystemComment(tx *gorm.DB, rep *Report, content string) error {
	return s.repo.AddComment(tx, rep.OrgID, &Comment{
		ReportID:    rep.ID,
		CommentType: CommentTypeSystem,
		Content:     content,
		CreatedAt:   time.Now(),
	})
}
