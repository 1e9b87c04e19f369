package report_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/approval"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/auth"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/core/events"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/report"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func TestReport(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Report Suite")
}

// mockReportRepository keeps reports in memory and applies the same
// conditional-update semantics the real store gets from its WHERE clauses.
type mockReportRepository struct {
	reports    map[int64]*report.Report
	comments   []*report.Comment
	projectIDs map[int64][]int64
	nextID     int64
}

func newMockReportRepository() *mockReportRepository {
	return &mockReportRepository{
		reports:    make(map[int64]*report.Report),
		projectIDs: make(map[int64][]int64),
		nextID:     1,
	}
}

func (m *mockReportRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (m *mockReportRepository) Create(tx *gorm.DB, rep *report.Report) error {
	rep.ID = m.nextID
	m.nextID++
	stored := *rep
	m.reports[rep.ID] = &stored
	return nil
}

func (m *mockReportRepository) GetByID(tx *gorm.DB, orgID, id int64, includeDeleted bool) (*report.Report, error) {
	rep, ok := m.reports[id]
	if !ok || rep.OrgID != orgID {
		return nil, internal.ErrReportNotFound
	}
	if rep.IsDeleted && !includeDeleted {
		return nil, internal.ErrReportNotFound
	}
	copied := *rep
	return &copied, nil
}

func (m *mockReportRepository) FindActiveByAuthorAndDate(tx *gorm.DB, authorID int64, date time.Time) (*report.Report, error) {
	for _, rep := range m.reports {
		if rep.AuthorID == authorID && rep.ReportDate.Equal(date) && !rep.IsDeleted {
			copied := *rep
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockReportRepository) UpdateWithVersion(tx *gorm.DB, id, expectedVersion int64, updates map[string]interface{}) (bool, error) {
	rep, ok := m.reports[id]
	if !ok || rep.Version != expectedVersion {
		return false, nil
	}
	applyUpdates(rep, updates)
	return true, nil
}

func (m *mockReportRepository) TransitionStatus(tx *gorm.DB, id int64, from report.Status, updates map[string]interface{}) (bool, error) {
	rep, ok := m.reports[id]
	if !ok || rep.Status != from {
		return false, nil
	}
	applyUpdates(rep, updates)
	return true, nil
}

func (m *mockReportRepository) DistinctProjectIDs(tx *gorm.DB, reportID int64) ([]int64, error) {
	return m.projectIDs[reportID], nil
}

func (m *mockReportRepository) ListByAuthor(orgID, authorID int64, limit, offset int) ([]*report.Report, error) {
	var result []*report.Report
	for _, rep := range m.reports {
		if rep.OrgID == orgID && rep.AuthorID == authorID && !rep.IsDeleted {
			copied := *rep
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *mockReportRepository) ListByOrg(orgID int64, limit, offset int) ([]*report.Report, error) {
	var result []*report.Report
	for _, rep := range m.reports {
		if rep.OrgID == orgID && !rep.IsDeleted {
			copied := *rep
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *mockReportRepository) ListPendingForManager(orgID, managerID int64, limit, offset int) ([]*report.Report, error) {
	return nil, nil
}

func (m *mockReportRepository) AddComment(tx *gorm.DB, orgID int64, c *report.Comment) error {
	c.ID = int64(len(m.comments) + 1)
	m.comments = append(m.comments, c)
	return nil
}

func (m *mockReportRepository) ListComments(orgID, reportID int64) ([]*report.Comment, error) {
	var result []*report.Comment
	for _, c := range m.comments {
		if c.ReportID == reportID {
			result = append(result, c)
		}
	}
	return result, nil
}

func applyUpdates(rep *report.Report, updates map[string]interface{}) {
	for key, value := range updates {
		switch key {
		case "version":
			if _, isExpr := value.(clause.Expr); isExpr {
				rep.Version++
			} else {
				rep.Version = value.(int64)
			}
		case "status":
			rep.Status = report.Status(value.(string))
		case "title":
			rep.Title = value.(string)
		case "content":
			rep.Content = value.(string)
		case "working_hours":
			wh := value.(float64)
			rep.WorkingHours = &wh
		case "submitted_at":
			t := value.(time.Time)
			rep.SubmittedAt = &t
		case "approved_at":
			t := value.(time.Time)
			rep.ApprovedAt = &t
		case "rejected_at":
			if t, ok := value.(time.Time); ok {
				rep.RejectedAt = &t
			} else {
				rep.RejectedAt = nil
			}
		case "rejection_reason":
			if reason, ok := value.(string); ok {
				rep.RejectionReason = &reason
			} else {
				rep.RejectionReason = nil
			}
		case "is_deleted":
			rep.IsDeleted = value.(bool)
		}
	}
}

// mockLedger accumulates approval rows the way the real table does: every
// CreatePending inserts fresh rows, and only DeleteByReport removes them.
type ledgerRow struct {
	managerID int64
	status    string
}

type mockLedger struct {
	rows map[int64][]*ledgerRow
}

func newMockLedger() *mockLedger {
	return &mockLedger{rows: make(map[int64][]*ledgerRow)}
}

func (m *mockLedger) CreatePending(tx *gorm.DB, orgID, reportID int64, approverIDs []int64) error {
	for _, id := range approverIDs {
		m.rows[reportID] = append(m.rows[reportID], &ledgerRow{managerID: id, status: approval.StatusPending})
	}
	return nil
}

func (m *mockLedger) DeleteByReport(tx *gorm.DB, reportID int64) error {
	delete(m.rows, reportID)
	return nil
}

func (m *mockLedger) Decide(tx *gorm.DB, reportID, managerID int64, status string, comment *string) (bool, error) {
	for _, row := range m.rows[reportID] {
		if row.managerID == managerID && row.status == approval.StatusPending {
			row.status = status
			return true, nil
		}
	}
	return false, nil
}

func (m *mockLedger) CountPending(tx *gorm.DB, reportID int64) (int64, error) {
	var count int64
	for _, row := range m.rows[reportID] {
		if row.status == approval.StatusPending {
			count++
		}
	}
	return count, nil
}

func (m *mockLedger) CountByReport(tx *gorm.DB, reportID int64) (int64, error) {
	return int64(len(m.rows[reportID])), nil
}

func (m *mockLedger) GetByReportAndManager(tx *gorm.DB, reportID, managerID int64) (*approval.Approval, error) {
	for _, row := range m.rows[reportID] {
		if row.managerID == managerID {
			return &approval.Approval{ReportID: reportID, ManagerID: row.managerID, Status: row.status}, nil
		}
	}
	return nil, internal.ErrApprovalNotFound
}

func (m *mockLedger) ListByReport(reportID int64) ([]*approval.Approval, error) {
	var result []*approval.Approval
	for _, row := range m.rows[reportID] {
		result = append(result, &approval.Approval{ReportID: reportID, ManagerID: row.managerID, Status: row.status})
	}
	return result, nil
}

type mockResolver struct {
	approvers map[int64][]*approval.Approver
}

func (m *mockResolver) FindApprovers(orgID, projectID, applicantID int64) ([]*approval.Approver, error) {
	return m.approvers[projectID], nil
}

type auditEntry struct {
	orgID   int64
	actorID int64
	action  string
	payload interface{}
}

type mockAuditor struct {
	entries []auditEntry
}

func (m *mockAuditor) Append(tx *gorm.DB, orgID, actorID int64, action string, payload interface{}) error {
	m.entries = append(m.entries, auditEntry{orgID, actorID, action, payload})
	return nil
}

func (m *mockAuditor) AppendBestEffort(orgID, actorID int64, action string, payload interface{}) {
	m.entries = append(m.entries, auditEntry{orgID, actorID, action, payload})
}

func (m *mockAuditor) actions() []string {
	result := make([]string, len(m.entries))
	for i, e := range m.entries {
		result[i] = e.action
	}
	return result
}

var _ = Describe("Report Service", func() {
	var (
		repo     *mockReportRepository
		ledger   *mockLedger
		resolver *mockResolver
		auditor  *mockAuditor
		service  *report.Service
	)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	author := &auth.Actor{ID: 10, OrgID: 1, Role: auth.RoleMember}
	manager := &auth.Actor{ID: 20, OrgID: 1, Role: auth.RoleManager}
	secondManager := &auth.Actor{ID: 21, OrgID: 1, Role: auth.RoleManager}
	outsider := &auth.Actor{ID: 30, OrgID: 2, Role: auth.RoleAdmin}

	reportDate := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	BeforeEach(func() {
		repo = newMockReportRepository()
		ledger = newMockLedger()
		resolver = &mockResolver{approvers: map[int64][]*approval.Approver{
			1: {{ID: 20}},
			2: {{ID: 20}, {ID: 21}},
		}}
		auditor = &mockAuditor{}
		bus := events.NewEventBus(logger)
		service = report.NewService(repo, resolver, ledger, auditor, bus, logger)
	})

	createDraft := func() *report.Report {
		rep, err := service.CreateReport(author, report.CreateReportDTO{
			ReportDate: reportDate,
			Title:      "Daily report",
			Content:    "worked on the portal",
		})
		Expect(err).NotTo(HaveOccurred())
		return rep
	}

	submit := func(rep *report.Report, projectIDs ...int64) *report.UpdateResult {
		repo.projectIDs[rep.ID] = projectIDs
		status := report.StatusSubmitted
		result, err := service.UpdateReport(author, rep.ID, report.UpdateReportDTO{
			ExpectedVersion: rep.Version,
			Status:          &status,
		})
		Expect(err).NotTo(HaveOccurred())
		return result
	}

	Describe("CreateReport", func() {
		It("creates a draft at version 1 and records the audit entry", func() {
			rep := createDraft()
			Expect(rep.Status).To(Equal(report.StatusDraft))
			Expect(rep.Version).To(Equal(int64(1)))
			Expect(auditor.actions()).To(ContainElement("report.create"))
		})

		It("rejects a second active report for the same author and date", func() {
			createDraft()
			_, err := service.CreateReport(author, report.CreateReportDTO{
				ReportDate: reportDate,
				Title:      "Another one",
				Content:    "duplicate attempt",
			})
			Expect(err).To(MatchError(internal.ErrDuplicateReport))
		})

		It("allows the same date again once the first report is deleted", func() {
			rep := createDraft()
			Expect(service.DeleteReport(author, rep.ID)).To(Succeed())

			_, err := service.CreateReport(author, report.CreateReportDTO{
				ReportDate: reportDate,
				Title:      "Replacement",
				Content:    "rewritten after delete",
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects a future report date", func() {
			_, err := service.CreateReport(author, report.CreateReportDTO{
				ReportDate: time.Now().AddDate(0, 0, 2),
				Title:      "From the future",
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})

	Describe("UpdateReport", func() {
		It("bumps the version on a successful patch", func() {
			rep := createDraft()
			title := "Revised title"
			result, err := service.UpdateReport(author, rep.ID, report.UpdateReportDTO{
				ExpectedVersion: 1,
				Title:           &title,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Version).To(Equal(int64(2)))
		})

		It("rejects a stale expected version and reports the stored one", func() {
			rep := createDraft()
			title := "first writer"
			_, err := service.UpdateReport(author, rep.ID, report.UpdateReportDTO{
				ExpectedVersion: 1,
				Title:           &title,
			})
			Expect(err).NotTo(HaveOccurred())

			stale := "second writer"
			_, err = service.UpdateReport(author, rep.ID, report.UpdateReportDTO{
				ExpectedVersion: 1,
				Title:           &stale,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
			details, ok := appErr.Details.(internal.ConflictDetails)
			Expect(ok).To(BeTrue())
			Expect(details.StoredVersion).To(Equal(int64(2)))
		})

		It("rejects an empty patch", func() {
			rep := createDraft()
			_, err := service.UpdateReport(author, rep.ID, report.UpdateReportDTO{ExpectedVersion: rep.Version})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("refuses edits once the report is submitted", func() {
			rep := createDraft()
			result := submit(rep, 1)

			title := "too late"
			_, err := service.UpdateReport(author, rep.ID, report.UpdateReportDTO{
				ExpectedVersion: result.Version,
				Title:           &title,
			})
			Expect(err).To(MatchError(internal.ErrCannotModifyReport))
		})

		It("rejects another member editing someone else's draft", func() {
			rep := createDraft()
			other := &auth.Actor{ID: 99, OrgID: 1, Role: auth.RoleMember}
			title := "not yours"
			_, err := service.UpdateReport(other, rep.ID, report.UpdateReportDTO{
				ExpectedVersion: rep.Version,
				Title:           &title,
			})
			Expect(err).To(MatchError(internal.ErrInsufficientRole))
		})

		It("hides the report entirely from another org", func() {
			rep := createDraft()
			title := "cross org"
			_, err := service.UpdateReport(outsider, rep.ID, report.UpdateReportDTO{
				ExpectedVersion: rep.Version,
				Title:           &title,
			})
			Expect(err).To(MatchError(internal.ErrReportNotFound))
		})
	})

	Describe("submission", func() {
		It("opens one pending approval per resolved approver", func() {
			rep := createDraft()
			result := submit(rep, 2)

			Expect(result.Status).To(Equal(report.StatusSubmitted))
			Expect(result.Version).To(Equal(int64(2)))

			pending, err := ledger.CountPending(nil, rep.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(Equal(int64(2)))
			Expect(auditor.actions()).To(ContainElement("report.submit"))
		})

		It("adds a system comment on submission", func() {
			rep := createDraft()
			submit(rep, 1)

			comments, err := repo.ListComments(1, rep.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(comments).To(HaveLen(1))
			Expect(comments[0].CommentType).To(Equal(report.CommentTypeSystem))
			Expect(comments[0].AuthorID).To(BeNil())
		})

		It("deduplicates approvers shared across projects", func() {
			rep := createDraft()
			submit(rep, 1, 2)

			approvals, err := ledger.ListByReport(rep.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(approvals).To(HaveLen(2))
		})

		It("allows submission with no configured approvers", func() {
			rep := createDraft()
			result := submit(rep)

			Expect(result.Status).To(Equal(report.StatusSubmitted))
			pending, _ := ledger.CountPending(nil, rep.ID)
			Expect(pending).To(BeZero())
		})
	})

	Describe("ApproveReport", func() {
		It("keeps the report submitted until every approver has approved", func() {
			rep := createDraft()
			submit(rep, 2)

			result, err := service.ApproveReport(manager, rep.ID, report.ApproveReportDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(report.StatusSubmitted))

			result, err = service.ApproveReport(secondManager, rep.ID, report.ApproveReportDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(report.StatusApproved))
			Expect(result.Version).To(Equal(int64(3)))
		})

		It("forbids authors approving their own report", func() {
			managerAuthor := &auth.Actor{ID: 20, OrgID: 1, Role: auth.RoleManager}
			rep, err := service.CreateReport(managerAuthor, report.CreateReportDTO{
				ReportDate: reportDate,
				Title:      "Self-serve",
				Content:    "my own report",
			})
			Expect(err).NotTo(HaveOccurred())

			repo.projectIDs[rep.ID] = []int64{1}
			status := report.StatusSubmitted
			_, err = service.UpdateReport(managerAuthor, rep.ID, report.UpdateReportDTO{
				ExpectedVersion: 1,
				Status:          &status,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ApproveReport(managerAuthor, rep.ID, report.ApproveReportDTO{})
			Expect(err).To(MatchError(internal.ErrSelfApproval))
		})

		It("rejects a manager who is not a resolved approver", func() {
			rep := createDraft()
			submit(rep, 1) // only manager 20

			_, err := service.ApproveReport(secondManager, rep.ID, report.ApproveReportDTO{})
			Expect(err).To(MatchError(internal.ErrApprovalNotFound))
		})

		It("rejects approval of a draft", func() {
			rep := createDraft()
			_, err := service.ApproveReport(manager, rep.ID, report.ApproveReportDTO{})
			Expect(err).To(MatchError(internal.ErrInvalidReportStatus))
		})

		It("rejects a member trying to approve", func() {
			rep := createDraft()
			submit(rep, 1)

			member := &auth.Actor{ID: 50, OrgID: 1, Role: auth.RoleMember}
			_, err := service.ApproveReport(member, rep.ID, report.ApproveReportDTO{})
			Expect(err).To(MatchError(internal.ErrInsufficientRole))
		})

		It("lets a manager finalize a report that has no approval rows", func() {
			rep := createDraft()
			submit(rep) // no projects, no resolved approvers

			result, err := service.ApproveReport(manager, rep.ID, report.ApproveReportDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(report.StatusApproved))
			Expect(result.Version).To(Equal(int64(3)))
		})

		It("refuses a second decision from the same manager", func() {
			rep := createDraft()
			submit(rep, 2)

			_, err := service.ApproveReport(manager, rep.ID, report.ApproveReportDTO{})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ApproveReport(manager, rep.ID, report.ApproveReportDTO{})
			Expect(err).To(MatchError(internal.ErrApprovalNotFound))
		})
	})

	Describe("RejectReport", func() {
		It("requires a reason", func() {
			rep := createDraft()
			submit(rep, 1)

			_, err := service.RejectReport(manager, rep.ID, report.RejectReportDTO{})
			Expect(err).To(MatchError(internal.ErrReasonRequired))
		})

		It("finalizes rejected on any single rejection", func() {
			rep := createDraft()
			submit(rep, 2)

			result, err := service.RejectReport(manager, rep.ID, report.RejectReportDTO{Reason: "missing detail"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(report.StatusRejected))
			Expect(result.Version).To(Equal(int64(3)))

			stored, err := repo.GetByID(nil, 1, rep.ID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.RejectionReason).NotTo(BeNil())
			Expect(*stored.RejectionReason).To(Equal("missing detail"))
		})

		It("lets the author edit and resubmit after rejection", func() {
			rep := createDraft()
			submit(rep, 1)

			result, err := service.RejectReport(manager, rep.ID, report.RejectReportDTO{Reason: "redo"})
			Expect(err).NotTo(HaveOccurred())

			title := "Revised after rejection"
			status := report.StatusSubmitted
			resubmitted, err := service.UpdateReport(author, rep.ID, report.UpdateReportDTO{
				ExpectedVersion: result.Version,
				Title:           &title,
				Status:          &status,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resubmitted.Status).To(Equal(report.StatusSubmitted))
			Expect(resubmitted.Version).To(Equal(result.Version + 1))
		})

		It("lets a manager reject a report that has no approval rows", func() {
			rep := createDraft()
			submit(rep) // no projects, no resolved approvers

			result, err := service.RejectReport(manager, rep.ID, report.RejectReportDTO{Reason: "no approver configured"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(report.StatusRejected))
		})

		It("forbids self-rejection", func() {
			managerAuthor := &auth.Actor{ID: 20, OrgID: 1, Role: auth.RoleManager}
			rep, err := service.CreateReport(managerAuthor, report.CreateReportDTO{
				ReportDate: reportDate,
				Title:      "Mine",
				Content:    "my own report",
			})
			Expect(err).NotTo(HaveOccurred())

			status := report.StatusSubmitted
			_, err = service.UpdateReport(managerAuthor, rep.ID, report.UpdateReportDTO{
				ExpectedVersion: 1,
				Status:          &status,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.RejectReport(managerAuthor, rep.ID, report.RejectReportDTO{Reason: "no"})
			Expect(err).To(MatchError(internal.ErrSelfApproval))
		})
	})

	Describe("resubmission", func() {
		It("starts a fresh approval round when the approver set shrinks", func() {
			rep := createDraft()
			submit(rep, 2) // two approvers

			result, err := service.RejectReport(manager, rep.ID, report.RejectReportDTO{Reason: "redo"})
			Expect(err).NotTo(HaveOccurred())

			// the report's work items drop to a single-approver project
			// before the author tries again
			repo.projectIDs[rep.ID] = []int64{1}
			status := report.StatusSubmitted
			_, err = service.UpdateReport(author, rep.ID, report.UpdateReportDTO{
				ExpectedVersion: result.Version,
				Status:          &status,
			})
			Expect(err).NotTo(HaveOccurred())

			approvals, err := ledger.ListByReport(rep.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(approvals).To(HaveLen(1))

			final, err := service.ApproveReport(manager, rep.ID, report.ApproveReportDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(final.Status).To(Equal(report.StatusApproved))

			pending, err := ledger.CountPending(nil, rep.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(BeZero())
		})

		It("leaves exactly one row per approver after a resubmit", func() {
			rep := createDraft()
			submit(rep, 1)

			result, err := service.RejectReport(manager, rep.ID, report.RejectReportDTO{Reason: "redo"})
			Expect(err).NotTo(HaveOccurred())

			status := report.StatusSubmitted
			_, err = service.UpdateReport(author, rep.ID, report.UpdateReportDTO{
				ExpectedVersion: result.Version,
				Status:          &status,
			})
			Expect(err).NotTo(HaveOccurred())

			approvals, err := ledger.ListByReport(rep.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(approvals).To(HaveLen(1))
			Expect(approvals[0].Status).To(Equal(approval.StatusPending))
		})

		It("clears the rejection bookkeeping on resubmit", func() {
			rep := createDraft()
			submit(rep, 1)

			result, err := service.RejectReport(manager, rep.ID, report.RejectReportDTO{Reason: "missing detail"})
			Expect(err).NotTo(HaveOccurred())

			status := report.StatusSubmitted
			_, err = service.UpdateReport(author, rep.ID, report.UpdateReportDTO{
				ExpectedVersion: result.Version,
				Status:          &status,
			})
			Expect(err).NotTo(HaveOccurred())

			stored, err := repo.GetByID(nil, 1, rep.ID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.RejectionReason).To(BeNil())
			Expect(stored.RejectedAt).To(BeNil())
		})
	})

	Describe("soft delete and restore", func() {
		It("soft-deletes a draft and hides it from reads", func() {
			rep := createDraft()
			Expect(service.DeleteReport(author, rep.ID)).To(Succeed())

			_, err := service.GetReport(author, rep.ID)
			Expect(err).To(MatchError(internal.ErrReportNotFound))
		})

		It("refuses to delete a submitted report", func() {
			rep := createDraft()
			submit(rep, 1)

			err := service.DeleteReport(author, rep.ID)
			Expect(err).To(MatchError(internal.ErrInvalidReportStatus))
		})

		It("restores a deleted report with a bumped version", func() {
			rep := createDraft()
			Expect(service.DeleteReport(author, rep.ID)).To(Succeed())
			Expect(service.RestoreReport(author, rep.ID)).To(Succeed())

			restored, err := service.GetReport(author, rep.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(restored.IsDeleted).To(BeFalse())
			Expect(restored.Version).To(Equal(int64(3)))
		})

		It("refuses to restore when the date slot is taken again", func() {
			rep := createDraft()
			Expect(service.DeleteReport(author, rep.ID)).To(Succeed())
			createDraft()

			err := service.RestoreReport(author, rep.ID)
			Expect(err).To(MatchError(internal.ErrDuplicateReport))
		})
	})

	Describe("comments", func() {
		It("appends a user comment without touching the report version", func() {
			rep := createDraft()
			comment, err := service.AddComment(manager, rep.ID, report.AddCommentDTO{Content: "looks good"})
			Expect(err).NotTo(HaveOccurred())
			Expect(comment.CommentType).To(Equal(report.CommentTypeUser))
			Expect(comment.AuthorID).NotTo(BeNil())

			stored, err := service.GetReport(author, rep.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Version).To(Equal(int64(1)))
		})

		It("hides comments from another org", func() {
			rep := createDraft()
			_, err := service.AddComment(outsider, rep.ID, report.AddCommentDTO{Content: "hello"})
			Expect(err).To(MatchError(internal.ErrReportNotFound))
		})
	})

	Describe("full lifecycle", func() {
		It("keeps the version strictly increasing across transitions", func() {
			rep := createDraft()
			Expect(rep.Version).To(Equal(int64(1)))

			submitted := submit(rep, 1)
			Expect(submitted.Version).To(Equal(int64(2)))

			approved, err := service.ApproveReport(manager, rep.ID, report.ApproveReportDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(approved.Version).To(Equal(int64(3)))
			Expect(approved.Status).To(Equal(report.StatusApproved))

			// a client still holding the submit-time version must conflict
			title := "stale client"
			_, err = service.UpdateReport(author, rep.ID, report.UpdateReportDTO{
				ExpectedVersion: 2,
				Title:           &title,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
		})

		It("writes one audit entry per mutating call", func() {
			rep := createDraft()
			submit(rep, 1)
			_, err := service.ApproveReport(manager, rep.ID, report.ApproveReportDTO{})
			Expect(err).NotTo(HaveOccurred())

			Expect(auditor.actions()).To(Equal([]string{
				"report.create",
				"report.submit",
				"report.approve",
			}))
		})
	})
})
