package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	internal "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/report"
)

func TestReportRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ReportRepository Suite")
}

// SQLite variants of the row types; the postgres models carry jsonb column
// types the sqlite driver cannot migrate.
type SQLiteReport struct {
	ID              int64      `gorm:"primaryKey"`
	OrgID           int64      `gorm:"column:org_id;not null"`
	AuthorID        int64      `gorm:"column:author_id;not null"`
	ReportDate      time.Time  `gorm:"column:report_date;not null"`
	Title           string     `gorm:"column:title;not null"`
	Content         string     `gorm:"column:content"`
	Status          string     `gorm:"column:status;not null;default:draft"`
	WorkingHours    *float64   `gorm:"column:working_hours"`
	Metadata        string     `gorm:"column:metadata"`
	RejectionReason *string    `gorm:"column:rejection_reason"`
	RejectedAt      *time.Time `gorm:"column:rejected_at"`
	SubmittedAt     *time.Time `gorm:"column:submitted_at"`
	ApprovedAt      *time.Time `gorm:"column:approved_at"`
	IsDeleted       bool       `gorm:"column:is_deleted;not null;default:false"`
	Version         int64      `gorm:"column:version;not null;default:1"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (SQLiteReport) TableName() string {
	return "reports"
}

type SQLiteComment struct {
	ID          int64     `gorm:"primaryKey"`
	OrgID       int64     `gorm:"column:org_id;not null"`
	ReportID    int64     `gorm:"column:report_id;not null"`
	AuthorID    *int64    `gorm:"column:author_id"`
	CommentType string    `gorm:"column:comment_type;not null"`
	Content     string    `gorm:"column:content;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (SQLiteComment) TableName() string {
	return "comments"
}

type SQLiteWorkItem struct {
	ID              int64  `gorm:"primaryKey"`
	OrgID           int64  `gorm:"column:org_id;not null"`
	ReportID        int64  `gorm:"column:report_id;not null"`
	ProjectID       int64  `gorm:"column:project_id;not null"`
	WorkCategoryID  int64  `gorm:"column:work_category_id;not null"`
	Description     string `gorm:"column:description"`
	DurationMinutes int    `gorm:"column:duration_minutes"`
	Version         int64  `gorm:"column:version;not null;default:1"`
}

func (SQLiteWorkItem) TableName() string {
	return "work_items"
}

type SQLiteApproval struct {
	ID        int64  `gorm:"primaryKey"`
	OrgID     int64  `gorm:"column:org_id;not null"`
	ReportID  int64  `gorm:"column:report_id;not null"`
	ManagerID int64  `gorm:"column:manager_id;not null"`
	Status    string `gorm:"column:status;not null;default:pending"`
}

func (SQLiteApproval) TableName() string {
	return "approvals"
}

var _ = Describe("ReportRepository", func() {
	var (
		db   *gorm.DB
		repo *ReportRepository
	)

	reportDate := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	newDraft := func(orgID, authorID int64) *report.Report {
		rep := &report.Report{
			OrgID:      orgID,
			AuthorID:   authorID,
			ReportDate: reportDate,
			Title:      "Daily report",
			Content:    "worked on the portal",
			Status:     report.StatusDraft,
			Version:    1,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}
		err := repo.Create(nil, rep)
		Expect(err).NotTo(HaveOccurred())
		return rep
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteReport{}, &SQLiteComment{}, &SQLiteWorkItem{}, &SQLiteApproval{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewReportRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("Create and GetByID", func() {
		It("stores a report and reads it back in the same org", func() {
			rep := newDraft(1, 10)
			Expect(rep.ID).To(BeNumerically(">", 0))

			retrieved, err := repo.GetByID(nil, 1, rep.ID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved.Title).To(Equal("Daily report"))
			Expect(retrieved.Version).To(Equal(int64(1)))
		})

		It("does not expose a report to another org", func() {
			rep := newDraft(1, 10)

			_, err := repo.GetByID(nil, 2, rep.ID, false)
			Expect(err).To(Equal(internal.ErrReportNotFound))
		})

		It("hides soft-deleted reports unless asked", func() {
			rep := newDraft(1, 10)

			ok, err := repo.UpdateWithVersion(nil, rep.ID, 1, map[string]interface{}{
				"is_deleted": true,
				"version":    int64(2),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			_, err = repo.GetByID(nil, 1, rep.ID, false)
			Expect(err).To(Equal(internal.ErrReportNotFound))

			retrieved, err := repo.GetByID(nil, 1, rep.ID, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved.IsDeleted).To(BeTrue())
		})
	})

	Describe("FindActiveByAuthorAndDate", func() {
		It("finds the active report for the date", func() {
			rep := newDraft(1, 10)

			found, err := repo.FindActiveByAuthorAndDate(nil, 10, reportDate)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).NotTo(BeNil())
			Expect(found.ID).To(Equal(rep.ID))
		})

		It("returns nil when the slot is free", func() {
			found, err := repo.FindActiveByAuthorAndDate(nil, 10, reportDate)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})

		It("ignores soft-deleted reports", func() {
			rep := newDraft(1, 10)
			_, err := repo.UpdateWithVersion(nil, rep.ID, 1, map[string]interface{}{
				"is_deleted": true,
				"version":    int64(2),
			})
			Expect(err).NotTo(HaveOccurred())

			found, err := repo.FindActiveByAuthorAndDate(nil, 10, reportDate)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})
	})

	Describe("UpdateWithVersion", func() {
		It("applies the update when the version matches", func() {
			rep := newDraft(1, 10)

			ok, err := repo.UpdateWithVersion(nil, rep.ID, 1, map[string]interface{}{
				"title":   "Revised",
				"version": int64(2),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			retrieved, err := repo.GetByID(nil, 1, rep.ID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved.Title).To(Equal("Revised"))
			Expect(retrieved.Version).To(Equal(int64(2)))
		})

		It("is a no-op against a stale version", func() {
			rep := newDraft(1, 10)

			ok, err := repo.UpdateWithVersion(nil, rep.ID, 1, map[string]interface{}{
				"title":   "first writer",
				"version": int64(2),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, err = repo.UpdateWithVersion(nil, rep.ID, 1, map[string]interface{}{
				"title":   "second writer",
				"version": int64(2),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			retrieved, err := repo.GetByID(nil, 1, rep.ID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved.Title).To(Equal("first writer"))
		})
	})

	Describe("TransitionStatus", func() {
		It("flips the status exactly once", func() {
			rep := newDraft(1, 10)
			_, err := repo.UpdateWithVersion(nil, rep.ID, 1, map[string]interface{}{
				"status":  string(report.StatusSubmitted),
				"version": int64(2),
			})
			Expect(err).NotTo(HaveOccurred())

			ok, err := repo.TransitionStatus(nil, rep.ID, report.StatusSubmitted, map[string]interface{}{
				"status":  string(report.StatusApproved),
				"version": gorm.Expr("version + 1"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			// the second finalizer loses the race
			ok, err = repo.TransitionStatus(nil, rep.ID, report.StatusSubmitted, map[string]interface{}{
				"status":  string(report.StatusRejected),
				"version": gorm.Expr("version + 1"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			retrieved, err := repo.GetByID(nil, 1, rep.ID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved.Status).To(Equal(report.StatusApproved))
			Expect(retrieved.Version).To(Equal(int64(3)))
		})
	})

	Describe("DistinctProjectIDs", func() {
		It("deduplicates projects across work items", func() {
			rep := newDraft(1, 10)

			for _, projectID := range []int64{1, 1, 2} {
				err := db.Create(&SQLiteWorkItem{
					OrgID:           1,
					ReportID:        rep.ID,
					ProjectID:       projectID,
					WorkCategoryID:  1,
					Description:     "dev work",
					DurationMinutes: 60,
					Version:         1,
				}).Error
				Expect(err).NotTo(HaveOccurred())
			}

			projectIDs, err := repo.DistinctProjectIDs(nil, rep.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(projectIDs).To(ConsistOf(int64(1), int64(2)))
		})
	})

	Describe("ListPendingForManager", func() {
		It("only returns reports still waiting on this manager", func() {
			now := time.Now()
			waiting := newDraft(1, 10)
			_, err := repo.UpdateWithVersion(nil, waiting.ID, 1, map[string]interface{}{
				"status":       string(report.StatusSubmitted),
				"submitted_at": now,
				"version":      int64(2),
			})
			Expect(err).NotTo(HaveOccurred())

			decided := &report.Report{
				OrgID: 1, AuthorID: 11, ReportDate: reportDate,
				Title: "Other report", Status: report.StatusDraft, Version: 1,
			}
			Expect(repo.Create(nil, decided)).To(Succeed())
			_, err = repo.UpdateWithVersion(nil, decided.ID, 1, map[string]interface{}{
				"status":       string(report.StatusSubmitted),
				"submitted_at": now,
				"version":      int64(2),
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(db.Create(&SQLiteApproval{OrgID: 1, ReportID: waiting.ID, ManagerID: 20, Status: "pending"}).Error).To(Succeed())
			Expect(db.Create(&SQLiteApproval{OrgID: 1, ReportID: decided.ID, ManagerID: 20, Status: "approved"}).Error).To(Succeed())

			pending, err := repo.ListPendingForManager(1, 20, 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(HaveLen(1))
			Expect(pending[0].ID).To(Equal(waiting.ID))
		})
	})

	Describe("comments", func() {
		It("stores and lists comments oldest first", func() {
			rep := newDraft(1, 10)
			authorID := int64(10)

			first := &report.Comment{
				ReportID:    rep.ID,
				AuthorID:    &authorID,
				CommentType: report.CommentTypeUser,
				Content:     "first",
				CreatedAt:   time.Now().Add(-time.Minute),
			}
			second := &report.Comment{
				ReportID:    rep.ID,
				CommentType: report.CommentTypeSystem,
				Content:     "Report submitted for approval.",
				CreatedAt:   time.Now(),
			}
			Expect(repo.AddComment(nil, 1, first)).To(Succeed())
			Expect(repo.AddComment(nil, 1, second)).To(Succeed())

			comments, err := repo.ListComments(1, rep.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(comments).To(HaveLen(2))
			Expect(comments[0].Content).To(Equal("first"))
			Expect(comments[1].CommentType).To(Equal(report.CommentTypeSystem))
			Expect(comments[1].AuthorID).To(BeNil())
		})
	})
})
