package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/approval"
)

func TestApprovalRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ApprovalRepository Suite")
}

type SQLiteApproval struct {
	ID         int64      `gorm:"primaryKey"`
	OrgID      int64      `gorm:"column:org_id;not null"`
	ReportID   int64      `gorm:"column:report_id;not null"`
	ManagerID  int64      `gorm:"column:manager_id;not null"`
	Status     string     `gorm:"column:status;not null;default:pending"`
	Comment    *string    `gorm:"column:comment"`
	ApprovedAt *time.Time `gorm:"column:approved_at"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
}

func (SQLiteApproval) TableName() string {
	return "approvals"
}

var _ = Describe("LedgerRepository", func() {
	var (
		db     *gorm.DB
		ledger approval.LedgerAPI
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.AutoMigrate(&SQLiteApproval{})).To(Succeed())

		ledger = NewLedgerRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("CreatePending", func() {
		It("opens one pending row per approver", func() {
			Expect(ledger.CreatePending(nil, 1, 100, []int64{20, 21})).To(Succeed())

			pending, err := ledger.CountPending(nil, 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(Equal(int64(2)))
		})

		It("does nothing for an empty approver set", func() {
			Expect(ledger.CreatePending(nil, 1, 100, nil)).To(Succeed())

			total, err := ledger.CountByReport(nil, 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(BeZero())
		})
	})

	Describe("Decide", func() {
		BeforeEach(func() {
			Expect(ledger.CreatePending(nil, 1, 100, []int64{20})).To(Succeed())
		})

		It("flips a pending row exactly once", func() {
			ok, err := ledger.Decide(nil, 100, 20, approval.StatusApproved, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, err = ledger.Decide(nil, 100, 20, approval.StatusRejected, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			row, err := ledger.GetByReportAndManager(nil, 100, 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(row.Status).To(Equal(approval.StatusApproved))
			Expect(row.ApprovedAt).NotTo(BeNil())
		})

		It("refuses a manager without a row", func() {
			ok, err := ledger.Decide(nil, 100, 99, approval.StatusApproved, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("stores the decision comment", func() {
			comment := "looks complete"
			ok, err := ledger.Decide(nil, 100, 20, approval.StatusApproved, &comment)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			row, err := ledger.GetByReportAndManager(nil, 100, 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(row.Comment).NotTo(BeNil())
			Expect(*row.Comment).To(Equal("looks complete"))
		})
	})

	Describe("DeleteByReport", func() {
		It("clears a rejected round so the next one can finish", func() {
			Expect(ledger.CreatePending(nil, 1, 100, []int64{20, 21})).To(Succeed())

			ok, err := ledger.Decide(nil, 100, 20, approval.StatusRejected, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			// round two with a smaller approver set
			Expect(ledger.DeleteByReport(nil, 100)).To(Succeed())
			Expect(ledger.CreatePending(nil, 1, 100, []int64{20})).To(Succeed())

			rows, err := ledger.ListByReport(100)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))

			ok, err = ledger.Decide(nil, 100, 20, approval.StatusApproved, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			pending, err := ledger.CountPending(nil, 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(BeZero())
		})

		It("leaves other reports' rows alone", func() {
			Expect(ledger.CreatePending(nil, 1, 100, []int64{20})).To(Succeed())
			Expect(ledger.CreatePending(nil, 1, 200, []int64{20})).To(Succeed())

			Expect(ledger.DeleteByReport(nil, 100)).To(Succeed())

			total, err := ledger.CountByReport(nil, 200)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
		})
	})
})
