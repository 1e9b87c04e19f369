package postgres

import (
	"time"

	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/approval"
	approvalDatamodel "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/core/datamodel/approval"
	"gorm.io/gorm"
)

type RuleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) approval.RuleRepositoryAPI {
	return &RuleRepository{db: db}
}

func (r *RuleRepository) GetSpecificRule(orgID, projectID, applicantID int64) (*approval.FlowRule, error) {
	var row approvalDatamodel.ApprovalFlow
	err := r.db.Where("org_id = ? AND project_id = ? AND applicant_id = ?", orgID, projectID, applicantID).
		Order("approval_level ASC").
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return approval.RuleFromDataModel(&row), nil
}

func (r *RuleRepository) GetGenericRules(orgID, projectID int64) ([]*approval.FlowRule, error) {
	var rows []*approvalDatamodel.ApprovalFlow
	err := r.db.Where("org_id = ? AND project_id = ? AND applicant_id IS NULL", orgID, projectID).
		Order("approval_level ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	rules := make([]*approval.FlowRule, len(rows))
	for i, row := range rows {
		rules[i] = approval.RuleFromDataModel(row)
	}
	return rules, nil
}

func (r *RuleRepository) GetApprovers(orgID int64, approverIDs []int64) ([]*approval.Approver, error) {
	if len(approverIDs) == 0 {
		return []*approval.Approver{}, nil
	}

	rows, err := r.db.Raw(
		`SELECT id, display_name, email FROM user_profiles WHERE org_id = ? AND id IN ? AND is_active = true`,
		orgID, approverIDs).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var approvers []*approval.Approver
	for rows.Next() {
		var a approval.Approver
		if err := rows.Scan(&a.ID, &a.DisplayName, &a.Email); err != nil {
			return nil, err
		}
		approvers = append(approvers, &a)
	}
	if approvers == nil {
		approvers = []*approval.Approver{}
	}
	return approvers, rows.Err()
}

func (r *RuleRepository) ListRules(orgID int64) ([]*approval.FlowRule, error) {
	var rows []*approvalDatamodel.ApprovalFlow
	err := r.db.Where("org_id = ?", orgID).
		Order("project_id ASC, approval_level ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	rules := make([]*approval.FlowRule, len(rows))
	for i, row := range rows {
		rules[i] = approval.RuleFromDataModel(row)
	}
	return rules, nil
}

func (r *RuleRepository) CreateRule(rule *approval.FlowRule) error {
	row := &approvalDatamodel.ApprovalFlow{
		OrgID:         rule.OrgID,
		ProjectID:     rule.ProjectID,
		ApproverID:    rule.ApproverID,
		ApplicantID:   rule.ApplicantID,
		ApprovalLevel: rule.ApprovalLevel,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := r.db.Create(row).Error; err != nil {
		return err
	}
	rule.ID = row.ID
	rule.CreatedAt = row.CreatedAt
	return nil
}

func (r *RuleRepository) GetRule(orgID, ruleID int64) (*approval.FlowRule, error) {
	var row approvalDatamodel.ApprovalFlow
	err := r.db.Where("org_id = ? AND id = ?", orgID, ruleID).First(&row).Error
	if err != nil {
		return nil, err
	}
	return approval.RuleFromDataModel(&row), nil
}

func (r *RuleRepository) DeleteRule(orgID, ruleID int64) error {
	return r.db.Where("org_id = ? AND id = ?", orgID, ruleID).
		Delete(&approvalDatamodel.ApprovalFlow{}).Error
}

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) approval.LedgerAPI {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) CreatePending(tx *gorm.DB, orgID, reportID int64, approverIDs []int64) error {
	db := tx
	if db == nil {
		db = r.db
	}

	now := time.Now()
	for _, approverID := range approverIDs {
		row := &approvalDatamodel.Approval{
			OrgID:     orgID,
			ReportID:  reportID,
			ManagerID: approverID,
			Status:    approval.StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := db.Create(row).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteByReport removes the report's entire approval round so a
// resubmission starts from a clean ledger.
func (r *LedgerRepository) DeleteByReport(tx *gorm.DB, reportID int64) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Where("report_id = ?", reportID).
		Delete(&approvalDatamodel.Approval{}).Error
}

// Decide conditionally updates this manager's pending row. RowsAffected 0
// means the row was already decided or never existed.
func (r *LedgerRepository) Decide(tx *gorm.DB, reportID, managerID int64, status string, comment *string) (bool, error) {
	db := tx
	if db == nil {
		db = r.db
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}
	if status == approval.StatusApproved {
		updates["approved_at"] = now
	}
	if comment != nil {
		updates["comment"] = *comment
	}

	res := db.Model(&approvalDatamodel.Approval{}).
		Where("report_id = ? AND manager_id = ? AND status = ?", reportID, managerID, approval.StatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *LedgerRepository) CountPending(tx *gorm.DB, reportID int64) (int64, error) {
	db := tx
	if db == nil {
		db = r.db
	}

	var count int64
	err := db.Model(&approvalDatamodel.Approval{}).
		Where("report_id = ? AND status = ?", reportID, approval.StatusPending).
		Count(&count).Error
	return count, err
}

func (r *LedgerRepository) CountByReport(tx *gorm.DB, reportID int64) (int64, error) {
	db := tx
	if db == nil {
		db = r.db
	}

	var count int64
	err := db.Model(&approvalDatamodel.Approval{}).
		Where("report_id = ?", reportID).
		Count(&count).Error
	return count, err
}

func (r *LedgerRepository) GetByReportAndManager(tx *gorm.DB, reportID, managerID int64) (*approval.Approval, error) {
	db := tx
	if db == nil {
		db = r.db
	}

	var row approvalDatamodel.Approval
	err := db.Where("report_id = ? AND manager_id = ?", reportID, managerID).First(&row).Error
	if err != nil {
		return nil, err
	}
	return approval.FromDataModel(&row), nil
}

func (r *LedgerRepository) ListByReport(reportID int64) ([]*approval.Approval, error) {
	var rows []*approvalDatamodel.Approval
	err := r.db.Where("report_id = ?", reportID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	approvals := make([]*approval.Approval, len(rows))
	for i, row := range rows {
		approvals[i] = approval.FromDataModel(row)
	}
	return approvals, nil
}
