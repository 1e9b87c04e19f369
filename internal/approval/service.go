package approval

import (
	"log/slog"

	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/auth"
)

// Service resolves approvers and manages flow rules. Resolution is a pure
// lookup with no side effects.
type Service struct {
	rules  RuleRepositoryAPI
	logger *slog.Logger
}

func NewService(rules RuleRepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		rules:  rules,
		logger: logger,
	}
}

// FindApprovers determines who must approve the applicant's reports for the
// project. A specific (project, applicant) rule wins outright; otherwise all
// generic rules for the project apply; otherwise nobody is configured and
// the empty result is returned for the caller to surface operationally.
func (s *Service) FindApprovers(orgID, projectID, applicantID int64) ([]*Approver, error) {
	specific, err := s.rules.GetSpecificRule(orgID, projectID, applicantID)
	if err != nil {
		return nil, err
	}
	if specific != nil {
		return s.rules.GetApprovers(orgID, []int64{specific.ApproverID})
	}

	generic, err := s.rules.GetGenericRules(orgID, projectID)
	if err != nil {
		return nil, err
	}
	if len(generic) == 0 {
		s.logger.Warn("no approval flow configured for project",
			"org_id", orgID,
			"project_id", projectID,
			"applicant_id", applicantID)
		return []*Approver{}, nil
	}

	seen := make(map[int64]bool, len(generic))
	approverIDs := make([]int64, 0, len(generic))
	for _, rule := range generic {
		if !seen[rule.ApproverID] {
			seen[rule.ApproverID] = true
			approverIDs = append(approverIDs, rule.ApproverID)
		}
	}
	return s.rules.GetApprovers(orgID, approverIDs)
}

func (s *Service) ListRules(actor *auth.Actor) ([]*FlowRule, error) {
	if err := auth.RequireRole(actor, auth.RoleManager, actor.OrgID); err != nil {
		return nil, err
	}
	return s.rules.ListRules(actor.OrgID)
}

func (s *Service) CreateRule(actor *auth.Actor, dto CreateFlowRuleDTO) (*FlowRule, error) {
	if err := auth.RequireRole(actor, auth.RoleManager, actor.OrgID); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	approvers, err := s.rules.GetApprovers(actor.OrgID, []int64{dto.ApproverID})
	if err != nil {
		return nil, err
	}
	if len(approvers) == 0 {
		return nil, internal.ErrProfileNotFound
	}

	rule := &FlowRule{
		OrgID:         actor.OrgID,
		ProjectID:     dto.ProjectID,
		ApproverID:    dto.ApproverID,
		ApplicantID:   dto.ApplicantID,
		ApprovalLevel: dto.ApprovalLevel,
	}
	if rule.ApprovalLevel == 0 {
		rule.ApprovalLevel = 1
	}

	if err := s.rules.CreateRule(rule); err != nil {
		s.logger.Error("failed to create approval flow rule", "error", err, "org_id", actor.OrgID)
		return nil, err
	}

	s.logger.Info("approval flow rule created",
		"rule_id", rule.ID,
		"org_id", actor.OrgID,
		"project_id", rule.ProjectID,
		"approver_id", rule.ApproverID,
		"specific", rule.ApplicantID != nil)

	return rule, nil
}

func (s *Service) DeleteRule(actor *auth.Actor, ruleID int64) (*FlowRule, error) {
	if err := auth.RequireRole(actor, auth.RoleManager, actor.OrgID); err != nil {
		return nil, err
	}

	rule, err := s.rules.GetRule(actor.OrgID, ruleID)
	if err != nil {
		return nil, internal.ErrFlowRuleNotFound
	}

	if err := s.rules.DeleteRule(actor.OrgID, ruleID); err != nil {
		s.logger.Error("failed to delete approval flow rule", "error", err, "rule_id", ruleID)
		return nil, err
	}
	return rule, nil
}
