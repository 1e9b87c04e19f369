package approval

import "errors"

type CreateFlowRuleDTO struct {
	ProjectID     int64  `json:"project_id"`
	ApproverID    int64  `json:"approver_id"`
	ApplicantID   *int64 `json:"applicant_id,omitempty"`
	ApprovalLevel int    `json:"approval_level,omitempty"`
}

func (dto CreateFlowRuleDTO) Validate() error {
	if dto.ProjectID == 0 {
		return errors.New("project_id is required")
	}
	if dto.ApproverID == 0 {
		return errors.New("approver_id is required")
	}
	if dto.ApplicantID != nil && *dto.ApplicantID == 0 {
		return errors.New("applicant_id must be a valid profile id when set")
	}
	if dto.ApprovalLevel < 0 {
		return errors.New("approval_level cannot be negative")
	}
	return nil
}
