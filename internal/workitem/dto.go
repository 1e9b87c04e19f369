package workitem

import (
	errors "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/core/common/validation"
)

type CreateWorkItemDTO struct {
	ProjectID       int64  `json:"project_id"`
	WorkCategoryID  int64  `json:"work_category_id"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (dto CreateWorkItemDTO) Validate() error {
	if dto.ProjectID <= 0 {
		return errors.NewValidationFieldError("project_id", "project_id is required", errors.ErrCodeValidationFailed)
	}
	if dto.WorkCategoryID <= 0 {
		return errors.NewValidationFieldError("work_category_id", "work_category_id is required", errors.ErrCodeValidationFailed)
	}
	if dto.Description == "" {
		return errors.NewValidationFieldError("description", "description is required", errors.ErrCodeValidationFailed)
	}
	if len(dto.Description) > 1000 {
		return errors.NewValidationFieldError("description", "description must not exceed 1000 characters", errors.ErrCodeValidationFailed)
	}
	return validation.ValidateDurationMinutes(dto.DurationMinutes)
}

// UpdateWorkItemDTO patches a single item under its own version counter.
type UpdateWorkItemDTO struct {
	ExpectedVersion int64   `json:"expected_version"`
	ProjectID       *int64  `json:"project_id,omitempty"`
	WorkCategoryID  *int64  `json:"work_category_id,omitempty"`
	Description     *string `json:"description,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
}

func (dto UpdateWorkItemDTO) Validate() error {
	if dto.ExpectedVersion <= 0 {
		return errors.NewValidationFieldError("expected_version", "expected_version is required", errors.ErrCodeValidationFailed)
	}
	if dto.Description != nil {
		if *dto.Description == "" {
			return errors.NewValidationFieldError("description", "description must not be empty", errors.ErrCodeValidationFailed)
		}
		if len(*dto.Description) > 1000 {
			return errors.NewValidationFieldError("description", "description must not exceed 1000 characters", errors.ErrCodeValidationFailed)
		}
	}
	if dto.DurationMinutes != nil {
		if err := validation.ValidateDurationMinutes(*dto.DurationMinutes); err != nil {
			return err
		}
	}
	return nil
}

func (dto UpdateWorkItemDTO) IsEmpty() bool {
	return dto.ProjectID == nil && dto.WorkCategoryID == nil &&
		dto.Description == nil && dto.DurationMinutes == nil
}
