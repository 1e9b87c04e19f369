package report

import (
	"time"

	errors "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/core/common/validation"
)

type CreateReportDTO struct {
	ReportDate   time.Time         `json:"report_date"`
	Title        string            `json:"title"`
	Content      string            `json:"content"`
	WorkingHours *float64          `json:"working_hours,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

func (dto CreateReportDTO) Validate() error {
	if err := validation.ValidateReportDate(dto.ReportDate); err != nil {
		return err
	}
	if err := validation.ValidateReportTitle(dto.Title); err != nil {
		return err
	}
	if err := validation.ValidateReportContent(dto.Content); err != nil {
		return err
	}
	if dto.WorkingHours != nil && (*dto.WorkingHours < 0 || *dto.WorkingHours > 24) {
		return errors.NewValidationFieldError("working_hours", "working_hours must be between 0 and 24", errors.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateReportDTO is a patch. Nil pointers leave the stored field untouched;
// Status is only accepted for the author-driven transitions (submit and
// rejected-back-to-draft / resubmit).
type UpdateReportDTO struct {
	ExpectedVersion int64              `json:"expected_version"`
	Title           *string            `json:"title,omitempty"`
	Content         *string            `json:"content,omitempty"`
	WorkingHours    *float64           `json:"working_hours,omitempty"`
	Metadata        *map[string]string `json:"metadata,omitempty"`
	Status          *Status            `json:"status,omitempty"`
}

func (dto UpdateReportDTO) Validate() error {
	if dto.ExpectedVersion <= 0 {
		return errors.NewValidationFieldError("expected_version", "expected_version is required", errors.ErrCodeValidationFailed)
	}
	if dto.Title != nil {
		if err := validation.ValidateReportTitle(*dto.Title); err != nil {
			return err
		}
	}
	if dto.Content != nil {
		if err := validation.ValidateReportContent(*dto.Content); err != nil {
			return err
		}
	}
	if dto.WorkingHours != nil && (*dto.WorkingHours < 0 || *dto.WorkingHours > 24) {
		return errors.NewValidationFieldError("working_hours", "working_hours must be between 0 and 24", errors.ErrCodeValidationFailed)
	}
	if dto.Status != nil {
		switch *dto.Status {
		case StatusSubmitted, StatusDraft:
		default:
			return errors.NewValidationFieldError("status", "status can only be set to submitted or draft", errors.ErrCodeInvalidReportStatus)
		}
	}
	return nil
}

func (dto UpdateReportDTO) IsEmpty() bool {
	return dto.Title == nil && dto.Content == nil && dto.WorkingHours == nil &&
		dto.Metadata == nil && dto.Status == nil
}

type ApproveReportDTO struct {
	Comment *string `json:"comment,omitempty"`
}

type RejectReportDTO struct {
	Reason string `json:"reason"`
}

func (dto RejectReportDTO) Validate() error {
	if dto.Reason == "" {
		return errors.ErrReasonRequired
	}
	return nil
}

type AddCommentDTO struct {
	Content string `json:"content"`
}

func (dto AddCommentDTO) Validate() error {
	if dto.Content == "" {
		return errors.NewValidationFieldError("content", "content is required", errors.ErrCodeValidationFailed)
	}
	if len(dto.Content) > 5000 {
		return errors.NewValidationFieldError("content", "content must not exceed 5000 characters", errors.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateResult is what mutating calls hand back so the client can chain the
// next optimistic write without re-reading.
type UpdateResult struct {
	Version int64  `json:"version"`
	Status  Status `json:"status"`
}
