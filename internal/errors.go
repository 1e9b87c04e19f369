package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidTitle     ErrorCode = "INVALID_TITLE"
	ErrCodeInvalidContent   ErrorCode = "INVALID_CONTENT"
	ErrCodeInvalidDuration  ErrorCode = "INVALID_DURATION"
	ErrCodeReasonRequired   ErrorCode = "REASON_REQUIRED"
	ErrCodeDuplicateReport  ErrorCode = "DUPLICATE_REPORT_DATE"

	ErrCodeReportNotFound      ErrorCode = "REPORT_NOT_FOUND"
	ErrCodeWorkItemNotFound    ErrorCode = "WORK_ITEM_NOT_FOUND"
	ErrCodeProjectNotFound     ErrorCode = "PROJECT_NOT_FOUND"
	ErrCodeCategoryNotFound    ErrorCode = "CATEGORY_NOT_FOUND"
	ErrCodeApprovalNotFound    ErrorCode = "APPROVAL_NOT_FOUND"
	ErrCodeFlowRuleNotFound    ErrorCode = "FLOW_RULE_NOT_FOUND"
	ErrCodeProfileNotFound     ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeInvalidReportStatus ErrorCode = "INVALID_REPORT_STATUS"
	ErrCodeCannotModifyReport  ErrorCode = "CANNOT_MODIFY_REPORT"
	ErrCodeSelfApproval        ErrorCode = "SELF_APPROVAL_FORBIDDEN"
	ErrCodeInsufficientRole    ErrorCode = "INSUFFICIENT_ROLE"
	ErrCodeVersionConflict     ErrorCode = "VERSION_CONFLICT"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeInvalidSignature   ErrorCode = "INVALID_SIGNATURE"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// ConflictDetails carries the version the store currently holds so the
// client can re-fetch and decide between discarding and force-saving.
type ConflictDetails struct {
	StoredVersion int64 `json:"stored_version"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewVersionConflictError reports an optimistic-lock failure. StoredVersion
// is what the database holds now, not what the caller sent.
func NewVersionConflictError(storedVersion int64) *AppError {
	return NewConflictError("report was modified by another writer", ErrCodeVersionConflict).
		WithDetails(ConflictDetails{StoredVersion: storedVersion})
}

var (
	ErrReportNotFound      = NewNotFoundError("Report not found", ErrCodeReportNotFound)
	ErrWorkItemNotFound    = NewNotFoundError("Work item not found", ErrCodeWorkItemNotFound)
	ErrProjectNotFound     = NewNotFoundError("Project not found", ErrCodeProjectNotFound)
	ErrCategoryNotFound    = NewNotFoundError("Work category not found", ErrCodeCategoryNotFound)
	ErrApprovalNotFound    = NewNotFoundError("Approval not found", ErrCodeApprovalNotFound)
	ErrFlowRuleNotFound    = NewNotFoundError("Approval flow rule not found", ErrCodeFlowRuleNotFound)
	ErrProfileNotFound     = NewNotFoundError("User profile not found", ErrCodeProfileNotFound)
	ErrInsufficientRole    = NewForbiddenError("insufficient role for this operation", ErrCodeInsufficientRole)
	ErrSelfApproval        = NewForbiddenError("authors cannot approve or reject their own reports", ErrCodeSelfApproval)
	ErrInvalidReportStatus = NewValidationError("invalid report status for this operation", ErrCodeInvalidReportStatus)
	ErrCannotModifyReport  = NewValidationError("Cannot modify report in current status", ErrCodeCannotModifyReport)
	ErrDuplicateReport     = NewValidationError("a report already exists for this date", ErrCodeDuplicateReport)
	ErrReasonRequired      = NewValidationFieldError("reason", "reason is required when rejecting a report", ErrCodeReasonRequired)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrInvalidSignature   = NewUnauthorizedError("Invalid webhook signature", ErrCodeInvalidSignature)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	if appErr, ok := IsAppError(err); ok {
		return appErr.Type == ErrorTypeNotFound
	}
	return false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
