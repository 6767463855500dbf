// Package errors provides standardized error handling for the template sync engine.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeOrganizationNotFound ErrorCode = "ORGANIZATION_NOT_FOUND"
	ErrCodeVersionNotFound      ErrorCode = "VERSION_NOT_FOUND"
	ErrCodeTemplateNotFound     ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeDraftNotFound        ErrorCode = "DRAFT_NOT_FOUND"

	ErrCodeValidationFailed      ErrorCode = "VALIDATION_FAILED"
	ErrCodeReorderOutOfRange     ErrorCode = "REORDER_OUT_OF_RANGE"
	ErrCodeQuestionConfigInvalid ErrorCode = "QUESTION_CONFIG_INVALID"

	ErrCodeDuplicateSurveyCode ErrorCode = "DUPLICATE_SURVEY_CODE"
	ErrCodeDuplicateVersion    ErrorCode = "DUPLICATE_VERSION"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeDraftStoreFailed         ErrorCode = "DRAFT_STORE_FAILED"
	ErrCodeCatalogIndexFailed       ErrorCode = "CATALOG_INDEX_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewOrganizationNotFoundError creates a non-retryable lookup error.
func NewOrganizationNotFoundError(orgID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOrganizationNotFound,
		Message:   "Organization not found",
		Details:   fmt.Sprintf("organizationId: %s", orgID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewVersionNotFoundError creates a non-retryable lookup error.
func NewVersionNotFoundError(versionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeVersionNotFound,
		Message:   "Template version not found",
		Details:   fmt.Sprintf("versionId: %s", versionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateNotFoundError creates a non-retryable lookup error.
func NewTemplateNotFoundError(templateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   "Template not found",
		Details:   fmt.Sprintf("templateId: %s", templateID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDraftNotFoundError creates a non-retryable draft lookup error.
func NewDraftNotFoundError(templateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDraftNotFound,
		Message:   "No draft saved for template",
		Details:   fmt.Sprintf("templateId: %s", templateID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError creates a non-retryable validation error.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReorderOutOfRangeError creates a non-retryable reorder index error.
func NewReorderOutOfRangeError(from, to, length int) *StandardError {
	return &StandardError{
		Code:      ErrCodeReorderOutOfRange,
		Message:   "Reorder index out of range",
		Details:   fmt.Sprintf("fromIndex: %d, toIndex: %d, questions: %d", from, to, length),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewQuestionConfigInvalidError creates a non-retryable question config error.
func NewQuestionConfigInvalidError(questionID, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQuestionConfigInvalid,
		Message:   "Question configuration failed schema validation",
		Details:   fmt.Sprintf("questionId: %s, %s", questionID, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateSurveyCodeError flags an ambiguous survey code match in the target version.
func NewDuplicateSurveyCodeError(versionID, surveyCode string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateSurveyCode,
		Message:   "More than one template carries the same survey code in the target version",
		Details:   fmt.Sprintf("versionId: %s, surveyCode: %s", versionID, surveyCode),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateVersionError flags an ambiguous version name match in the target organization.
func NewDuplicateVersionError(orgID, name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateVersion,
		Message:   "More than one version carries the same name in the target organization",
		Details:   fmt.Sprintf("organizationId: %s, name: %s", orgID, name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDraftStoreFailedError creates a retryable draft store error.
func NewDraftStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDraftStoreFailed,
		Message:   "Draft store operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogIndexFailedError creates a retryable catalog indexing error.
func NewCatalogIndexFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogIndexFailed,
		Message:   "Catalog index update failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// CodeOf extracts the ErrorCode from an error chain, or "" when none is present.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// IsNotFound reports whether the error is one of the lookup failures.
func IsNotFound(err error) bool {
	switch CodeOf(err) {
	case ErrCodeOrganizationNotFound, ErrCodeVersionNotFound, ErrCodeTemplateNotFound, ErrCodeDraftNotFound:
		return true
	}
	return false
}

// IsValidation reports whether the error is a pre-write rejection.
func IsValidation(err error) bool {
	switch CodeOf(err) {
	case ErrCodeValidationFailed, ErrCodeReorderOutOfRange, ErrCodeQuestionConfigInvalid:
		return true
	}
	return false
}

// IsConflict reports whether the error is a data-integrity violation.
func IsConflict(err error) bool {
	switch CodeOf(err) {
	case ErrCodeDuplicateSurveyCode, ErrCodeDuplicateVersion:
		return true
	}
	return false
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeQueryTimeout,
		ErrCodeDraftStoreFailed,
		ErrCodeCatalogIndexFailed:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "NOT_FOUND"
	case strings.Contains(codeStr, "DUPLICATE"):
		return "CONFLICT"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "OUT_OF_RANGE"):
		return "VALIDATION"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "DRAFT"):
		return "DRAFT"
	case strings.Contains(codeStr, "CATALOG"):
		return "CATALOG"
	default:
		return "OTHER"
	}
}
