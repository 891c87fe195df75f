// internal/common/errors/errors.go

// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Recommendation engine and catalog access error codes.
const (
	ErrCodeInvalidCriteria      ErrorCode = "INVALID_CRITERIA"
	ErrCodePartnerScoringError  ErrorCode = "PARTNER_SCORING_ERROR"
	ErrCodeCatalogTooLarge      ErrorCode = "CATALOG_TOO_LARGE"
	ErrCodeCatalogInvalid       ErrorCode = "CATALOG_INVALID"
	ErrCodeRecommendationFailed ErrorCode = "RECOMMENDATION_FAILED"

	ErrCodeCatalogFetchFailed  ErrorCode = "CATALOG_FETCH_FAILED"
	ErrCodeCatalogQueryTimeout ErrorCode = "CATALOG_QUERY_TIMEOUT"
	ErrCodeInvalidQueryType    ErrorCode = "INVALID_QUERY_TYPE"
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
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidCriteriaError creates a non-retryable criteria validation error.
// Raised when criteria is missing both sector hints or carries a malformed
// budget range; no recommendations are computed.
func NewInvalidCriteriaError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidCriteria,
		Message:   "Matching criteria failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPartnerScoringError creates a soft per-partner scoring error.
// The affected partner is skipped; ranking continues for the rest of the
// catalog, so this error is surfaced as a warning rather than thrown.
func NewPartnerScoringError(partnerID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePartnerScoringError,
		Message:   "Partner record could not be scored",
		Details:   fmt.Sprintf("partnerId: %s, error: %s", partnerID, err.Error()),
		Retryable: false,
		Metadata:  map[string]interface{}{"partnerId": partnerID},
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogTooLargeError creates a non-retryable catalog size limit error.
// The caller must page or pre-filter the catalog; results are never
// silently truncated.
func NewCatalogTooLargeError(size, limit int) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogTooLarge,
		Message:   "Partner catalog exceeds configured size limit",
		Details:   fmt.Sprintf("catalogSize: %d, limit: %d", size, limit),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogInvalidError creates a non-retryable catalog structure error.
func NewCatalogInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogInvalid,
		Message:   "Partner catalog payload is structurally invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecommendationFailedError creates a non-retryable recommendation error.
func NewRecommendationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecommendationFailed,
		Message:   "Recommendation computation failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogFetchFailedError creates a retryable catalog fetch error.
func NewCatalogFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogFetchFailed,
		Message:   "Database error while fetching partner catalog",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogQueryTimeoutError creates a retryable catalog query timeout error.
func NewCatalogQueryTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogQueryTimeout,
		Message:   "Partner catalog query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidQueryTypeError creates a non-retryable invalid query type error.
func NewInvalidQueryTypeError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidQueryType,
		Message:   "Unsupported catalog query type",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes. The
// process models use the internal codes directly, so the mapping is
// identity; kept as a table so a divergence stays a one-line change.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidCriteria:      "INVALID_CRITERIA",
	ErrCodePartnerScoringError:  "PARTNER_SCORING_ERROR",
	ErrCodeCatalogTooLarge:      "CATALOG_TOO_LARGE",
	ErrCodeCatalogInvalid:       "CATALOG_INVALID",
	ErrCodeRecommendationFailed: "RECOMMENDATION_FAILED",
	ErrCodeCatalogFetchFailed:   "CATALOG_FETCH_FAILED",
	ErrCodeCatalogQueryTimeout:  "CATALOG_QUERY_TIMEOUT",
	ErrCodeInvalidQueryType:     "INVALID_QUERY_TYPE",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCatalogFetchFailed:
		return 3 // Retryable technical errors

	case ErrCodeCatalogQueryTimeout:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// IsSoftError reports whether the code represents a condition that is
// surfaced as a warning alongside a well-formed result instead of
// failing the job.
func IsSoftError(code ErrorCode) bool {
	switch code {
	case ErrCodePartnerScoringError, ErrCodeCatalogTooLarge:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CRITERIA") || strings.Contains(codeStr, "SCORING") ||
		strings.Contains(codeStr, "RECOMMENDATION"):
		return "MATCHING"
	case strings.Contains(codeStr, "CATALOG") || strings.Contains(codeStr, "QUERY"):
		return "CATALOG"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
