package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	// Profile
	ErrCodeProfileNotFound ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeProfileInvalid  ErrorCode = "PROFILE_INVALID"

	// Storage
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeCatalogReadFailed        ErrorCode = "CATALOG_READ_FAILED"
	ErrCodeMatchUpsertFailed        ErrorCode = "MATCH_UPSERT_FAILED"
	ErrCodeChunkCommitFailed        ErrorCode = "CHUNK_COMMIT_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	// Search
	ErrCodeSearchIndexFailed ErrorCode = "SEARCH_INDEX_FAILED"

	// Workflow engine
	ErrCodeBrokerUnavailable ErrorCode = "BROKER_UNAVAILABLE"

	// Import / dedup
	ErrCodeInvalidDedupOptions    ErrorCode = "INVALID_DEDUP_OPTIONS"
	ErrCodeImportValidationFailed ErrorCode = "IMPORT_VALIDATION_FAILED"
	ErrCodeInvalidScoringInput    ErrorCode = "INVALID_SCORING_INPUT"
	ErrCodeParseError             ErrorCode = "PARSE_ERROR"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key to the error's metadata and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

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

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func NewProfileNotFoundError(studentID string) *StandardError {
	return newError(ErrCodeProfileNotFound, "Student profile not found",
		fmt.Sprintf("studentId: %s", studentID), false, nil)
}

func NewProfileInvalidError(details string) *StandardError {
	return newError(ErrCodeProfileInvalid, "Student profile failed validation", details, false, nil)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true, err)
}

func NewCatalogReadFailedError(err error) *StandardError {
	return newError(ErrCodeCatalogReadFailed, "Failed to read scholarship catalog", err.Error(), true, err)
}

func NewMatchUpsertFailedError(studentID string, err error) *StandardError {
	return newError(ErrCodeMatchUpsertFailed, "Failed to persist match results",
		fmt.Sprintf("studentId: %s, error: %s", studentID, err.Error()), true, err)
}

func NewChunkCommitFailedError(chunkIndex int, err error) *StandardError {
	return newError(ErrCodeChunkCommitFailed, "Import chunk commit failed",
		fmt.Sprintf("chunk: %d, error: %s", chunkIndex, err.Error()), true, err)
}

func NewQueryTimeoutError(operation string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout",
		fmt.Sprintf("operation: %s", operation), true, nil)
}

func NewSearchIndexFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchIndexFailed, "Search index update failed",
		fmt.Sprintf("index: %s, error: %s", index, err.Error()), true, err)
}

func NewInvalidDedupOptionsError(details string) *StandardError {
	return newError(ErrCodeInvalidDedupOptions, "Invalid duplicate detection options", details, false, nil)
}

func NewImportValidationFailedError(details string) *StandardError {
	return newError(ErrCodeImportValidationFailed, "Scholarship import validation failed", details, false, nil)
}

func NewInvalidScoringInputError(details string) *StandardError {
	return newError(ErrCodeInvalidScoringInput, "Invalid scoring input", details, false, nil)
}

func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Failed to parse job variables", err.Error(), false, err)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true, err)
}

func NewBrokerUnavailableError(operation string, err error) *StandardError {
	return newError(ErrCodeBrokerUnavailable, "Workflow broker unavailable",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true, err)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// BPMNErrorMapping maps error codes to the error codes caught by boundary
// events in the process models.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeProfileNotFound:          "PROFILE_NOT_FOUND",
	ErrCodeProfileInvalid:           "PROFILE_INVALID",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeCatalogReadFailed:        "CATALOG_READ_FAILED",
	ErrCodeMatchUpsertFailed:        "MATCH_UPSERT_FAILED",
	ErrCodeChunkCommitFailed:        "CHUNK_COMMIT_FAILED",
	ErrCodeQueryTimeout:             "QUERY_TIMEOUT",
	ErrCodeSearchIndexFailed:        "SEARCH_INDEX_FAILED",
	ErrCodeBrokerUnavailable:        "BROKER_UNAVAILABLE",
	ErrCodeInvalidDedupOptions:      "INVALID_DEDUP_OPTIONS",
	ErrCodeImportValidationFailed:   "IMPORT_VALIDATION_FAILED",
	ErrCodeInvalidScoringInput:      "INVALID_SCORING_INPUT",
	ErrCodeParseError:               "PARSE_ERROR",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeCatalogReadFailed,
		ErrCodeMatchUpsertFailed,
		ErrCodeChunkCommitFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeBrokerUnavailable:
		return 3
	case ErrCodeQueryTimeout,
		ErrCodeSearchIndexFailed:
		return 2
	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// AsStandardError unwraps err looking for a *StandardError.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "PROFILE"):
		return "PROFILE"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") ||
		strings.Contains(codeStr, "CATALOG") || strings.Contains(codeStr, "UPSERT") ||
		strings.Contains(codeStr, "CHUNK"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.HasPrefix(codeStr, "BROKER"):
		return "WORKFLOW"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") ||
		strings.Contains(codeStr, "PARSE"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
