package adminapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gridnode/supervisor/internal/supervisor"
)

// ErrorCode is the admin surface's error taxonomy, specific to
// supervisor operations rather than the generic REST-API codes a
// multi-tenant HTTP service would carry.
type ErrorCode string

const (
	CodeRequestInvalid       ErrorCode = "REQUEST_INVALID"
	CodeRevisionMismatch     ErrorCode = "REVISION_MISMATCH"
	CodeDeploymentError      ErrorCode = "DEPLOYMENT_ERROR"
	CodeActivationFailure    ErrorCode = "ACTIVATION_FAILURE"
	CodeTimeout              ErrorCode = "TIMEOUT"
	CodeDestroyedWhileQueued ErrorCode = "DESTROYED_WHILE_QUEUED"
	CodeFilesystemFault      ErrorCode = "FILESYSTEM_FAULT"
	CodeNotFound             ErrorCode = "NOT_FOUND"
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
)

// APIError is the structured error the admin surface returns for every
// non-2xx response.
type APIError struct {
	Code      ErrorCode   `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// ErrorResponse wraps APIError for JSON responses.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

func NewAPIError(code ErrorCode, message string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func (e *APIError) WithRequestID(requestID string) *APIError {
	e.RequestID = requestID
	return e
}

// StatusCode maps an ErrorCode to the HTTP status it should produce.
func (e *APIError) StatusCode() int {
	switch e.Code {
	case CodeRequestInvalid:
		return http.StatusBadRequest
	case CodeRevisionMismatch:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDestroyedWhileQueued:
		return http.StatusGone
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeDeploymentError, CodeActivationFailure, CodeFilesystemFault:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// WriteError writes an APIError as a JSON response.
func WriteError(w http.ResponseWriter, requestID string, err *APIError) {
	err = err.WithRequestID(requestID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode())
	json.NewEncoder(w).Encode(ErrorResponse{Error: *err})
}

// TranslateError maps a supervisor error value to an APIError, per the
// typed-error taxonomy in internal/supervisor/errors.go.
func TranslateError(err error) *APIError {
	if err == nil {
		return NewAPIError(CodeInternalError, "unknown error")
	}

	var reqInvalid *supervisor.RequestInvalidError
	var revMismatch *supervisor.RevisionMismatchError
	var deployErr *supervisor.DeploymentError
	var actErr *supervisor.ActivationFailureError
	var timeoutErr *supervisor.TimeoutError
	var destroyedErr *supervisor.DestroyedWhileQueuedError
	var fsErr *supervisor.FileSystemFaultError
	var notFoundErr *supervisor.FileNotAvailableError

	switch {
	case errors.As(err, &reqInvalid):
		return NewAPIError(CodeRequestInvalid, err.Error())
	case errors.As(err, &revMismatch):
		return NewAPIError(CodeRevisionMismatch, err.Error())
	case errors.As(err, &deployErr):
		return NewAPIError(CodeDeploymentError, err.Error())
	case errors.As(err, &actErr):
		return NewAPIError(CodeActivationFailure, err.Error())
	case errors.As(err, &timeoutErr):
		return NewAPIError(CodeTimeout, err.Error())
	case errors.As(err, &destroyedErr):
		return NewAPIError(CodeDestroyedWhileQueued, err.Error())
	case errors.As(err, &fsErr):
		return NewAPIError(CodeFilesystemFault, err.Error())
	case errors.As(err, &notFoundErr):
		return NewAPIError(CodeNotFound, err.Error())
	default:
		return NewAPIError(CodeInternalError, err.Error())
	}
}
