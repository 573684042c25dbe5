package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Pipeline Error Constructors ---

// Storage creates a new AppError for an object store failure.
func Storage(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeStorage, Message: fmt.Sprintf("Object store %s failed.", operation),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"operation": operation}, Cause: cause,
	}
}

// Download creates a new AppError for a failed recording download.
func Download(url string, statusCode int) *AppError {
	e := &AppError{
		Code: ErrCodeDownload, Message: "The recording could not be downloaded.",
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"url": url},
	}
	if statusCode > 0 {
		e.Details["status_code"] = statusCode
	}
	return e
}

// Integrity creates a new AppError for a downloaded file that failed verification.
func Integrity(path, reason string) *AppError {
	return &AppError{
		Code: ErrCodeIntegrity, Message: fmt.Sprintf("Downloaded file failed verification: %s.", reason),
		HTTPStatus: http.StatusBadGateway, Retryable: false,
		Details: map[string]any{"path": path},
	}
}

// Probe creates a new AppError for a failed media inspection.
func Probe(path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeProbe, Message: "The audio file could not be inspected.",
		HTTPStatus: http.StatusUnprocessableEntity, Retryable: false,
		Details: map[string]any{"path": path}, Cause: cause,
	}
}

// Segmentation creates a new AppError for a failed audio segmentation.
func Segmentation(reason string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeSegmentation, Message: fmt.Sprintf("Audio segmentation failed: %s.", reason),
		HTTPStatus: http.StatusUnprocessableEntity, Retryable: false,
		Cause: cause,
	}
}

// Transcription creates a new AppError for a segment that could not be transcribed.
// The failing segment index is always carried in Details.
func Transcription(segmentIndex int, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTranscription, Message: fmt.Sprintf("Transcription of segment %d failed.", segmentIndex),
		HTTPStatus: http.StatusBadGateway, Retryable: false,
		Details: map[string]any{"segment_index": segmentIndex}, Cause: cause,
	}
}

// --- Common Error Constructors ---

// ServiceUnavailable creates a new AppError for a service that is temporarily unavailable.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// ConnectionFailed creates a new AppError for a failed connection to a service.
func ConnectionFailed(service string) *AppError {
	return &AppError{
		Code: ErrCodeConnectionFailed, Message: fmt.Sprintf("Unable to connect to %s. Please verify the service is running.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// Timeout creates a new AppError for a request that timed out.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// RateLimited creates a new AppError for too many requests.
func RateLimited() *AppError {
	return &AppError{
		Code: ErrCodeRateLimited, Message: "Too many requests. Please wait a moment and try again.",
		HTTPStatus: http.StatusTooManyRequests, Retryable: true,
	}
}

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// Internal creates a new AppError for an internal server error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again or contact support.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// ExternalServiceError creates a new AppError for an error from an external service.
func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExternalService, Message: fmt.Sprintf("The %s service encountered an error. Please try again.", service),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"service": service}, Cause: cause,
	}
}

// IsRetryable reports whether err is an AppError marked retryable.
func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}
