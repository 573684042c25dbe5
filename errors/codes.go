package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Connection/Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates a collaborator is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeConnectionFailed indicates a failed connection to a collaborator.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimited indicates the client is rate limited.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Pipeline errors
const (
	// ErrCodeStorage indicates the object store could not serve the request.
	ErrCodeStorage ErrorCode = "STORAGE_ERROR"
	// ErrCodeDownload indicates the recording could not be fetched.
	ErrCodeDownload ErrorCode = "DOWNLOAD_ERROR"
	// ErrCodeIntegrity indicates a downloaded file failed verification.
	ErrCodeIntegrity ErrorCode = "INTEGRITY_ERROR"
	// ErrCodeProbe indicates media inspection failed.
	ErrCodeProbe ErrorCode = "PROBE_ERROR"
	// ErrCodeSegmentation indicates audio segmentation failed.
	ErrCodeSegmentation ErrorCode = "SEGMENTATION_ERROR"
	// ErrCodeTranscription indicates a segment could not be transcribed.
	ErrCodeTranscription ErrorCode = "TRANSCRIPTION_ERROR"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeExternalService indicates an error from an external service.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeConnectionFailed:   true,
	ErrCodeTimeout:            true,
	ErrCodeRateLimited:        true,
	ErrCodeExternalService:    true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
