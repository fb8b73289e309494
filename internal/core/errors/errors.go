// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - Unexported errors (err*): Use for internal package errors
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Submission validation errors.
var (
	// ErrNewsTextTooShort indicates the trimmed news text is below the minimum length.
	ErrNewsTextTooShort = errors.New("news text too short")

	// ErrImageMissing indicates no image file was attached to the submission.
	ErrImageMissing = errors.New("image missing")
)

// Analysis backend errors.
var (
	// ErrAnalysisFailed wraps every backend failure surfaced to the submission controller.
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrAnalysisStatus indicates the backend answered with a non-2xx status.
	ErrAnalysisStatus = errors.New("analysis status")

	// ErrEmptyResponse indicates an empty response was received.
	ErrEmptyResponse = errors.New("empty response")
)

// Snapshot errors.
var (
	// ErrSnapshotNotFound indicates no evidence snapshot has been written for the session.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrSnapshotCorrupt indicates the stored snapshot could not be decoded.
	ErrSnapshotCorrupt = errors.New("snapshot corrupt")

	// ErrUnknownBackend indicates an unsupported snapshot backend name.
	ErrUnknownBackend = errors.New("unknown snapshot backend")
)

// Session errors.
var (
	// ErrInvalidSession indicates a session cookie that failed verification.
	ErrInvalidSession = errors.New("invalid session")
)

// Rate limiting and throttling errors.
var (
	// ErrRateLimited indicates rate limiting was triggered.
	ErrRateLimited = errors.New("rate limited")
)
