package internal

import (
	"fmt"
	"strings"
)

// ErrorCategory represents the type of error encountered while processing
// a single asset.
type ErrorCategory string

const (
	ErrorCategoryIO       ErrorCategory = "io_error"          // file system, permissions, disk space
	ErrorCategoryInvalid  ErrorCategory = "invalid_asset"     // unsupported, empty or unsalvageable file
	ErrorCategoryDate     ErrorCategory = "date_unresolvable" // no capture date could be determined
	ErrorCategoryTagWrite ErrorCategory = "tag_write_failed"  // metadata rewrite failed after retry
	ErrorCategoryCopy     ErrorCategory = "copy_failed"       // placement copy failed
	ErrorCategoryManual   ErrorCategory = "manual_required"   // filename needs human attention
	ErrorCategoryUnknown  ErrorCategory = "unknown_error"
)

// ErrorSeverity indicates how critical the error is.
type ErrorSeverity string

const (
	ErrorSeverityCritical ErrorSeverity = "critical" // system-level, aborts the run
	ErrorSeverityError    ErrorSeverity = "error"    // file-level, counted and skipped
	ErrorSeverityWarning  ErrorSeverity = "warning"  // recoverable
)

// ProcessError is a categorized per-asset error. Every per-asset failure is
// converted into one of these and tallied; only resource-initialization
// failures propagate out of the run.
type ProcessError struct {
	FilePath    string
	Category    ErrorCategory
	Severity    ErrorSeverity
	OriginalErr error
	Suggestion  string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("[%s/%s] %s: %v", e.Severity, e.Category, e.FilePath, e.OriginalErr)
}

func (e *ProcessError) Unwrap() error { return e.OriginalErr }

// NewProcessError builds a ProcessError with a known category.
func NewProcessError(path string, cat ErrorCategory, err error) *ProcessError {
	pe := &ProcessError{FilePath: path, Category: cat, OriginalErr: err, Severity: ErrorSeverityError}
	switch cat {
	case ErrorCategoryInvalid:
		pe.Suggestion = "File is not a usable media file - inspect it with the check command"
	case ErrorCategoryDate:
		pe.Severity = ErrorSeverityWarning
		pe.Suggestion = "No capture date found - fix the metadata or sidecar and re-run"
	case ErrorCategoryTagWrite:
		pe.Suggestion = "Metadata rewrite failed twice - the file is likely corrupt"
	case ErrorCategoryCopy:
		pe.Suggestion = "Copy failed - source file left in place, safe to re-run"
	case ErrorCategoryManual:
		pe.Severity = ErrorSeverityWarning
		pe.Suggestion = "Rename the file to remove duplicate-index markers and re-run"
	}
	return pe
}

// CategorizeError classifies an arbitrary error by message. Used for errors
// coming back from the filesystem and external tools.
func CategorizeError(path string, err error) *ProcessError {
	if err == nil {
		return nil
	}

	errStr := strings.ToLower(err.Error())
	pe := &ProcessError{FilePath: path, OriginalErr: err}

	switch {
	case strings.Contains(errStr, "no space left"):
		pe.Category = ErrorCategoryIO
		pe.Severity = ErrorSeverityCritical
		pe.Suggestion = "Free up disk space on the destination drive and retry"

	case strings.Contains(errStr, "permission denied"):
		pe.Category = ErrorCategoryIO
		pe.Severity = ErrorSeverityCritical
		pe.Suggestion = "Check file permissions on both source and destination directories"

	case strings.Contains(errStr, "read-only file system"):
		pe.Category = ErrorCategoryIO
		pe.Severity = ErrorSeverityCritical
		pe.Suggestion = "Destination filesystem is read-only - check mount options"

	case strings.Contains(errStr, "input/output error"):
		pe.Category = ErrorCategoryIO
		pe.Severity = ErrorSeverityError
		pe.Suggestion = "I/O error - check disk health"

	case strings.Contains(errStr, "no such file"):
		pe.Category = ErrorCategoryIO
		pe.Severity = ErrorSeverityError
		pe.Suggestion = "File disappeared during the run - check if an external drive disconnected"

	case strings.Contains(errStr, "exif") || strings.Contains(errStr, "metadata"):
		pe.Category = ErrorCategoryTagWrite
		pe.Severity = ErrorSeverityWarning
		pe.Suggestion = "Metadata could not be read or written"

	default:
		pe.Category = ErrorCategoryUnknown
		pe.Severity = ErrorSeverityError
		pe.Suggestion = "Unexpected error - check the log for details"
	}

	return pe
}
