package internal

import (
	"errors"
	"strings"
	"testing"
)

func TestCategorizeError_DiskSpace(t *testing.T) {
	err := errors.New("write failed: no space left on device")
	procErr := CategorizeError("/test/file.jpg", err)

	if procErr.Category != ErrorCategoryIO {
		t.Errorf("Expected IO category, got %s", procErr.Category)
	}
	if procErr.Severity != ErrorSeverityCritical {
		t.Errorf("Expected critical severity, got %s", procErr.Severity)
	}
	if !strings.Contains(procErr.Suggestion, "disk space") {
		t.Errorf("Expected disk space suggestion, got: %s", procErr.Suggestion)
	}
}

func TestCategorizeError_Permission(t *testing.T) {
	err := errors.New("open /library/file.jpg: permission denied")
	procErr := CategorizeError("/test/file.jpg", err)

	if procErr.Category != ErrorCategoryIO {
		t.Errorf("Expected IO category, got %s", procErr.Category)
	}
	if procErr.Severity != ErrorSeverityCritical {
		t.Errorf("Expected critical severity, got %s", procErr.Severity)
	}
}

func TestCategorizeError_Metadata(t *testing.T) {
	err := errors.New("failed to read exif data")
	procErr := CategorizeError("/test/file.jpg", err)

	if procErr.Category != ErrorCategoryTagWrite {
		t.Errorf("Expected tag-write category, got %s", procErr.Category)
	}
	if procErr.Severity != ErrorSeverityWarning {
		t.Errorf("Expected warning severity, got %s", procErr.Severity)
	}
}

func TestCategorizeError_Unknown(t *testing.T) {
	err := errors.New("something odd happened")
	procErr := CategorizeError("/test/file.jpg", err)

	if procErr.Category != ErrorCategoryUnknown {
		t.Errorf("Expected unknown category, got %s", procErr.Category)
	}
}

func TestCategorizeError_Nil(t *testing.T) {
	if procErr := CategorizeError("/test/file.jpg", nil); procErr != nil {
		t.Errorf("Expected nil for nil error, got %v", procErr)
	}
}

func TestProcessError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	procErr := NewProcessError("/test/file.jpg", ErrorCategoryCopy, inner)

	if !errors.Is(procErr, inner) {
		t.Error("Expected errors.Is to see through ProcessError")
	}
	if procErr.Severity != ErrorSeverityError {
		t.Errorf("Expected error severity, got %s", procErr.Severity)
	}
	if procErr.Suggestion == "" {
		t.Error("Expected a suggestion for copy failures")
	}
}

func TestNewProcessError_DateIsWarning(t *testing.T) {
	procErr := NewProcessError("/test/file.jpg", ErrorCategoryDate, ErrNoCaptureDate)
	if procErr.Severity != ErrorSeverityWarning {
		t.Errorf("Expected warning severity for unresolvable dates, got %s", procErr.Severity)
	}
}
