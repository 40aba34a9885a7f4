package analysis

import (
	"errors"

	"github.com/braindler/braindler-multimodal/internal/plagiarism"
)

var (
	ErrCaseNotFound = errors.New("case not found")
	ErrInvalidCase  = errors.New("invalid case")
)

// IsPermanent reports whether retrying the analysis cannot succeed.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrCaseNotFound) ||
		errors.Is(err, ErrInvalidCase) ||
		errors.Is(err, plagiarism.ErrResourceExhausted) ||
		errors.Is(err, plagiarism.ErrInvalidOptions)
}

// ErrReportNotReady is returned for a known case that has no report yet.
var ErrReportNotReady = errors.New("report not ready")
