package client

import (
	"context"
	"errors"
	"io/fs"
	"strings"

	"github.com/kjstillabower/weather-pipeline/internal/validation"
)

// ErrorCategory is a stable label for error classification in metrics.
type ErrorCategory string

// Error category constants used as the pipelineErrorsTotal label.
const (
	ErrorCategoryTimeout      ErrorCategory = "timeout"
	ErrorCategoryCanceled     ErrorCategory = "canceled"
	ErrorCategoryNetwork      ErrorCategory = "network"
	ErrorCategoryFetchFailure ErrorCategory = "fetch_failure"
	ErrorCategorySchema       ErrorCategory = "schema"
	ErrorCategoryParsing      ErrorCategory = "parsing"
	ErrorCategoryValidation   ErrorCategory = "validation"
	ErrorCategoryFilesystem   ErrorCategory = "filesystem"
	ErrorCategoryUnknown      ErrorCategory = "unknown"
)

// CategorizeError maps an error to a stable ErrorCategory for metrics.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.Canceled) {
		return ErrorCategoryCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCategoryTimeout
	}

	if errors.Is(err, ErrFetchFailure) {
		return ErrorCategoryFetchFailure
	}

	if errors.Is(err, validation.ErrMissingField) || errors.Is(err, validation.ErrLengthMismatch) {
		return ErrorCategorySchema
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return ErrorCategoryFilesystem
	}

	errStr := err.Error()
	if strings.Contains(errStr, "timeout") {
		return ErrorCategoryTimeout
	}

	if strings.Contains(errStr, "connection") || strings.Contains(errStr, "http request failed") {
		return ErrorCategoryNetwork
	}

	if strings.Contains(errStr, "parse") || strings.Contains(errStr, "unmarshal") {
		return ErrorCategoryParsing
	}

	if strings.Contains(errStr, "invalid") || strings.Contains(errStr, "validation") {
		return ErrorCategoryValidation
	}

	return ErrorCategoryUnknown
}
