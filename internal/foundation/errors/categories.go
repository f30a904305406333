package errors

import "maps"

// ErrorCategory groups errors by the part of the build that failed.
type ErrorCategory string

const (
	// Problems the user has to fix before anything runs.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"

	// Vault and output directory access.
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryIndex      ErrorCategory = "index"

	// Document processing.
	CategoryParse  ErrorCategory = "parse"
	CategoryEmbed  ErrorCategory = "embed"
	CategoryRender ErrorCategory = "render"

	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

var exitCodes = map[ErrorCategory]int{
	CategoryValidation: 2,
	CategoryNotFound:   3,
	CategoryConfig:     7,
	CategoryInternal:   10,
	CategoryFileSystem: 11,
	CategoryIndex:      11,
	CategoryParse:      11,
	CategoryEmbed:      11,
	CategoryRender:     11,
	CategoryRuntime:    12,
}

// ExitCode is the process status the CLI exits with for the category.
func (c ErrorCategory) ExitCode() int {
	if code, ok := exitCodes[c]; ok {
		return code
	}
	return 1
}

// ErrorSeverity tells the CLI how loudly to report an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning"
)

// ErrorContext holds structured fields logged alongside an error.
type ErrorContext map[string]any

// Merge returns a new context with other's values taking precedence.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	result := make(ErrorContext, len(c)+len(other))
	maps.Copy(result, c)
	maps.Copy(result, other)
	return result
}
