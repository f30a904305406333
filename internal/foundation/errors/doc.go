// Package errors provides the classified errors used across vaultmark.
//
// An error carries a category (config, filesystem, embed, ...), a severity and
// a context map that the CLI logs as slog attributes:
//
//	err := errors.WrapError(cause, errors.CategoryEmbed, "embedded note unavailable").
//		Warning().
//		WithContext("path", "/notes/daily.md").
//		Build()
//
// Authoring mistakes in notes never produce these errors; they are reported
// as diagnostics. Categories map to process exit codes through ExitCode.
package errors
