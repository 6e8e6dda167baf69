// Package errors provides foundational, type-safe error primitives used across docgen.
//
// This package contains classified error types and helpers for robust error handling,
// including a fluent builder API for constructing ClassifiedError values with context.
//
// Key features:
//   - ErrorCategory: Broad error classification (validation, template, storage, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - RetryStrategy: Retry behavior (never, immediate, backoff, rate_limit, user)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryStorage, "copy failed").
//		WithRetry(errors.RetryBackoff).
//		WithContext("template", templateID).
//		Build()
//
// The execution guard retries an operation only when the classified retry
// strategy marks the failure transient; unclassified errors are permanent.
package errors
