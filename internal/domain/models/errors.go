package models

import "fmt"

// FetchErrorKind distinguishes coordinator-level failures. Both kinds are
// retryable via another refresh.
type FetchErrorKind string

const (
	FetchNetworkFailure FetchErrorKind = "network_failure"
	FetchTimeout        FetchErrorKind = "timeout"
)

// FetchError is the only error type surfaced to tracking consumers.
// Warnings (normalization, data quality) are logged, never returned.
type FetchError struct {
	Kind FetchErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s", e.Kind)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Retryable reports whether calling refresh again can succeed. True for
// every kind today; kept explicit so consumers do not hard-code it.
func (e *FetchError) Retryable() bool { return true }

// NewNetworkError wraps an underlying transport/source failure.
func NewNetworkError(err error) *FetchError {
	return &FetchError{Kind: FetchNetworkFailure, Err: err}
}

// NewTimeoutError marks a cycle that exceeded the coordinator's ceiling.
func NewTimeoutError(err error) *FetchError {
	return &FetchError{Kind: FetchTimeout, Err: err}
}
