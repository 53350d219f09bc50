// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package personalize

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	// ErrInvalidRequest matches every *ValidationError.
	ErrInvalidRequest = errors.New("invalid personalization request")

	// ErrProfileUnavailable is recovered inside the engine and never returned.
	ErrProfileUnavailable = errors.New("learner profile unavailable")

	// ErrCatalogUnavailable matches a *ProviderError from the catalog provider.
	ErrCatalogUnavailable = errors.New("content catalog unavailable")

	// ErrHistoryUnavailable matches a *ProviderError from the history provider.
	ErrHistoryUnavailable = errors.New("session history unavailable")
)

// Source identifies which provider failed.
type Source string

const (
	SourceProfile Source = "profile"
	SourceCatalog Source = "catalog"
	SourceHistory Source = "history"
)

// ValidationError rejects a request before any provider is called.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidRequest) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// ProviderError wraps a failure from one of the data providers.
type ProviderError struct {
	Source Source
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %v", e.Source, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the failing source.
func (e *ProviderError) Is(target error) bool {
	switch e.Source {
	case SourceCatalog:
		return target == ErrCatalogUnavailable
	case SourceHistory:
		return target == ErrHistoryUnavailable
	case SourceProfile:
		return target == ErrProfileUnavailable
	default:
		return false
	}
}

// IsProviderError reports whether err is a fatal provider failure and returns it.
func IsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
