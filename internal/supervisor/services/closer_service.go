// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package services

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tomtom215/pathwise/internal/logging"
)

// CloserService owns a component that works passively once constructed,
// such as the event publisher, and closes it when the supervisor stops.
// The component is closed at most once; restarts after a close are no-ops
// that wait for cancellation.
type CloserService struct {
	name   string
	closer io.Closer
	once   sync.Once
	err    error
}

// NewCloserService wraps closer under name.
func NewCloserService(name string, closer io.Closer) *CloserService {
	return &CloserService{name: name, closer: closer}
}

// Serve implements suture.Service.
func (s *CloserService) Serve(ctx context.Context) error {
	<-ctx.Done()

	s.once.Do(func() {
		logging.Info().Str("service", s.name).Msg("Closing supervised component")
		s.err = s.closer.Close()
	})
	if s.err != nil {
		return fmt.Errorf("%s close failed: %w", s.name, s.err)
	}
	return ctx.Err()
}

func (s *CloserService) String() string {
	return s.name
}
