// Package telemetry fetches sessions, laps and position samples.
package telemetry

import (
	"context"
	"errors"

	"f1trackrenderer/pkg/model"
)

var ErrSessionNotFound = errors.New("session not found")

// Source is the external telemetry provider.
type Source interface {
	// EventSchedule returns the events of a season in round order.
	EventSchedule(ctx context.Context, year int) ([]model.Event, error)
	// Session resolves a session of the event with the given round. The
	// returned session is not loaded yet.
	Session(ctx context.Context, year, round int, st model.SessionType) (*model.Session, error)
	// Load fetches drivers, laps and positions into s.
	Load(ctx context.Context, s *model.Session) error
}
