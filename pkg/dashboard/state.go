package dashboard

import (
	"errors"
	"fmt"

	"f1trackrenderer/pkg/model"
)

var ErrInvalidTransition = errors.New("invalid state transition")

type Status int

const (
	StatusUnloaded Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusUnloaded:
		return "unloaded"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Selection identifies the session a browser asked for.
type Selection struct {
	Year    int
	Race    string
	Session model.SessionType
}

func (s Selection) String() string {
	return fmt.Sprintf("%d %s %s", s.Year, s.Race, s.Session)
}

// State is the per browser dashboard state. Transitions return a new value
// and leave the receiver untouched.
type State struct {
	status    Status
	selection Selection
	session   *model.Session
	err       error
}

func (s State) Status() Status { return s.status }
func (s State) Selection() Selection { return s.selection }
func (s State) Session() *model.Session { return s.session }
func (s State) Err() error { return s.err }
func (s State) IsLoaded() bool { return s.status == StatusLoaded }

func (s State) invalid(to Status) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.status, to)
}

// StartLoading begins loading sel. A loaded state only accepts a different
// selection.
func (s State) StartLoading(sel Selection) (State, error) {
	switch s.status {
	case StatusLoading:
		return s, s.invalid(StatusLoading)
	case StatusLoaded:
		if s.selection == sel {
			return s, s.invalid(StatusLoading)
		}
	}
	return State{status: StatusLoading, selection: sel}, nil
}

func (s State) Loaded(session *model.Session) (State, error) {
	if s.status != StatusLoading {
		return s, s.invalid(StatusLoaded)
	}
	if session == nil {
		return s, errors.New("loaded state needs a session")
	}
	return State{status: StatusLoaded, selection: s.selection, session: session}, nil
}

func (s State) Failed(err error) (State, error) {
	if s.status != StatusLoading {
		return s, s.invalid(StatusFailed)
	}
	return State{status: StatusFailed, selection: s.selection, err: err}, nil
}
