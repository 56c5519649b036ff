package dashboard

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	cookieName = "f1tr_session"

	DefaultSessionTTL = 30 * time.Minute
)

type entry struct {
	state State
	seen  time.Time
	// figure built for figKey from state, reset on every transition
	fig    *figure
	figKey string
}

// Store keeps one State per browser session. Entries not touched for longer
// than the ttl are dropped, together with their loaded session.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Store{entries: map[string]*entry{}, ttl: ttl, now: time.Now}
}

// sweep drops idle entries. Callers hold mu.
func (s *Store) sweep(now time.Time) {
	for id, e := range s.entries {
		if now.Sub(e.seen) > s.ttl {
			delete(s.entries, id)
		}
	}
}

// touch returns the live entry of id, or nil. Callers hold mu.
func (s *Store) touch(id string) *entry {
	now := s.now()
	s.sweep(now)
	e, ok := s.entries[id]
	if !ok {
		return nil
	}
	e.seen = now
	return e
}

func (s *Store) Get(id string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.touch(id); e != nil {
		return e.state
	}
	return State{}
}

// Update applies a transition atomically. The stored state is only replaced
// when fn succeeds.
func (s *Store) Update(id string, fn func(State) (State, error)) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.touch(id)
	if e == nil {
		e = &entry{seen: s.now()}
	}
	next, err := fn(e.state)
	if err != nil {
		return e.state, err
	}
	s.entries[id] = &entry{state: next, seen: e.seen}
	return next, nil
}

// figure returns the figure of key for the loaded state of id, calling build
// only when no figure for that key and state is cached.
func (s *Store) figure(id, key string, build func(State) (*figure, error)) (*figure, error) {
	s.mu.Lock()
	e := s.touch(id)
	if e == nil || !e.state.IsLoaded() {
		s.mu.Unlock()
		return nil, ErrInvalidTransition
	}
	if e.fig != nil && e.figKey == key {
		fig := e.fig
		s.mu.Unlock()
		return fig, nil
	}
	state := e.state
	s.mu.Unlock()

	fig, err := build(state)
	if err != nil {
		return fig, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// only keep it when the state did not move on meanwhile
	if cur, ok := s.entries[id]; ok && cur == e {
		e.fig, e.figKey = fig, key
	}
	return fig, nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep(s.now())
	return len(s.entries)
}

func readSessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return "", false
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}

// sessionID returns the browser session id, issuing a new cookie when the
// request has none.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if id, ok := readSessionID(r); ok {
		return id
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
