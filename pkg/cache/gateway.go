package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"f1trackrenderer/log"
	"f1trackrenderer/pkg/metrics"
	"f1trackrenderer/pkg/model"
	"f1trackrenderer/pkg/telemetry"
)

var ErrRaceNotFound = errors.New("race not found")

// Gateway resolves sessions from the store and falls back to the telemetry
// source on a miss.
type Gateway struct {
	store   Store
	source  telemetry.Source
	logger  *log.Logger
	metrics *metrics.Manager
}

type GatewayOption func(*Gateway)

func WithLogger(l *log.Logger) GatewayOption {
	return func(g *Gateway) {
		g.logger = l
	}
}

func WithMetrics(m *metrics.Manager) GatewayOption {
	return func(g *Gateway) {
		g.metrics = m
	}
}

func NewGateway(store Store, source telemetry.Source, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		store:   store,
		source:  source,
		logger:  log.Default(),
		metrics: metrics.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.Named("cache")
	return g
}

func (g *Gateway) Store() Store {
	return g.store
}

// Resolve returns the loaded session of a race. The race name is matched
// case-insensitively as a substring of the event names of the year.
func (g *Gateway) Resolve(
	ctx context.Context,
	year int,
	race string,
	st model.SessionType,
) (*model.Session, error) {
	key := Key(year, race, st)
	blob, err := g.store.Get(key)
	switch {
	case err == nil:
		g.metrics.CacheHit()
		g.logger.Debug("cache hit", log.String("key", key))
		s, err := Decode(blob)
		if err != nil {
			g.metrics.CacheFetchError("decode")
			return nil, fmt.Errorf("cache entry %s: %w", key, err)
		}
		return s, nil
	case !errors.Is(err, ErrNotFound):
		g.metrics.CacheFetchError("store")
		return nil, fmt.Errorf("read cache entry %s: %w", key, err)
	}

	g.metrics.CacheMiss()
	g.logger.Info("cache miss", log.String("key", key))
	s, err := g.fetch(ctx, year, race, st)
	if err != nil {
		return nil, err
	}

	blob, err = Encode(s)
	if err != nil {
		g.metrics.CacheFetchError("encode")
		return nil, err
	}
	if err := g.store.Put(key, blob); err != nil {
		g.metrics.CacheFetchError("store")
		return nil, fmt.Errorf("write cache entry %s: %w", key, err)
	}
	g.logger.Info("session cached", log.String("key", key), log.Int("bytes", len(blob)))
	return s, nil
}

func (g *Gateway) fetch(ctx context.Context, year int, race string, st model.SessionType) (*model.Session, error) {
	events, err := g.source.EventSchedule(ctx, year)
	if err != nil {
		g.metrics.CacheFetchError("fetch")
		return nil, err
	}
	needle := strings.ToLower(race)
	matches := lo.Filter(events, func(e model.Event, _ int) bool {
		return strings.Contains(strings.ToLower(e.EventName), needle)
	})
	if len(matches) == 0 {
		g.metrics.CacheFetchError("not_found")
		return nil, fmt.Errorf("%w: %q in %d", ErrRaceNotFound, race, year)
	}
	if len(matches) > 1 {
		g.logger.Debug("race name is ambiguous, using first match",
			log.String("race", race),
			log.Strings("candidates", lo.Map(matches, func(e model.Event, _ int) string { return e.EventName })))
	}
	event := matches[0]

	s, err := g.source.Session(ctx, year, event.RoundNumber, st)
	if err != nil {
		g.metrics.CacheFetchError("fetch")
		return nil, err
	}
	if err := g.source.Load(ctx, s); err != nil {
		g.metrics.CacheFetchError("fetch")
		return nil, err
	}
	return s, nil
}
