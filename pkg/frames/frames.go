// Package frames maps a global frame index to each driver's position.
package frames

import (
	"github.com/samber/lo"

	"f1trackrenderer/pkg/model"
)

// Policy decides what happens to a driver whose samples run out before the
// animation ends.
type Policy int

const (
	// PolicyStop walks all selected laps; an exhausted driver gets no update.
	PolicyStop Policy = iota
	// PolicyWrap restarts an exhausted driver from its first sample.
	PolicyWrap
)

func (p Policy) String() string {
	switch p {
	case PolicyStop:
		return "stop"
	case PolicyWrap:
		return "wrap"
	}
	return "unknown"
}

// Track is the normalized path of one driver, one slice per lap.
type Track struct {
	Driver string
	Laps   [][]model.Point
}

func (t Track) len() int {
	return lo.SumBy(t.Laps, func(l []model.Point) int { return len(l) })
}

// Position is a driver's marker position in one frame.
type Position struct {
	Driver string      `json:"driver"`
	Point  model.Point `json:"point"`
}

// Frame holds the drivers that move in this frame, in track order.
type Frame struct {
	Index     int        `json:"index"`
	Positions []Position `json:"positions"`
}

type Sequencer struct {
	policy Policy
	tracks []Track
	totals []int
	length int
}

func New(policy Policy, tracks []Track) *Sequencer {
	s := &Sequencer{
		policy: policy,
		tracks: tracks,
		totals: lo.Map(tracks, func(t Track, _ int) int { return t.len() }),
	}
	if len(s.totals) > 0 {
		s.length = lo.Max(s.totals)
	}
	return s
}

func (s *Sequencer) Policy() Policy { return s.policy }

// Len is the number of frames, i.e. the largest per driver sample count.
func (s *Sequencer) Len() int {
	return s.length
}

func (s *Sequencer) Frame(i int) Frame {
	f := Frame{Index: i, Positions: []Position{}}
	if i < 0 || i >= s.length {
		return f
	}
	for idx, t := range s.tracks {
		total := s.totals[idx]
		if total == 0 {
			continue
		}
		current := i
		if s.policy == PolicyWrap {
			current = i % total
		} else if current >= total {
			continue
		}
		if p, ok := locate(t.Laps, current); ok {
			f.Positions = append(f.Positions, Position{Driver: t.Driver, Point: p})
		}
	}
	return f
}

// locate walks the laps in order and returns the sample at the residual index.
func locate(laps [][]model.Point, frame int) (model.Point, bool) {
	current := frame
	for _, l := range laps {
		if current < len(l) {
			return l[current], true
		}
		current -= len(l)
	}
	return model.Point{}, false
}

// Iter returns a fresh cursor positioned before the first frame.
func (s *Sequencer) Iter() *Cursor {
	return &Cursor{s: s, next: 0}
}

type Cursor struct {
	s    *Sequencer
	next int
}

// Next returns the next frame, or false once all frames have been produced.
func (c *Cursor) Next() (Frame, bool) {
	if c.next >= c.s.Len() {
		return Frame{}, false
	}
	f := c.s.Frame(c.next)
	c.next++
	return f, true
}
