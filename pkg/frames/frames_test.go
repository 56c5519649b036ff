package frames

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1trackrenderer/pkg/model"
)

func pts(n int, offset float64) []model.Point {
	out := make([]model.Point, n)
	for i := range out {
		out[i] = model.Point{X: offset + float64(i), Y: -float64(i)}
	}
	return out
}

func TestStopPolicyScenario(t *testing.T) {
	a := Track{Driver: "A", Laps: [][]model.Point{{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}}}
	b := Track{Driver: "B", Laps: [][]model.Point{pts(5, 100)}}
	s := New(PolicyStop, []Track{a, b})

	require.Equal(t, 5, s.Len())

	f := s.Frame(3)
	want := Frame{Index: 3, Positions: []Position{{Driver: "B", Point: b.Laps[0][3]}}}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Errorf("Frame(3) mismatch (-want +got):\n%s", diff)
	}

	f = s.Frame(2)
	require.Len(t, f.Positions, 2)
	assert.Equal(t, Position{Driver: "A", Point: model.Point{X: 10, Y: 10}}, f.Positions[0])
}

func TestStopPolicyWalksLaps(t *testing.T) {
	laps := [][]model.Point{pts(3, 0), pts(2, 10), pts(4, 20)}
	s := New(PolicyStop, []Track{{Driver: "VER", Laps: laps}, {Driver: "HAM", Laps: [][]model.Point{pts(4, 50)}}})

	assert.Equal(t, 9, s.Len())
	tests := []struct {
		frame int
		want  model.Point
	}{
		{0, laps[0][0]},
		{2, laps[0][2]},
		{3, laps[1][0]},
		{4, laps[1][1]},
		{5, laps[2][0]},
		{8, laps[2][3]},
	}
	for _, tt := range tests {
		f := s.Frame(tt.frame)
		require.NotEmpty(t, f.Positions)
		assert.Equal(t, "VER", f.Positions[0].Driver)
		assert.Equal(t, tt.want, f.Positions[0].Point, "frame %d", tt.frame)
	}
	// HAM has 4 samples and stops updating afterwards
	assert.Len(t, s.Frame(3).Positions, 2)
	assert.Len(t, s.Frame(4).Positions, 1)
}

func TestStopPolicyLengthIsMaxOfTotals(t *testing.T) {
	s := New(PolicyStop, []Track{
		{Driver: "A", Laps: [][]model.Point{pts(3, 0), pts(3, 0)}},
		{Driver: "B", Laps: [][]model.Point{pts(5, 0)}},
		{Driver: "C", Laps: [][]model.Point{}},
	})
	assert.Equal(t, 6, s.Len())
}

func TestWrapPolicy(t *testing.T) {
	short := pts(3, 0)
	long := pts(7, 100)
	s := New(PolicyWrap, []Track{
		{Driver: "A", Laps: [][]model.Point{short}},
		{Driver: "B", Laps: [][]model.Point{long}},
	})
	require.Equal(t, 7, s.Len())
	for i := 0; i < s.Len(); i++ {
		f := s.Frame(i)
		require.Len(t, f.Positions, 2)
		assert.Equal(t, short[i%len(short)], f.Positions[0].Point, "frame %d", i)
		assert.Equal(t, long[i%len(long)], f.Positions[1].Point, "frame %d", i)
	}
}

func TestFrameOutOfRange(t *testing.T) {
	s := New(PolicyWrap, []Track{{Driver: "A", Laps: [][]model.Point{pts(2, 0)}}})
	assert.Empty(t, s.Frame(-1).Positions)
	assert.Empty(t, s.Frame(2).Positions)
	assert.Equal(t, 0, New(PolicyStop, nil).Len())
}

func TestIterIsRestartable(t *testing.T) {
	s := New(PolicyStop, []Track{{Driver: "A", Laps: [][]model.Point{pts(4, 0)}}})

	collect := func() []Frame {
		out := []Frame{}
		c := s.Iter()
		for f, ok := c.Next(); ok; f, ok = c.Next() {
			out = append(out, f)
		}
		return out
	}
	first := collect()
	second := collect()
	assert.Len(t, first, 4)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
	_, ok := s.Iter().Next()
	assert.True(t, ok)
}
