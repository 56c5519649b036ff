package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1trackrenderer/log"
	"f1trackrenderer/pkg/model"
)

var t0 = time.Date(2023, 9, 3, 13, 0, 0, 0, time.UTC)

// sampleSession builds a session where every lap lasts ten seconds and each
// driver has one sample per second.
func sampleSession(lapsPerDriver map[string]int) *model.Session {
	s := &model.Session{Positions: map[string][]model.Sample{}}
	for code, n := range lapsPerDriver {
		for l := 0; l < n; l++ {
			start := t0.Add(time.Duration(l*10) * time.Second)
			s.Laps = append(s.Laps, model.Lap{
				Driver:    code,
				LapNumber: l + 1,
				Start:     start,
				Duration:  10 * time.Second,
			})
			for i := 0; i < 10; i++ {
				s.Positions[code] = append(s.Positions[code], model.Sample{
					X:    float64(l*100 + i),
					Y:    float64(i),
					Date: start.Add(time.Duration(i) * time.Second),
				})
			}
		}
	}
	return s
}

func TestDriverLapsLimitsLaps(t *testing.T) {
	s := sampleSession(map[string]int{"VER": 7, "HAM": 2})
	f := NewFetcher(log.NewNop())

	set, warnings := f.DriverLaps(s, []string{"HAM", "VER", "XXX"}, 5)
	require.Len(t, set, 2)
	assert.Equal(t, []string{"HAM", "VER"}, set.Drivers())

	ver, ok := set.Get("VER")
	require.True(t, ok)
	assert.Len(t, ver.Laps, 5)
	assert.Equal(t, 50, ver.SampleCount())
	assert.Equal(t, 400.0, ver.Laps[4][0].X)

	ham, _ := set.Get("HAM")
	assert.Len(t, ham.Laps, 2)

	require.Len(t, warnings, 1)
	assert.Equal(t, "XXX", warnings[0].Driver)
}

func TestSelectedLaps(t *testing.T) {
	s := sampleSession(map[string]int{"VER": 3, "LEC": 3})
	f := NewFetcher(log.NewNop())

	set, warnings := f.SelectedLaps(s, []string{"LEC", "VER"}, map[string]int{"VER": 2, "LEC": 9})
	require.Len(t, set, 1)
	assert.Equal(t, "VER", set[0].Driver)
	require.Len(t, set[0].Laps, 1)
	assert.Equal(t, 100.0, set[0].Laps[0][0].X)

	require.Len(t, warnings, 1)
	assert.Equal(t, "No data for LEC on lap 9. Skipping.", warnings[0].Message)
}
