package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSessionType(t *testing.T) {
	tests := []struct {
		in      string
		want    SessionType
		wantErr bool
	}{
		{"R", Race, false},
		{"q", Qualifying, false},
		{" fp2 ", Practice2, false},
		{"FP4", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSessionType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "Qualifying", Qualifying.Name())
	assert.Len(t, SessionTypes(), 5)
}

func testSession() *Session {
	base := time.Date(2023, 9, 3, 13, 0, 0, 0, time.UTC)
	at := func(sec int) time.Time { return base.Add(time.Duration(sec) * time.Second) }

	samples := func(from, to int) []Sample {
		out := []Sample{}
		for s := from; s < to; s++ {
			out = append(out, Sample{X: float64(s), Y: float64(-s), Date: at(s)})
		}
		return out
	}
	return &Session{
		Year:  2023,
		Event: Event{RoundNumber: 14, EventName: "Italian Grand Prix"},
		Type:  Race,
		Laps: []Lap{
			{Driver: "LEC", LapNumber: 2, Start: at(10)},
			{Driver: "HAM", LapNumber: 1, Start: at(0), Duration: 5 * time.Second},
			{Driver: "LEC", LapNumber: 1, Start: at(0), Duration: 10 * time.Second},
			{Driver: "LEC", LapNumber: 3, Start: at(20), Duration: 0},
			{Driver: "HAM", LapNumber: 2},
		},
		Positions: map[string][]Sample{
			"LEC": samples(0, 25),
			"HAM": samples(0, 10),
		},
	}
}

func TestDriverCodesFirstSeen(t *testing.T) {
	s := testSession()
	assert.Equal(t, []string{"LEC", "HAM"}, s.DriverCodes())
	assert.Equal(t, "2023 Italian Grand Prix R", s.String())
}

func TestPickDriverSortsByLapNumber(t *testing.T) {
	laps := testSession().PickDriver("LEC")
	require.Len(t, laps, 3)
	for i, l := range laps {
		assert.Equal(t, i+1, l.LapNumber)
	}
	assert.Empty(t, testSession().PickDriver("VER"))
}

func TestTelemetrySlicing(t *testing.T) {
	s := testSession()
	tests := []struct {
		name      string
		driver    string
		lap       int
		wantLen   int
		wantFirst float64
	}{
		{"with duration", "LEC", 1, 10, 0},
		{"ends at next lap start", "LEC", 2, 10, 10},
		{"last lap is open ended", "LEC", 3, 5, 20},
		{"short lap", "HAM", 1, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ok := s.Lap(tt.driver, tt.lap)
			require.True(t, ok)
			tel := s.Telemetry(l)
			require.Len(t, tel, tt.wantLen)
			assert.Equal(t, tt.wantFirst, tel[0].X)
		})
	}

	// a lap without a start time has no telemetry
	l, ok := s.Lap("HAM", 2)
	require.True(t, ok)
	assert.Empty(t, s.Telemetry(l))
}

func TestTelemetryReturnsCopy(t *testing.T) {
	s := testSession()
	l, _ := s.Lap("LEC", 1)
	tel := s.Telemetry(l)
	tel[0].X = 999
	assert.Equal(t, 0.0, s.Positions["LEC"][0].X)
}

func TestTelemetrySetHelpers(t *testing.T) {
	ts := TelemetrySet{
		{Driver: "VER", Laps: []LapTelemetry{{{X: 1}}, {{X: 2}, {X: 3}}}},
		{Driver: "PER"},
	}
	assert.Equal(t, []string{"VER", "PER"}, ts.Drivers())
	ver, ok := ts.Get("VER")
	require.True(t, ok)
	assert.Equal(t, 3, ver.SampleCount())
	_, ok = ts.Get("NOR")
	assert.False(t, ok)
}
