package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1trackrenderer/pkg/model"
)

func lap(xy ...float64) model.LapTelemetry {
	out := model.LapTelemetry{}
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, model.Sample{X: xy[i], Y: xy[i+1]})
	}
	return out
}

func TestNormalizeRawFlipsY(t *testing.T) {
	samples := lap(0, 0, 10, 5, 10, -10, 3.5, 7.25)
	points, err := Normalize(samples, Options{Mode: ModeRaw})
	require.NoError(t, err)
	require.Len(t, points, len(samples))
	for i, s := range samples {
		assert.Equal(t, s.X, points[i].X)
		assert.Equal(t, -s.Y, points[i].Y)
	}
}

func TestNormalizeRawStride(t *testing.T) {
	samples := lap(0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6)
	points, err := Normalize(samples, Options{Mode: ModeRaw, Stride: 3})
	require.NoError(t, err)
	want := []model.Point{{X: 0, Y: 0}, {X: 3, Y: -3}, {X: 6, Y: -6}}
	if diff := cmp.Diff(want, points); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeUnitRescale(t *testing.T) {
	tests := []struct {
		name    string
		samples model.LapTelemetry
	}{
		{"small track", lap(0, 0, 10, 0, 10, 10, 0, 10)},
		{"large track", lap(-5000, 200, 8000, 1200, 3000, -7000, 100, 50)},
		{"offset track", lap(100, 100, 101, 102, 103, 101)},
	}
	opts := Options{Mode: ModeUnitRescale, Width: 1000, Height: 800}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := Normalize(tt.samples, opts)
			require.NoError(t, err)
			b := Extent(points)
			assert.Equal(t, 0.0, b.MinX)
			assert.Equal(t, 1000.0, b.MaxX)
			assert.Equal(t, 0.0, b.MinY)
			assert.Equal(t, 800.0, b.MaxY)
		})
	}
}

func TestNormalizeUnitRescaleKeepsFlip(t *testing.T) {
	// highest raw Y ends up at the bottom of the plot
	points, err := Normalize(lap(0, 10, 10, 0), Options{Mode: ModeUnitRescale, Width: 100, Height: 100})
	require.NoError(t, err)
	assert.Equal(t, model.Point{X: 0, Y: 0}, points[0])
	assert.Equal(t, model.Point{X: 100, Y: 100}, points[1])
}

func TestNormalizeDriverSharedExtents(t *testing.T) {
	laps := []model.LapTelemetry{
		lap(0, 0, 5, 0),
		lap(0, 0, 10, -10),
	}
	out, err := NormalizeDriver(laps, Options{Mode: ModeUnitRescale, Width: 100, Height: 100})
	require.NoError(t, err)
	require.Len(t, out, 2)
	// the first lap only covers half of the driver's width
	assert.Equal(t, 50.0, out[0][1].X)
	assert.Equal(t, 100.0, out[1][1].X)
	assert.Equal(t, 100.0, out[1][1].Y)
}

func TestNormalizeDegenerateExtent(t *testing.T) {
	tests := []struct {
		name    string
		samples model.LapTelemetry
	}{
		{"zero width", lap(5, 0, 5, 10, 5, 20)},
		{"zero height", lap(0, 3, 10, 3)},
		{"single sample", lap(1, 1)},
		{"empty", lap()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.samples, Options{Mode: ModeUnitRescale, Width: 1000, Height: 800})
			assert.ErrorIs(t, err, ErrInvalidTelemetry)
		})
	}
}

func TestBoundsPad(t *testing.T) {
	b := Extent([]model.Point{{X: 0, Y: -5}, {X: 10, Y: 5}}, []model.Point{{X: 20, Y: 0}}).Pad(DefaultPadding)
	assert.Equal(t, Bounds{MinX: -20, MaxX: 40, MinY: -25, MaxY: 25}, b)
	assert.True(t, EmptyBounds().IsEmpty())
}

func TestDownsample(t *testing.T) {
	samples := lap(0, 0, 1, 1, 2, 2, 3, 3, 4, 4)
	assert.Len(t, Downsample(samples, 5), 1)
	assert.Len(t, Downsample(samples, 2), 3)
	assert.Equal(t, samples, Downsample(samples, 0))
}
