// Package layout turns raw telemetry coordinates into display coordinates.
package layout

import (
	"errors"
	"math"

	"f1trackrenderer/pkg/model"
)

// Mode selects how samples are mapped into display space.
type Mode int

const (
	// ModeRaw keeps the track units and only flips the Y axis.
	ModeRaw Mode = iota
	// ModeUnitRescale maps each driver's own extents into Width x Height.
	// Two drivers' traces are therefore not comparable in size afterwards.
	ModeUnitRescale
)

const (
	DefaultPadding = 20
)

var ErrInvalidTelemetry = errors.New("invalid telemetry")

type Options struct {
	Mode   Mode
	Width  float64
	Height float64
	Stride int
}

func (m Mode) String() string {
	switch m {
	case ModeRaw:
		return "raw"
	case ModeUnitRescale:
		return "unit-rescale"
	}
	return "unknown"
}

// Bounds is an axis aligned rectangle in display space.
type Bounds struct {
	MinX float64 `json:"minX"`
	MaxX float64 `json:"maxX"`
	MinY float64 `json:"minY"`
	MaxY float64 `json:"maxY"`
}

func EmptyBounds() Bounds {
	return Bounds{
		MinX: math.Inf(1),
		MaxX: math.Inf(-1),
		MinY: math.Inf(1),
		MaxY: math.Inf(-1),
	}
}

func (b Bounds) IsEmpty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Extend grows b so that it contains all points.
func (b Bounds) Extend(points ...model.Point) Bounds {
	for _, p := range points {
		if p.X > b.MaxX {
			b.MaxX = p.X
		}
		if p.Y > b.MaxY {
			b.MaxY = p.Y
		}
		if p.X < b.MinX {
			b.MinX = p.X
		}
		if p.Y < b.MinY {
			b.MinY = p.Y
		}
	}
	return b
}

// Pad adds margin on every side.
func (b Bounds) Pad(margin float64) Bounds {
	return Bounds{
		MinX: b.MinX - margin,
		MaxX: b.MaxX + margin,
		MinY: b.MinY - margin,
		MaxY: b.MaxY + margin,
	}
}

// Extent returns the bounds of all laps of all drivers.
func Extent(paths ...[]model.Point) Bounds {
	b := EmptyBounds()
	for _, p := range paths {
		b = b.Extend(p...)
	}
	return b
}

// Downsample keeps every k-th sample, starting with the first one.
func Downsample(samples model.LapTelemetry, k int) model.LapTelemetry {
	if k <= 1 {
		return samples
	}
	out := make(model.LapTelemetry, 0, (len(samples)+k-1)/k)
	for i := 0; i < len(samples); i += k {
		out = append(out, samples[i])
	}
	return out
}

func flip(samples model.LapTelemetry) []model.Point {
	points := make([]model.Point, len(samples))
	for i, s := range samples {
		points[i] = model.Point{X: s.X, Y: -s.Y}
	}
	return points
}

// Normalize converts the samples of one lap.
func Normalize(samples model.LapTelemetry, opts Options) ([]model.Point, error) {
	laps, err := NormalizeDriver([]model.LapTelemetry{samples}, opts)
	if err != nil {
		return nil, err
	}
	return laps[0], nil
}

// NormalizeDriver converts all laps of one driver. In ModeUnitRescale the
// extents are taken over all laps together.
func NormalizeDriver(laps []model.LapTelemetry, opts Options) ([][]model.Point, error) {
	out := make([][]model.Point, len(laps))
	for i, lap := range laps {
		out[i] = flip(Downsample(lap, opts.Stride))
	}
	if opts.Mode != ModeUnitRescale {
		return out, nil
	}

	b := Extent(out...)
	if b.IsEmpty() {
		return nil, errors.Join(ErrInvalidTelemetry, errors.New("no samples"))
	}
	if b.Width() == 0 || b.Height() == 0 {
		return nil, errors.Join(ErrInvalidTelemetry, errors.New("track has zero width or height"))
	}
	for _, lap := range out {
		for j, p := range lap {
			lap[j] = model.Point{
				X: (p.X - b.MinX) / b.Width() * opts.Width,
				Y: (p.Y - b.MinY) / b.Height() * opts.Height,
			}
		}
	}
	return out, nil
}
