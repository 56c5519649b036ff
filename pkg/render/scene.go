package render

import (
	"errors"
	"image/color"
	"time"

	"f1trackrenderer/pkg/frames"
	"f1trackrenderer/pkg/layout"
	"f1trackrenderer/pkg/model"
)

var ErrNoTracks = errors.New("no driver with usable telemetry")

type SceneOptions struct {
	Layout  layout.Options
	Policy  frames.Policy
	Padding float64
	Delay   time.Duration
	Style   Style
	Colors  func(n int) []color.RGBA
	Label   func(driver string) string
}

// Skipped is a driver left out of a scene.
type Skipped struct {
	Driver string
	Err    error
}

// NewScene normalizes every driver of set and builds the sequencer. Drivers
// whose telemetry cannot be normalized are returned as skipped. Colors are
// assigned by position in set, so a skipped driver keeps its color unused.
func NewScene(set model.TelemetrySet, opts SceneOptions) (*Scene, []Skipped, error) {
	if opts.Colors == nil {
		opts.Colors = PaletteColors
	}
	if opts.Label == nil {
		opts.Label = func(driver string) string { return driver }
	}

	palette := opts.Colors(len(set))
	tracks := []frames.Track{}
	colors := []color.RGBA{}
	skipped := []Skipped{}
	for i, dt := range set {
		laps, err := layout.NormalizeDriver(dt.Laps, opts.Layout)
		if err != nil {
			skipped = append(skipped, Skipped{Driver: dt.Driver, Err: err})
			continue
		}
		tracks = append(tracks, frames.Track{Driver: dt.Driver, Laps: laps})
		colors = append(colors, palette[i])
	}
	if len(tracks) == 0 {
		return nil, skipped, ErrNoTracks
	}

	bounds := layout.EmptyBounds()
	labels := make([]string, len(tracks))
	for i, t := range tracks {
		for _, lap := range t.Laps {
			bounds = bounds.Extend(lap...)
		}
		labels[i] = opts.Label(t.Driver)
	}
	if bounds.IsEmpty() {
		return nil, skipped, ErrNoTracks
	}
	if opts.Padding > 0 {
		bounds = bounds.Pad(opts.Padding)
	}

	return &Scene{
		Tracks:    tracks,
		Colors:    colors,
		Labels:    labels,
		Bounds:    bounds,
		Sequencer: frames.New(opts.Policy, tracks),
		Delay:     opts.Delay,
		Style:     opts.Style,
	}, skipped, nil
}
