// Package render turns normalized traces and a frame sequencer into drawing
// calls on a Canvas.
package render

import (
	"fmt"
	"image/color"
	"math/rand"
	"time"

	"f1trackrenderer/pkg/frames"
	"f1trackrenderer/pkg/layout"
	"f1trackrenderer/pkg/model"
)

// Canvas is the drawing capability the scene needs.
type Canvas interface {
	DrawPath(points []model.Point, c color.Color, width float64)
	DrawMarker(p model.Point, c color.Color, radius float64)
	SetLegend(entries []LegendEntry)
}

type LegendEntry struct {
	Label string
	Color color.RGBA
}

type Style struct {
	Background   color.RGBA
	PathColor    color.RGBA
	PathWidth    float64
	MarkerRadius float64
}

var (
	DarkStyle = Style{
		Background:   color.RGBA{0x00, 0x00, 0x00, 0xff},
		PathColor:    color.RGBA{0x40, 0x40, 0x40, 0xff},
		PathWidth:    4,
		MarkerRadius: 5,
	}
	LightStyle = Style{
		Background:   color.RGBA{0xff, 0xff, 0xff, 0xff},
		PathColor:    color.RGBA{0x80, 0x80, 0x80, 0xff},
		PathWidth:    2,
		MarkerRadius: 5,
	}
)

// Palette holds the named dashboard colors, cycled by driver index.
var Palette = []color.RGBA{
	{0xff, 0x00, 0x00, 0xff}, // red
	{0x00, 0x00, 0xff, 0xff}, // blue
	{0x00, 0x80, 0x00, 0xff}, // green
	{0xff, 0xa5, 0x00, 0xff}, // orange
	{0x80, 0x00, 0x80, 0xff}, // purple
	{0xff, 0xc0, 0xcb, 0xff}, // pink
	{0xff, 0xff, 0x00, 0xff}, // yellow
	{0x00, 0xff, 0xff, 0xff}, // cyan
}

func PaletteColors(n int) []color.RGBA {
	out := make([]color.RGBA, n)
	for i := range out {
		out[i] = Palette[i%len(Palette)]
	}
	return out
}

// RandomColors returns n opaque colors drawn from r.
func RandomColors(r *rand.Rand) func(n int) []color.RGBA {
	return func(n int) []color.RGBA {
		out := make([]color.RGBA, n)
		for i := range out {
			out[i] = color.RGBA{uint8(r.Intn(256)), uint8(r.Intn(256)), uint8(r.Intn(256)), 0xff}
		}
		return out
	}
}

func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Scene is everything needed to draw an animation: the static lap paths, the
// display bounds and the sequencer producing marker positions.
type Scene struct {
	Tracks    []frames.Track
	Colors    []color.RGBA
	Labels    []string
	Bounds    layout.Bounds
	Sequencer *frames.Sequencer
	Delay     time.Duration
	Style     Style
}

func (s *Scene) Len() int {
	return s.Sequencer.Len()
}

func (s *Scene) Legend() []LegendEntry {
	out := make([]LegendEntry, len(s.Tracks))
	for i := range s.Tracks {
		out[i] = LegendEntry{Label: s.Labels[i], Color: s.Colors[i]}
	}
	return out
}

func (s *Scene) colorOf(driver string) color.RGBA {
	for i, t := range s.Tracks {
		if t.Driver == driver {
			return s.Colors[i]
		}
	}
	return s.Style.PathColor
}

// DrawBackground draws one path per lap per driver and the legend.
func (s *Scene) DrawBackground(c Canvas) {
	for _, t := range s.Tracks {
		for _, lap := range t.Laps {
			c.DrawPath(lap, s.Style.PathColor, s.Style.PathWidth)
		}
	}
	c.SetLegend(s.Legend())
}

// Player draws frames in order. Drivers without an update in a frame keep
// their last drawn position.
type Player struct {
	scene *Scene
	last  map[string]model.Point
}

func NewPlayer(s *Scene) *Player {
	return &Player{scene: s, last: map[string]model.Point{}}
}

func (p *Player) Reset() {
	p.last = map[string]model.Point{}
}

// Positions returns the marker position of every driver seen so far, in
// track order.
func (p *Player) Positions() []frames.Position {
	out := make([]frames.Position, 0, len(p.last))
	for _, t := range p.scene.Tracks {
		if pt, ok := p.last[t.Driver]; ok {
			out = append(out, frames.Position{Driver: t.Driver, Point: pt})
		}
	}
	return out
}

// Apply records the updates of f without drawing.
func (p *Player) Apply(f frames.Frame) {
	for _, pos := range f.Positions {
		p.last[pos.Driver] = pos.Point
	}
}

func (p *Player) Draw(c Canvas, f frames.Frame) {
	p.Apply(f)
	for _, pos := range p.Positions() {
		c.DrawMarker(pos.Point, p.scene.colorOf(pos.Driver), p.scene.Style.MarkerRadius)
	}
}
