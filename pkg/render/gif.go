package render

import (
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"time"
)

const gifDelayUnit = 10 * time.Millisecond

// GIFWriter encodes a scene as an animated GIF. The first frame carries the
// full background; later frames only repaint the area around the markers.
type GIFWriter struct {
	Width  int
	Height int
	// Progress is called after every encoded frame when set.
	Progress func(done, total int)
}

func (gw GIFWriter) Write(w io.Writer, s *Scene) error {
	bg := NewImageCanvas(gw.Width, gw.Height, s.Bounds, s.Style.Background)
	s.DrawBackground(bg)
	work := NewImageCanvas(gw.Width, gw.Height, s.Bounds, s.Style.Background)

	pal := gifPalette(s)
	delay := int(s.Delay / gifDelayUnit)
	if delay < 1 {
		delay = 1
	}
	margin := int(s.Style.MarkerRadius) + 2

	anim := &gif.GIF{}
	player := NewPlayer(s)
	prev := []image.Point{}
	cur := s.Sequencer.Iter()
	total := s.Len()
	for f, ok := cur.Next(); ok; f, ok = cur.Next() {
		work.CopyFrom(bg)
		player.Draw(work, f)

		now := make([]image.Point, 0, len(f.Positions))
		for _, pos := range player.Positions() {
			now = append(now, work.Pixel(pos.Point))
		}
		rect := work.Image().Bounds()
		if len(anim.Image) > 0 {
			rect = dirtyRect(append(prev, now...), margin).Intersect(rect)
			if rect.Empty() {
				rect = image.Rect(0, 0, 1, 1)
			}
		}
		prev = now

		frame := image.NewPaletted(rect, pal)
		draw.Draw(frame, rect, work.Image(), rect.Min, draw.Src)
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
		anim.Disposal = append(anim.Disposal, gif.DisposalNone)
		if gw.Progress != nil {
			gw.Progress(len(anim.Image), total)
		}
	}
	if len(anim.Image) == 0 {
		frame := image.NewPaletted(bg.Image().Bounds(), pal)
		draw.Draw(frame, frame.Rect, bg.Image(), image.Point{}, draw.Src)
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
		anim.Disposal = append(anim.Disposal, gif.DisposalNone)
	}
	anim.Config = image.Config{ColorModel: color.Palette(pal), Width: gw.Width, Height: gw.Height}
	return gif.EncodeAll(w, anim)
}

func dirtyRect(points []image.Point, margin int) image.Rectangle {
	r := image.Rectangle{}
	for i, p := range points {
		pr := image.Rect(p.X-margin, p.Y-margin, p.X+margin+1, p.Y+margin+1)
		if i == 0 {
			r = pr
			continue
		}
		r = r.Union(pr)
	}
	return r
}

// gifPalette puts the scene colors first and fills up with web safe colors.
func gifPalette(s *Scene) color.Palette {
	pal := color.Palette{s.Style.Background, s.Style.PathColor, textColor(s.Style.Background)}
	for _, c := range s.Colors {
		if len(pal) == 256 {
			return pal
		}
		pal = append(pal, c)
	}
	for _, c := range palette.WebSafe {
		if len(pal) == 256 {
			break
		}
		pal = append(pal, c)
	}
	return pal
}
