package render

import (
	"encoding/xml"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/llgcode/draw2d"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"github.com/llgcode/draw2d/draw2dsvg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"f1trackrenderer/pkg/layout"
	"f1trackrenderer/pkg/model"
)

// viewport maps display coordinates into pixels with a uniform scale, the
// bounds centered and the Y axis pointing up.
type viewport struct {
	b      layout.Bounds
	scale  float64
	offX   float64
	offY   float64
	height float64
}

func newViewport(b layout.Bounds, width, height float64) viewport {
	bw, bh := b.Width(), b.Height()
	if bw <= 0 {
		bw = 1
	}
	if bh <= 0 {
		bh = 1
	}
	scale := math.Min(width/bw, height/bh)
	return viewport{
		b:      b,
		scale:  scale,
		offX:   (width - bw*scale) / 2,
		offY:   (height - bh*scale) / 2,
		height: height,
	}
}

func (v viewport) project(p model.Point) (float64, float64) {
	x := v.offX + (p.X-v.b.MinX)*v.scale
	y := v.height - (v.offY + (p.Y-v.b.MinY)*v.scale)
	return x, y
}

func strokePath(gc draw2d.GraphicContext, vp viewport, points []model.Point, c color.Color, width float64) {
	if len(points) < 2 {
		return
	}
	gc.Save()
	defer gc.Restore()
	gc.BeginPath()
	gc.SetStrokeColor(c)
	gc.SetLineWidth(width)
	for i, p := range points {
		x, y := vp.project(p)
		if i == 0 {
			gc.MoveTo(x, y)
		} else {
			gc.LineTo(x, y)
		}
	}
	gc.Stroke()
}

func fillCircle(gc draw2d.GraphicContext, vp viewport, p model.Point, c color.Color, radius float64) {
	gc.Save()
	defer gc.Restore()
	x, y := vp.project(p)
	gc.BeginPath()
	gc.SetFillColor(c)
	draw2dkit.Circle(gc, x, y, radius)
	gc.Fill()
}

// ImageCanvas draws into an RGBA image.
type ImageCanvas struct {
	img *image.RGBA
	gc  *draw2dimg.GraphicContext
	vp  viewport
	bg  color.RGBA
}

func NewImageCanvas(width, height int, b layout.Bounds, bg color.RGBA) *ImageCanvas {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	return &ImageCanvas{
		img: img,
		gc:  draw2dimg.NewGraphicContext(img),
		vp:  newViewport(b, float64(width), float64(height)),
		bg:  bg,
	}
}

func (c *ImageCanvas) Image() *image.RGBA {
	return c.img
}

// Pixel returns the pixel position of a display point.
func (c *ImageCanvas) Pixel(p model.Point) image.Point {
	x, y := c.vp.project(p)
	return image.Pt(int(math.Round(x)), int(math.Round(y)))
}

// CopyFrom overwrites the pixels of c with those of other. Both canvases must
// have the same size.
func (c *ImageCanvas) CopyFrom(other *ImageCanvas) {
	copy(c.img.Pix, other.img.Pix)
}

func (c *ImageCanvas) DrawPath(points []model.Point, col color.Color, width float64) {
	strokePath(c.gc, c.vp, points, col, width)
}

func (c *ImageCanvas) DrawMarker(p model.Point, col color.Color, radius float64) {
	fillCircle(c.gc, c.vp, p, col, radius)
}

// SetLegend draws one row of color swatches and labels centered at the top.
func (c *ImageCanvas) SetLegend(entries []LegendEntry) {
	const (
		swatch  = 10
		gap     = 4
		spacing = 16
		top     = 8
	)
	face := basicfont.Face7x13
	advance := face.Advance

	total := 0
	for _, e := range entries {
		total += swatch + gap + len(e.Label)*advance + spacing
	}
	total -= spacing
	x := (c.img.Bounds().Dx() - total) / 2
	if x < 0 {
		x = 0
	}

	dr := &font.Drawer{Dst: c.img, Src: image.NewUniform(textColor(c.bg)), Face: face}
	for _, e := range entries {
		draw.Draw(c.img, image.Rect(x, top+1, x+swatch, top+1+swatch), image.NewUniform(e.Color), image.Point{}, draw.Over)
		x += swatch + gap
		dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(top + face.Ascent)}
		dr.DrawString(e.Label)
		x += len(e.Label)*advance + spacing
	}
}

func (c *ImageCanvas) SavePNG(path string) error {
	return draw2dimg.SaveToPngFile(path, c.img)
}

func textColor(bg color.RGBA) color.RGBA {
	lum := 0.299*float64(bg.R) + 0.587*float64(bg.G) + 0.114*float64(bg.B)
	if lum < 128 {
		return color.RGBA{0xff, 0xff, 0xff, 0xff}
	}
	return color.RGBA{0x00, 0x00, 0x00, 0xff}
}

// SVGCanvas collects vector paths. The legend is kept for the caller to
// render next to the drawing.
type SVGCanvas struct {
	svg    *draw2dsvg.Svg
	gc     *draw2dsvg.GraphicContext
	vp     viewport
	legend []LegendEntry
}

func NewSVGCanvas(width, height int, b layout.Bounds) *SVGCanvas {
	svg := draw2dsvg.NewSvg()
	return &SVGCanvas{
		svg: svg,
		gc:  draw2dsvg.NewGraphicContext(svg),
		vp:  newViewport(b, float64(width), float64(height)),
	}
}

func (c *SVGCanvas) DrawPath(points []model.Point, col color.Color, width float64) {
	strokePath(c.gc, c.vp, points, col, width)
}

func (c *SVGCanvas) DrawMarker(p model.Point, col color.Color, radius float64) {
	fillCircle(c.gc, c.vp, p, col, radius)
}

func (c *SVGCanvas) SetLegend(entries []LegendEntry) {
	c.legend = entries
}

func (c *SVGCanvas) Legend() []LegendEntry {
	return c.legend
}

// Project returns the SVG user space position of a display point.
func (c *SVGCanvas) Project(p model.Point) model.Point {
	x, y := c.vp.project(p)
	return model.Point{X: x, Y: y}
}

func (c *SVGCanvas) Encode(w io.Writer) error {
	return xml.NewEncoder(w).Encode(c.svg)
}

func (c *SVGCanvas) Save(path string) error {
	return draw2dsvg.SaveToSvgFile(path, c.svg)
}
