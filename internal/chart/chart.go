// Package chart renders per-channel color distributions as PNG line charts.
package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/ironsheep/image-brightness/internal/imaging"
)

// Chart labels.
const (
	Title  = "Color Distribution"
	XLabel = "Pixel Value"
	YLabel = "Normalized Frequency"
)

// Options controls the fixed figure geometry.
type Options struct {
	// WidthInches and HeightInches give the figure size.
	WidthInches  float64 `yaml:"width_in"`
	HeightInches float64 `yaml:"height_in"`

	// DPI converts inches to pixels. The default 6x4 inches at 100 DPI
	// produces a 600x400 image.
	DPI int `yaml:"dpi"`

	// LineWidth is the stroke width of each series in points.
	LineWidth float64 `yaml:"line_width"`
}

// DefaultOptions returns a 6x4 inch figure at 100 DPI.
func DefaultOptions() Options {
	return Options{
		WidthInches:  6,
		HeightInches: 4,
		DPI:          100,
		LineWidth:    1.5,
	}
}

// PixelSize returns the output image dimensions in pixels.
func (o Options) PixelSize() (int, int) {
	return int(o.WidthInches * float64(o.DPI)), int(o.HeightInches * float64(o.DPI))
}

// Validate rejects non-positive sizes.
func (o Options) Validate() error {
	if o.WidthInches <= 0 || o.HeightInches <= 0 {
		return fmt.Errorf("chart size %gx%g inches must be positive", o.WidthInches, o.HeightInches)
	}
	if o.DPI <= 0 {
		return fmt.Errorf("chart dpi %d must be positive", o.DPI)
	}
	if o.LineWidth <= 0 {
		return fmt.Errorf("chart line width %g must be positive", o.LineWidth)
	}
	return nil
}

type series struct {
	name    string
	channel imaging.Channel
	color   color.Color
}

var channelSeries = []series{
	{"Red", imaging.Red, color.RGBA{R: 255, A: 255}},
	{"Green", imaging.Green, color.RGBA{G: 128, A: 255}},
	{"Blue", imaging.Blue, color.RGBA{B: 255, A: 255}},
}

// Renderer draws distribution charts with a fixed geometry. A Renderer is
// stateless after construction and safe for concurrent use.
type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer. Zero-valued fields of opts fall back to
// DefaultOptions.
func NewRenderer(opts Options) (*Renderer, error) {
	def := DefaultOptions()
	if opts.WidthInches == 0 {
		opts.WidthInches = def.WidthInches
	}
	if opts.HeightInches == 0 {
		opts.HeightInches = def.HeightInches
	}
	if opts.DPI == 0 {
		opts.DPI = def.DPI
	}
	if opts.LineWidth == 0 {
		opts.LineWidth = def.LineWidth
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{opts: opts}, nil
}

// Options returns the effective options.
func (r *Renderer) Options() Options {
	return r.opts
}

// Render draws the three channel histograms of d as overlaid line series and
// returns the chart encoded as PNG.
func (r *Renderer) Render(d *imaging.Distribution) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.RenderTo(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderTo is like Render but streams the PNG to w.
//
// Any failure, including a write error on w, is reported wrapped in
// imaging.ErrRenderingFailure. Nothing is written when the plot cannot be
// built.
func (r *Renderer) RenderTo(w io.Writer, d *imaging.Distribution) error {
	if d == nil {
		return fmt.Errorf("%w: no distribution to plot", imaging.ErrRenderingFailure)
	}

	p, err := r.build(d)
	if err != nil {
		return fmt.Errorf("%w: %v", imaging.ErrRenderingFailure, err)
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(r.opts.WidthInches)*vg.Inch, vg.Length(r.opts.HeightInches)*vg.Inch),
		vgimg.UseDPI(r.opts.DPI),
	)
	p.Draw(draw.New(c))

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("%w: failed to encode chart: %v", imaging.ErrRenderingFailure, err)
	}
	return nil
}

func (r *Renderer) build(d *imaging.Distribution) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = Title
	p.X.Label.Text = XLabel
	p.Y.Label.Text = YLabel
	p.X.Min = 0
	p.X.Max = imaging.HistogramBins - 1
	p.Y.Min = 0
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for _, s := range channelSeries {
		h := d.Channel(s.channel)
		pts := make(plotter.XYs, imaging.HistogramBins)
		for i, v := range h {
			pts[i].X = float64(i)
			pts[i].Y = v
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("%s series: %w", s.name, err)
		}
		line.LineStyle.Color = s.color
		line.LineStyle.Width = vg.Points(r.opts.LineWidth)

		p.Add(line)
		p.Legend.Add(s.name, line)
	}
	return p, nil
}
