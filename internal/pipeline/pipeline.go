// Package pipeline runs the brightness comparison: adjust an image, then
// rank colors and chart channel distributions for both the original and the
// adjusted version.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-brightness/internal/chart"
	"github.com/ironsheep/image-brightness/internal/imaging"
)

// MaxConcurrentTasks bounds the post-adjustment fan-out: original palette,
// modified palette, original chart, modified chart.
const MaxConcurrentTasks = 4

// ChartRenderer turns a distribution into an encoded chart image.
type ChartRenderer interface {
	Render(d *imaging.Distribution) ([]byte, error)
}

// Request is one pipeline invocation.
type Request struct {
	// ID is chosen by the caller and echoed on the Result so that artifacts
	// can be stored under request-scoped names.
	ID string

	Image    *imaging.Raster
	Delta    int
	Channels imaging.ChannelSelection
}

// Result bundles every artifact produced for a request. All fields are
// in-memory; persisting them is the caller's job.
type Result struct {
	ID       string
	Delta    int
	Channels imaging.ChannelSelection

	Original *imaging.Raster
	Modified *imaging.Raster

	OriginalColors []imaging.ColorCount
	ModifiedColors []imaging.ColorCount

	OriginalDistribution *imaging.Distribution
	ModifiedDistribution *imaging.Distribution

	// OriginalChart and ModifiedChart are PNG-encoded distribution charts.
	OriginalChart []byte
	ModifiedChart []byte

	Elapsed time.Duration
}

// Processor runs requests. It holds no per-request state and is safe for
// concurrent use.
type Processor struct {
	renderer    ChartRenderer
	paletteSize int
	logger      hclog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithPaletteSize sets how many colors are ranked per image. Values <= 0
// select imaging.DefaultPaletteSize.
func WithPaletteSize(n int) Option {
	return func(p *Processor) {
		p.paletteSize = n
	}
}

// WithLogger sets the logger; the default discards output.
func WithLogger(l hclog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a Processor that draws charts with renderer.
func New(renderer ChartRenderer, opts ...Option) *Processor {
	p := &Processor{
		renderer:    renderer,
		paletteSize: imaging.DefaultPaletteSize,
		logger:      hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.paletteSize <= 0 {
		p.paletteSize = imaging.DefaultPaletteSize
	}
	return p
}

// NewDefault creates a Processor with the default chart geometry.
func NewDefault(opts ...Option) (*Processor, error) {
	r, err := chart.NewRenderer(chart.DefaultOptions())
	if err != nil {
		return nil, err
	}
	return New(r, opts...), nil
}

// WithOptions returns a copy of p with opts applied. p is unchanged.
func (p *Processor) WithOptions(opts ...Option) *Processor {
	cp := *p
	for _, opt := range opts {
		opt(&cp)
	}
	if cp.paletteSize <= 0 {
		cp.paletteSize = imaging.DefaultPaletteSize
	}
	return &cp
}

// PaletteSize returns the configured palette limit.
func (p *Processor) PaletteSize() int {
	return p.paletteSize
}

// Process adjusts req.Image and analyzes both versions.
//
// The adjustment runs first. The four analyses that follow are independent
// and run concurrently, at most MaxConcurrentTasks at a time. The first
// failure cancels the remaining work and is returned; no partial Result is
// produced. Errors carry the imaging error kinds (see imaging.Kind).
func (p *Processor) Process(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	log := p.logger.With("request_id", req.ID)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	modified, err := imaging.Adjust(req.Image, req.Delta, req.Channels)
	if err != nil {
		return nil, fmt.Errorf("adjust brightness: %w", err)
	}
	log.Debug("brightness adjusted", "delta", req.Delta, "channels", req.Channels.Names(),
		"width", modified.Width, "height", modified.Height)

	res := &Result{
		ID:       req.ID,
		Delta:    req.Delta,
		Channels: req.Channels,
		Original: req.Image,
		Modified: modified,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrentTasks)

	g.Go(func() error {
		colors, err := p.rank(gctx, req.Image)
		if err != nil {
			return fmt.Errorf("original palette: %w", err)
		}
		res.OriginalColors = colors
		return nil
	})
	g.Go(func() error {
		colors, err := p.rank(gctx, modified)
		if err != nil {
			return fmt.Errorf("modified palette: %w", err)
		}
		res.ModifiedColors = colors
		return nil
	})
	g.Go(func() error {
		d, png, err := p.chart(gctx, req.Image)
		if err != nil {
			return fmt.Errorf("original distribution: %w", err)
		}
		res.OriginalDistribution, res.OriginalChart = d, png
		return nil
	})
	g.Go(func() error {
		d, png, err := p.chart(gctx, modified)
		if err != nil {
			return fmt.Errorf("modified distribution: %w", err)
		}
		res.ModifiedDistribution, res.ModifiedChart = d, png
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Debug("pipeline failed", "error", err)
		return nil, err
	}

	res.Elapsed = time.Since(start)
	log.Debug("pipeline finished", "elapsed", res.Elapsed,
		"original_colors", len(res.OriginalColors), "modified_colors", len(res.ModifiedColors))
	return res, nil
}

func (p *Processor) rank(ctx context.Context, r *imaging.Raster) ([]imaging.ColorCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return imaging.TopColors(r, p.paletteSize)
}

func (p *Processor) chart(ctx context.Context, r *imaging.Raster) (*imaging.Distribution, []byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	d, err := imaging.Histogram(r)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	png, err := p.renderer.Render(d)
	if err != nil {
		if imaging.Kind(err) == imaging.KindInternal {
			err = fmt.Errorf("%w: %v", imaging.ErrRenderingFailure, err)
		}
		return nil, nil, err
	}
	return d, png, nil
}
