package chart

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"math"
	"testing"

	"github.com/ironsheep/image-brightness/internal/imaging"
)

// spikeDistribution puts all mass of each channel in a single bin.
func spikeDistribution(r, g, b int) *imaging.Distribution {
	d := &imaging.Distribution{}
	d.Red[r] = 1
	d.Green[g] = 1
	d.Blue[b] = 1
	return d
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRender_ProducesPNGOfFixedSize(t *testing.T) {
	r, err := NewRenderer(Options{})
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	data, err := r.Render(spikeDistribution(10, 128, 250))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}

	wantW, wantH := r.Options().PixelSize()
	if b := img.Bounds(); b.Dx() != wantW || b.Dy() != wantH {
		t.Errorf("size: got %dx%d, want %dx%d", b.Dx(), b.Dy(), wantW, wantH)
	}
	if wantW != 600 || wantH != 400 {
		t.Errorf("default size: got %dx%d, want 600x400", wantW, wantH)
	}
}

func TestRender_DrawsChannelColors(t *testing.T) {
	r, _ := NewRenderer(DefaultOptions())
	data, err := r.Render(spikeDistribution(40, 128, 220))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png decode: %v", err)
	}

	var sawRed, sawGreen, sawBlue bool
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			r8, g8, b8 := cr>>8, cg>>8, cb>>8
			switch {
			case r8 > 200 && g8 < 60 && b8 < 60:
				sawRed = true
			case g8 > 100 && r8 < 60 && b8 < 60:
				sawGreen = true
			case b8 > 200 && r8 < 60 && g8 < 60:
				sawBlue = true
			}
		}
	}
	if !sawRed || !sawGreen || !sawBlue {
		t.Errorf("series colors present: red=%v green=%v blue=%v", sawRed, sawGreen, sawBlue)
	}
}

func TestRender_Deterministic(t *testing.T) {
	r, _ := NewRenderer(DefaultOptions())
	d := spikeDistribution(1, 2, 3)
	d.Red[200] = 0.5
	d.Red[1] = 0.5

	a, err := r.Render(d)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	b, err := r.Render(d)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("identical input produced different PNG bytes")
	}
}

func TestRender_CustomSize(t *testing.T) {
	r, err := NewRenderer(Options{WidthInches: 3, HeightInches: 2, DPI: 50})
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	data, err := r.Render(spikeDistribution(0, 0, 0))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png decode: %v", err)
	}
	if cfg.Width != 150 || cfg.Height != 100 {
		t.Errorf("size: got %dx%d, want 150x100", cfg.Width, cfg.Height)
	}
}

func TestRender_Failures(t *testing.T) {
	r, _ := NewRenderer(DefaultOptions())

	if _, err := r.Render(nil); !errors.Is(err, imaging.ErrRenderingFailure) {
		t.Errorf("nil distribution: got %v, want ErrRenderingFailure", err)
	}

	bad := spikeDistribution(0, 0, 0)
	bad.Green[7] = math.NaN()
	if _, err := r.Render(bad); !errors.Is(err, imaging.ErrRenderingFailure) {
		t.Errorf("NaN bin: got %v, want ErrRenderingFailure", err)
	}

	if err := r.RenderTo(failingWriter{}, spikeDistribution(0, 0, 0)); !errors.Is(err, imaging.ErrRenderingFailure) {
		t.Errorf("write failure: got %v, want ErrRenderingFailure", err)
	}
}

func TestNewRenderer_InvalidOptions(t *testing.T) {
	tests := []Options{
		{WidthInches: -1},
		{DPI: -5},
		{LineWidth: -1},
	}
	for _, o := range tests {
		if _, err := NewRenderer(o); err == nil {
			t.Errorf("NewRenderer(%+v) should fail", o)
		}
	}
}

func TestRender_FromHistogram(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 13)
	}
	raster, err := imaging.FromImage(src)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	d, err := imaging.Histogram(raster)
	if err != nil {
		t.Fatalf("Histogram failed: %v", err)
	}
	r, _ := NewRenderer(DefaultOptions())
	if _, err := r.Render(d); err != nil {
		t.Errorf("Render failed: %v", err)
	}
}
