package imaging

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestFromImage_Opaque(t *testing.T) {
	r, err := FromImage(createPatternImage(10, 10))
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if r.Channels != 3 {
		t.Errorf("Channels: got %d, want 3", r.Channels)
	}
	if r.Width != 10 || r.Height != 10 {
		t.Errorf("dimensions: got %dx%d, want 10x10", r.Width, r.Height)
	}

	checks := []struct {
		x, y int
		want Color
	}{
		{0, 0, Color{255, 0, 0, 255}},
		{9, 0, Color{0, 255, 0, 255}},
		{0, 9, Color{0, 0, 255, 255}},
		{9, 9, Color{255, 255, 255, 255}},
	}
	for _, c := range checks {
		if got := r.At(c.x, c.y); got != c.want {
			t.Errorf("At(%d,%d): got %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestFromImage_KeepsAlphaUnpremultiplied(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{200, 100, 50, 128})
	img.SetNRGBA(1, 0, color.NRGBA{1, 2, 3, 255})

	r, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if r.Channels != 4 {
		t.Fatalf("Channels: got %d, want 4", r.Channels)
	}
	if got := r.At(0, 0); got != (Color{200, 100, 50, 128}) {
		t.Errorf("At(0,0): got %v", got)
	}
}

func TestFromImage_OffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 5, 8, 7))
	img.Set(5, 5, color.RGBA{9, 8, 7, 255})

	r, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if r.Width != 3 || r.Height != 2 {
		t.Errorf("dimensions: got %dx%d, want 3x2", r.Width, r.Height)
	}
	if got := r.At(0, 0); got != (Color{9, 8, 7, 255}) {
		t.Errorf("At(0,0): got %v", got)
	}
}

func TestFromImage_Invalid(t *testing.T) {
	if _, err := FromImage(nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("nil image: got %v", err)
	}
	empty := image.NewRGBA(image.Rect(0, 0, 0, 10))
	if _, err := FromImage(empty); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero width: got %v", err)
	}
}

func TestNewRaster_Invalid(t *testing.T) {
	tests := []struct {
		name           string
		w, h, channels int
	}{
		{"zero width", 0, 1, 3},
		{"negative height", 1, -1, 3},
		{"two channels", 1, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRaster(tt.w, tt.h, tt.channels); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("got %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestRaster_ToImageRoundTrip(t *testing.T) {
	src := randomRaster(t, 9, 4, 4, 11)
	back, err := FromImage(src.ToImage())
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	// Random alpha makes the image non-opaque, so layout is preserved.
	if !back.Equal(src) {
		t.Error("round trip through image.NRGBA changed pixel data")
	}

	opaque := randomRaster(t, 5, 5, 3, 12)
	img := opaque.ToImage()
	if !img.Opaque() {
		t.Error("3-channel raster should convert to an opaque image")
	}
}

func TestRaster_CloneIsDeep(t *testing.T) {
	src := randomRaster(t, 4, 4, 3, 5)
	c := src.Clone()
	c.Pix[0]++
	if src.Pix[0] == c.Pix[0] {
		t.Error("Clone shares pixel storage")
	}
}

func TestRaster_PixelCount(t *testing.T) {
	var nilRaster *Raster
	if nilRaster.PixelCount() != 0 {
		t.Error("nil raster should have zero pixels")
	}
	r := randomRaster(t, 6, 7, 3, 1)
	if r.PixelCount() != 42 {
		t.Errorf("got %d, want 42", r.PixelCount())
	}
}
