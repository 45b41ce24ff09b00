package imaging

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Raster is a decoded image held as a contiguous, row-major buffer of 8-bit
// channel intensities.
//
// Each pixel occupies Channels consecutive bytes in Pix, ordered red, green,
// blue and, when Channels is 4, alpha. Values are not premultiplied. The
// buffer for pixel (x, y) starts at Pix[(y*Width+x)*Channels].
//
// Rasters are treated as immutable by every operation in this package:
// transforms return a new Raster and never write to their input.
type Raster struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewRaster allocates a zeroed raster. channels must be 3 (RGB) or 4 (RGBA).
func NewRaster(width, height, channels int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image dimensions %dx%d must be positive", ErrInvalidInput, width, height)
	}
	if channels != 3 && channels != 4 {
		return nil, fmt.Errorf("%w: unsupported channel count %d", ErrInvalidInput, channels)
	}
	return &Raster{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}, nil
}

// FromImage converts any decoded image into a Raster.
//
// The image is normalized to non-premultiplied 8-bit RGBA. Opaque sources
// (JPEG, RGB PNG, opaque GIF) become 3-channel rasters so that the alpha
// channel does not take part in palette ranking; anything with transparency
// keeps all four channels.
func FromImage(img image.Image) (*Raster, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidInput)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: image dimensions %dx%d must be positive", ErrInvalidInput, b.Dx(), b.Dy())
	}

	nrgba := imaging.Clone(img)

	channels := 4
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		channels = 3
	}

	r, err := NewRaster(b.Dx(), b.Dy(), channels)
	if err != nil {
		return nil, err
	}

	if channels == 4 {
		for y := 0; y < r.Height; y++ {
			copy(r.Pix[y*r.Stride():(y+1)*r.Stride()], nrgba.Pix[y*nrgba.Stride:y*nrgba.Stride+r.Width*4])
		}
		return r, nil
	}

	for y := 0; y < r.Height; y++ {
		src := nrgba.Pix[y*nrgba.Stride:]
		dst := r.Pix[y*r.Stride():]
		for x := 0; x < r.Width; x++ {
			dst[x*3] = src[x*4]
			dst[x*3+1] = src[x*4+1]
			dst[x*3+2] = src[x*4+2]
		}
	}
	return r, nil
}

// Stride is the number of bytes per row.
func (r *Raster) Stride() int {
	return r.Width * r.Channels
}

// PixelCount returns Width*Height, or 0 for an empty raster.
func (r *Raster) PixelCount() int {
	if r == nil || r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// HasAlpha reports whether the raster carries an alpha channel.
func (r *Raster) HasAlpha() bool {
	return r.Channels == 4
}

// At returns the color of pixel (x, y). Alpha is 255 for 3-channel rasters.
func (r *Raster) At(x, y int) Color {
	i := (y*r.Width + x) * r.Channels
	c := Color{R: r.Pix[i], G: r.Pix[i+1], B: r.Pix[i+2], A: 255}
	if r.Channels == 4 {
		c.A = r.Pix[i+3]
	}
	return c
}

// Clone returns a deep copy of the raster.
func (r *Raster) Clone() *Raster {
	pix := make([]uint8, len(r.Pix))
	copy(pix, r.Pix)
	return &Raster{Width: r.Width, Height: r.Height, Channels: r.Channels, Pix: pix}
}

// Equal reports whether two rasters have the same layout and pixel data.
func (r *Raster) Equal(o *Raster) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.Width == o.Width && r.Height == o.Height && r.Channels == o.Channels && bytes.Equal(r.Pix, o.Pix)
}

// ToImage converts the raster to an *image.NRGBA suitable for encoding.
func (r *Raster) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		src := r.Pix[y*r.Stride():]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < r.Width; x++ {
			si := x * r.Channels
			di := x * 4
			dst[di] = src[si]
			dst[di+1] = src[si+1]
			dst[di+2] = src[si+2]
			if r.Channels == 4 {
				dst[di+3] = src[si+3]
			} else {
				dst[di+3] = 255
			}
		}
	}
	return img
}
