package imaging

import (
	"fmt"
)

// Region is a rectangle in pixel coordinates. X2 and Y2 are exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// RegionNames lists the named regions accepted by NamedRegion.
var RegionNames = []string{
	"top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half", "center",
}

// NamedRegion resolves a named part of a width x height image.
func NamedRegion(name string, width, height int) (Region, error) {
	midX, midY := width/2, height/2

	switch name {
	case "top-left":
		return Region{0, 0, midX, midY}, nil
	case "top-right":
		return Region{midX, 0, width, midY}, nil
	case "bottom-left":
		return Region{0, midY, midX, height}, nil
	case "bottom-right":
		return Region{midX, midY, width, height}, nil
	case "top-half":
		return Region{0, 0, width, midY}, nil
	case "bottom-half":
		return Region{0, midY, width, height}, nil
	case "left-half":
		return Region{0, 0, midX, height}, nil
	case "right-half":
		return Region{midX, 0, width, height}, nil
	case "center":
		// Center 50% of the image
		qW, qH := width/4, height/4
		return Region{qW, qH, width - qW, height - qH}, nil
	default:
		return Region{}, fmt.Errorf("%w: unknown region %q", ErrInvalidInput, name)
	}
}

// Crop returns a new raster holding region g of r with the same channel
// layout. The region must lie inside the image and be non-empty.
func (r *Raster) Crop(g Region) (*Raster, error) {
	if r.PixelCount() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidInput)
	}
	if g.X1 < 0 || g.Y1 < 0 || g.X2 > r.Width || g.Y2 > r.Height {
		return nil, fmt.Errorf("%w: region (%d,%d)-(%d,%d) outside image bounds %dx%d",
			ErrInvalidInput, g.X1, g.Y1, g.X2, g.Y2, r.Width, r.Height)
	}
	if g.X1 >= g.X2 || g.Y1 >= g.Y2 {
		return nil, fmt.Errorf("%w: invalid region: x1 must be < x2, y1 must be < y2", ErrInvalidInput)
	}

	out, err := NewRaster(g.X2-g.X1, g.Y2-g.Y1, r.Channels)
	if err != nil {
		return nil, err
	}
	for y := 0; y < out.Height; y++ {
		src := r.Pix[(g.Y1+y)*r.Stride()+g.X1*r.Channels:]
		copy(out.Pix[y*out.Stride():(y+1)*out.Stride()], src[:out.Stride()])
	}
	return out, nil
}
