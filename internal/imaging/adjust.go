package imaging

import (
	"fmt"

	"github.com/anthonynsimon/bild/parallel"
)

// Adjust applies a signed brightness offset to the selected channels of src
// and returns the result as a new Raster.
//
// Every selected channel value becomes clamp(v+delta, 0, 255); the sum is
// computed in int so large deltas saturate instead of wrapping. Unselected
// channels and alpha are copied bit for bit. src is never modified, and the
// returned raster never shares its buffer, even when the selection is empty
// or delta is zero.
//
// # Errors
//
//   - ErrInvalidInput if src is nil or has no pixels
//   - ErrOutOfRangeChannel if the selection names a channel other than red,
//     green or blue
func Adjust(src *Raster, delta int, channels ChannelSelection) (*Raster, error) {
	if src.PixelCount() == 0 {
		return nil, fmt.Errorf("%w: cannot adjust an empty image", ErrInvalidInput)
	}
	if err := channels.Validate(); err != nil {
		return nil, err
	}

	dst := src.Clone()
	mask := channels.mask()
	if delta == 0 || mask == [3]bool{} {
		return dst, nil
	}

	// Any |delta| >= 255 saturates every value, so bound it before adding.
	d := max(-255, min(delta, 255))
	var lut [256]uint8
	for v := range lut {
		lut[v] = clampByte(v + d)
	}

	stride := src.Stride()
	ch := src.Channels
	parallel.Line(src.Height, func(start, end int) {
		for y := start; y < end; y++ {
			row := dst.Pix[y*stride : (y+1)*stride]
			for i := 0; i < len(row); i += ch {
				if mask[0] {
					row[i] = lut[row[i]]
				}
				if mask[1] {
					row[i+1] = lut[row[i+1]]
				}
				if mask[2] {
					row[i+2] = lut[row[i+2]]
				}
			}
		}
	})

	return dst, nil
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
