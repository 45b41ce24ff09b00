package imaging

import (
	"fmt"
	"sync"

	"github.com/anthonynsimon/bild/parallel"
)

// HistogramBins is the number of intensity bins per channel. It is fixed by
// the 8-bit channel depth and not configurable.
const HistogramBins = 256

// ChannelHistogram is the normalized intensity distribution of one channel.
// Index i holds the fraction of pixels whose channel value equals i.
type ChannelHistogram [HistogramBins]float64

// Sum returns the total of all bins (1.0 for any non-degenerate image).
func (h *ChannelHistogram) Sum() float64 {
	var s float64
	for _, v := range h {
		s += v
	}
	return s
}

// Peak returns the intensity with the highest frequency. Ties resolve to the
// lowest intensity.
func (h *ChannelHistogram) Peak() int {
	best := 0
	for i, v := range h {
		if v > h[best] {
			best = i
		}
	}
	return best
}

// Distribution holds the normalized histograms of the red, green and blue
// channels of one image.
type Distribution struct {
	Red   ChannelHistogram `json:"red"`
	Green ChannelHistogram `json:"green"`
	Blue  ChannelHistogram `json:"blue"`
}

// Channel returns the histogram for c, or nil if c is not red, green or blue.
func (d *Distribution) Channel(c Channel) *ChannelHistogram {
	switch c {
	case Red:
		return &d.Red
	case Green:
		return &d.Green
	case Blue:
		return &d.Blue
	default:
		return nil
	}
}

// Histogram computes the normalized per-channel intensity distribution of r.
//
// For each of red, green and blue, pixel values are counted into 256 bins
// and each count is divided by the pixel count, so every channel sums to 1.
// Alpha is ignored.
//
// Rows are counted in parallel bands; each band keeps private counters that
// are merged once at the end.
//
// # Errors
//
//   - ErrDegenerateInput if r is nil or has zero pixels. This is checked
//     before any division, so no NaN bins are ever produced.
func Histogram(r *Raster) (*Distribution, error) {
	total := r.PixelCount()
	if total == 0 {
		return nil, fmt.Errorf("%w: histogram of an image with zero pixels", ErrDegenerateInput)
	}

	var (
		mu     sync.Mutex
		counts [3][HistogramBins]int
	)

	stride := r.Stride()
	ch := r.Channels
	parallel.Line(r.Height, func(start, end int) {
		var local [3][HistogramBins]int
		for y := start; y < end; y++ {
			row := r.Pix[y*stride : (y+1)*stride]
			for i := 0; i < len(row); i += ch {
				local[0][row[i]]++
				local[1][row[i+1]]++
				local[2][row[i+2]]++
			}
		}
		mu.Lock()
		for c := range counts {
			for v, n := range local[c] {
				counts[c][v] += n
			}
		}
		mu.Unlock()
	})

	d := &Distribution{}
	n := float64(total)
	for c := Red; c <= Blue; c++ {
		h := d.Channel(c)
		for v, cnt := range counts[c] {
			h[v] = float64(cnt) / n
		}
	}
	return d, nil
}
