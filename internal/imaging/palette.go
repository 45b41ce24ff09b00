package imaging

import (
	"fmt"
	"sort"
)

// DefaultPaletteSize is the number of colors TopColors returns when no
// positive limit is given.
const DefaultPaletteSize = 10

// ColorCount is one entry of a color frequency table.
type ColorCount struct {
	Count int   `json:"count"`
	Color Color `json:"color"`
}

// CountColors returns the exact number of occurrences of every distinct
// pixel color in r, in order of first appearance (row-major scan).
//
// Colors are compared on all channels, including alpha when present. No
// quantization is applied, so an image with mostly unique colors produces a
// table nearly as large as its pixel count.
//
// The counts always sum to r.PixelCount().
func CountColors(r *Raster) ([]ColorCount, error) {
	if r.PixelCount() == 0 {
		return nil, fmt.Errorf("%w: cannot count colors of an empty image", ErrInvalidInput)
	}

	index := make(map[uint32]int)
	table := make([]ColorCount, 0, 64)

	ch := r.Channels
	for i := 0; i+ch <= len(r.Pix); i += ch {
		c := Color{R: r.Pix[i], G: r.Pix[i+1], B: r.Pix[i+2], A: 255}
		if ch == 4 {
			c.A = r.Pix[i+3]
		}
		key := c.key()
		if idx, ok := index[key]; ok {
			table[idx].Count++
			continue
		}
		index[key] = len(table)
		table = append(table, ColorCount{Count: 1, Color: c})
	}
	return table, nil
}

// TopColors returns the limit most frequent colors of r, sorted by count
// descending. Colors with equal counts keep their first-appearance order.
// A limit <= 0 means DefaultPaletteSize. If r has fewer distinct colors than
// limit, all of them are returned.
func TopColors(r *Raster, limit int) ([]ColorCount, error) {
	table, err := CountColors(r)
	if err != nil {
		return nil, err
	}
	return RankColors(table, limit), nil
}

// RankColors stable-sorts a frequency table by count descending and returns
// at most limit entries in a fresh slice. The input slice is reordered in
// place.
func RankColors(table []ColorCount, limit int) []ColorCount {
	if limit <= 0 {
		limit = DefaultPaletteSize
	}
	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Count > table[j].Count
	})
	n := min(limit, len(table))
	ranked := make([]ColorCount, n)
	copy(ranked, table[:n])
	return ranked
}
