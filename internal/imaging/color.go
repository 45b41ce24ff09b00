package imaging

import (
	"encoding/json"
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is one pixel value as an 8-bit channel tuple.
//
// A is 255 for pixels of 3-channel rasters; for 4-channel rasters it is the
// pixel's own (non-premultiplied) alpha and takes part in color identity.
type Color struct {
	R uint8 // Red component (0-255)
	G uint8 // Green component (0-255)
	B uint8 // Blue component (0-255)
	A uint8 // Alpha/opacity component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

func (c Color) key() uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Hex returns the color as "#RRGGBB". Alpha is not included.
func (c Color) Hex() string {
	return strings.ToUpper(c.colorful().Hex())
}

// HSL returns the hue, saturation and lightness of the RGB part of c.
func (c Color) HSL() HSLColor {
	h, s, l := c.colorful().Hsl()
	return HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)}
}

// NRGBA converts c to the standard library color type.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Tuple returns the channel values in raster order, including alpha only
// when channels is 4.
func (c Color) Tuple(channels int) []uint8 {
	if channels == 4 {
		return []uint8{c.R, c.G, c.B, c.A}
	}
	return []uint8{c.R, c.G, c.B}
}

// String formats the color as "(r,g,b)" or "(r,g,b,a)" when translucent.
func (c Color) String() string {
	if c.A != 255 {
		return fmt.Sprintf("(%d,%d,%d,%d)", c.R, c.G, c.B, c.A)
	}
	return fmt.Sprintf("(%d,%d,%d)", c.R, c.G, c.B)
}

type colorJSON struct {
	Hex string   `json:"hex"`
	R   uint8    `json:"r"`
	G   uint8    `json:"g"`
	B   uint8    `json:"b"`
	A   uint8    `json:"a"`
	HSL HSLColor `json:"hsl"`
}

// MarshalJSON emits the channel values together with hex and HSL forms.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(colorJSON{Hex: c.Hex(), R: c.R, G: c.G, B: c.B, A: c.A, HSL: c.HSL()})
}

// UnmarshalJSON reads the channel values written by MarshalJSON.
func (c *Color) UnmarshalJSON(data []byte) error {
	var v colorJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Color{R: v.R, G: v.G, B: v.B, A: v.A}
	return nil
}
