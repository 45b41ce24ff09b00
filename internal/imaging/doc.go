// Package imaging provides the numeric core of the brightness tool: decoding
// images into contiguous rasters, channel-selective brightness adjustment,
// per-channel histograms and exact color frequency ranking.
//
// All operations work on *Raster, a row-major buffer of 8-bit channel
// intensities in red, green, blue[, alpha] order. Pixel (0,0) is the
// top-left corner.
//
// # Immutability
//
// No function in this package writes to a Raster it receives. Adjust returns
// a fresh raster even when the adjustment is a no-op, which makes a decoded
// image safe to share between goroutines.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Adjust, Histogram,
// CountColors and TopColors are stateless; Adjust and Histogram split their
// work across goroutines internally.
//
// # Color Representation
//
// Colors are exposed as Color tuples and formatted as:
//   - Hex: "#RRGGBB" (alpha excluded)
//   - HSL: Hue (0-360), Saturation (0-100), Lightness (0-100)
//
// # Error Handling
//
// Failures wrap one of four sentinel errors so callers can map them to user
// facing responses:
//   - ErrInvalidInput: undecodable, oversized, unsupported or empty images
//   - ErrDegenerateInput: a zero-pixel raster reaching Histogram
//   - ErrOutOfRangeChannel: a channel index other than 0, 1 or 2
//   - ErrRenderingFailure: chart drawing or encoding failed (raised by the
//     chart package)
//
// # Performance Considerations
//
// CountColors enumerates exact colors with no binning. Photographs with a
// near-unique color per pixel produce a table close to width*height entries.
package imaging
