package imaging

import "errors"

// Error kinds returned by the imaging pipeline. Callers classify failures
// with errors.Is or Kind; the concrete errors wrap one of these with detail.
var (
	// ErrInvalidInput covers decode failures, unsupported extensions,
	// oversized uploads and images with zero width or height.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDegenerateInput is returned when an image with no pixels reaches
	// an operation that would divide by the pixel count.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrOutOfRangeChannel is returned for channel indices outside red, green, blue.
	ErrOutOfRangeChannel = errors.New("channel out of range")

	// ErrRenderingFailure is returned when a chart cannot be drawn or encoded.
	ErrRenderingFailure = errors.New("rendering failure")
)

// ErrorKind names the category of a pipeline error.
type ErrorKind string

const (
	KindNone              ErrorKind = ""
	KindInvalidInput      ErrorKind = "invalid_input"
	KindDegenerateInput   ErrorKind = "degenerate_input"
	KindOutOfRangeChannel ErrorKind = "out_of_range_channel"
	KindRenderingFailure  ErrorKind = "rendering_failure"
	KindInternal          ErrorKind = "internal"
)

// Kind reports which error category err belongs to. A nil error yields
// KindNone; errors outside the taxonomy yield KindInternal.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrDegenerateInput):
		return KindDegenerateInput
	case errors.Is(err, ErrOutOfRangeChannel):
		return KindOutOfRangeChannel
	case errors.Is(err, ErrRenderingFailure):
		return KindRenderingFailure
	default:
		return KindInternal
	}
}
