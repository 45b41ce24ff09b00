package imaging

import (
	"errors"
	"fmt"
	"testing"
)

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, KindNone},
		{fmt.Errorf("decode: %w", ErrInvalidInput), KindInvalidInput},
		{fmt.Errorf("hist: %w", ErrDegenerateInput), KindDegenerateInput},
		{fmt.Errorf("adjust: %w", ErrOutOfRangeChannel), KindOutOfRangeChannel},
		{fmt.Errorf("chart: %w", ErrRenderingFailure), KindRenderingFailure},
		{errors.New("disk full"), KindInternal},
	}
	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v): got %q, want %q", tt.err, got, tt.want)
		}
	}
}
