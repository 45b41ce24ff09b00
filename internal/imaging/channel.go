package imaging

import (
	"fmt"
	"strconv"
	"strings"
)

// Channel identifies one color channel of a Raster by its index.
type Channel int

const (
	Red   Channel = 0
	Green Channel = 1
	Blue  Channel = 2
)

// String returns the lowercase channel name.
func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	default:
		return "channel(" + strconv.Itoa(int(c)) + ")"
	}
}

// Valid reports whether c is one of red, green or blue. Alpha is never
// selectable.
func (c Channel) Valid() bool {
	return c >= Red && c <= Blue
}

// ChannelSelection is the set of channels a brightness adjustment applies to.
// An empty selection is valid and leaves the image unchanged.
type ChannelSelection []Channel

// AllChannels selects red, green and blue.
var AllChannels = ChannelSelection{Red, Green, Blue}

// Validate returns ErrOutOfRangeChannel for any index outside red, green, blue.
func (s ChannelSelection) Validate() error {
	for _, c := range s {
		if !c.Valid() {
			return fmt.Errorf("%w: index %d (valid: 0=red, 1=green, 2=blue)", ErrOutOfRangeChannel, int(c))
		}
	}
	return nil
}

// Contains reports whether c is selected.
func (s ChannelSelection) Contains(c Channel) bool {
	for _, sc := range s {
		if sc == c {
			return true
		}
	}
	return false
}

// mask returns a per-channel flag array; duplicates collapse.
func (s ChannelSelection) mask() [3]bool {
	var m [3]bool
	for _, c := range s {
		if c.Valid() {
			m[c] = true
		}
	}
	return m
}

// Names returns the selected channel names in red, green, blue order.
func (s ChannelSelection) Names() []string {
	m := s.mask()
	names := make([]string, 0, 3)
	for i, on := range m {
		if on {
			names = append(names, Channel(i).String())
		}
	}
	return names
}

// ParseChannel accepts a channel name ("red", "r", ...) or index ("0").
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red", "r":
		return Red, nil
	case "green", "g":
		return Green, nil
	case "blue", "b":
		return Blue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: unknown channel %q", ErrOutOfRangeChannel, s)
	}
	c := Channel(n)
	if !c.Valid() {
		return 0, fmt.Errorf("%w: index %d (valid: 0=red, 1=green, 2=blue)", ErrOutOfRangeChannel, n)
	}
	return c, nil
}

// ParseChannels parses a list of channel names or indices. Empty entries are
// skipped so that "red,,blue" and "" both parse.
func ParseChannels(values []string) (ChannelSelection, error) {
	sel := make(ChannelSelection, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		c, err := ParseChannel(v)
		if err != nil {
			return nil, err
		}
		sel = append(sel, c)
	}
	return sel, nil
}
