package imaging

import (
	"errors"
	"testing"
)

func TestParseChannel(t *testing.T) {
	tests := []struct {
		in      string
		want    Channel
		wantErr bool
	}{
		{"red", Red, false},
		{"R", Red, false},
		{" green ", Green, false},
		{"b", Blue, false},
		{"0", Red, false},
		{"2", Blue, false},
		{"3", 0, true},
		{"-1", 0, true},
		{"alpha", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseChannel(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrOutOfRangeChannel) {
					t.Errorf("got %v, want ErrOutOfRangeChannel", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseChannels(t *testing.T) {
	sel, err := ParseChannels([]string{"blue", "", "red"})
	if err != nil {
		t.Fatalf("ParseChannels failed: %v", err)
	}
	if len(sel) != 2 || !sel.Contains(Red) || !sel.Contains(Blue) || sel.Contains(Green) {
		t.Errorf("unexpected selection %v", sel)
	}
	if names := sel.Names(); len(names) != 2 || names[0] != "red" || names[1] != "blue" {
		t.Errorf("Names: got %v", names)
	}

	empty, err := ParseChannels(nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("empty input: got %v, %v", empty, err)
	}
}

func TestChannelSelection_Validate(t *testing.T) {
	if err := AllChannels.Validate(); err != nil {
		t.Errorf("AllChannels: %v", err)
	}
	if err := (ChannelSelection{}).Validate(); err != nil {
		t.Errorf("empty: %v", err)
	}
	if err := (ChannelSelection{Green, 3}).Validate(); !errors.Is(err, ErrOutOfRangeChannel) {
		t.Errorf("alpha index: got %v", err)
	}
}

func TestChannel_String(t *testing.T) {
	if Red.String() != "red" || Green.String() != "green" || Blue.String() != "blue" {
		t.Error("unexpected channel names")
	}
	if Channel(7).String() != "channel(7)" {
		t.Errorf("got %s", Channel(7).String())
	}
}
