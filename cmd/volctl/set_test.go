package main

import (
	"errors"
	"testing"

	"github.com/vmorsell/volctl/internal/volume"
)

func TestParsePercent(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"40", 40, false},
		{"40%", 40, false},
		{" 7 ", 7, false},
		{"-3", -3, false},
		{"loud", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePercent(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePercent(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parsePercent(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetCommand(t *testing.T) {
	mixer := &memMixer{vol: 10}
	out, err := execute(t, mixer, "set", "65%")
	if err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if out != "65%\n" {
		t.Errorf("set printed %q, want %q", out, "65%\n")
	}
	if mixer.vol != 65 {
		t.Errorf("mixer volume = %d, want 65", mixer.vol)
	}
}

func TestSetCommand_OutOfRange(t *testing.T) {
	mixer := &memMixer{vol: 10}
	_, err := execute(t, mixer, "set", "150")
	if !errors.Is(err, volume.ErrOutOfRange) {
		t.Fatalf("set 150 error = %v, want ErrOutOfRange", err)
	}
	if mixer.writes != 0 || mixer.vol != 10 {
		t.Errorf("rejected value reached the mixer: vol=%d writes=%d", mixer.vol, mixer.writes)
	}
}

func TestSetCommand_Clamp(t *testing.T) {
	mixer := &memMixer{vol: 10}
	out, err := execute(t, mixer, "set", "--clamp", "150")
	if err != nil {
		t.Fatalf("set --clamp failed: %v", err)
	}
	if out != "100%\n" {
		t.Errorf("set --clamp printed %q, want %q", out, "100%\n")
	}
	if mixer.vol != volume.MaxVolume {
		t.Errorf("mixer volume = %d, want %d", mixer.vol, volume.MaxVolume)
	}
}
