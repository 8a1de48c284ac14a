//go:build darwin

package volume

import (
	"fmt"
	"os/exec"
)

type osascriptMixer struct{}

func newSystemMixer() Mixer {
	return osascriptMixer{}
}

// Volume returns the current output volume (0-100) on macOS.
func (osascriptMixer) Volume() (int, error) {
	out, err := exec.Command("osascript", "-e", "output volume of (get volume settings)").Output()
	if err != nil {
		return 0, fmt.Errorf("osascript get volume: %w", err)
	}
	return parseOsascriptVolume(string(out))
}

func (osascriptMixer) SetVolume(percent int) error {
	script := fmt.Sprintf("set volume output volume %d", percent)
	if err := exec.Command("osascript", "-e", script).Run(); err != nil {
		return fmt.Errorf("osascript set volume: %w", err)
	}
	return nil
}
