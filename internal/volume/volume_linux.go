//go:build linux && !cgo

package volume

import (
	"fmt"
	"os/exec"
)

// amixerMixer shells out to amixer when libasound cannot be linked.
type amixerMixer struct {
	element string
}

func newSystemMixer() Mixer {
	return &amixerMixer{element: "Master"}
}

func (m *amixerMixer) Volume() (int, error) {
	out, err := exec.Command("amixer", "get", m.element).Output()
	if err != nil {
		return 0, fmt.Errorf("amixer get %s: %w", m.element, err)
	}
	return parseAmixerPercent(string(out))
}

func (m *amixerMixer) SetVolume(percent int) error {
	arg := fmt.Sprintf("%d%%", percent)
	if err := exec.Command("amixer", "-q", "set", m.element, arg).Run(); err != nil {
		return fmt.Errorf("amixer set %s %s: %w", m.element, arg, err)
	}
	return nil
}
