//go:build !linux && !darwin && !windows

package volume

type unsupportedMixer struct{}

func newSystemMixer() Mixer {
	return unsupportedMixer{}
}

func (unsupportedMixer) Volume() (int, error) {
	return 0, ErrUnsupported
}

func (unsupportedMixer) SetVolume(int) error {
	return ErrUnsupported
}
