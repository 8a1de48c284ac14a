package volume

import "sync"

// alsaModelMixer stores a raw element value and converts it the way the
// ALSA backend does.
type alsaModelMixer struct {
	mu       sync.Mutex
	min, max int64
	raw      int64
	reads    int
	writes   int
	err      error
}

func (m *alsaModelMixer) Volume() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.err != nil {
		return 0, m.err
	}
	return alsaPercent(m.raw, m.max), nil
}

func (m *alsaModelMixer) SetVolume(percent int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.err != nil {
		return m.err
	}
	m.raw = alsaRaw(percent, m.min, m.max)
	return nil
}

func (m *alsaModelMixer) setRaw(raw int64) {
	m.mu.Lock()
	m.raw = raw
	m.mu.Unlock()
}

func (m *alsaModelMixer) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// scalarModelMixer stores a Core Audio style scalar.
type scalarModelMixer struct {
	mu     sync.Mutex
	scalar float32
}

func (m *scalarModelMixer) Volume() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return scalarPercent(m.scalar), nil
}

func (m *scalarModelMixer) SetVolume(percent int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scalar = percentScalar(percent)
	return nil
}
