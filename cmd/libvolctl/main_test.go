package main

import (
	"sync"
	"testing"

	"github.com/vmorsell/volctl/internal/volume"
	"go.uber.org/zap"
)

type memMixer struct {
	mu     sync.Mutex
	vol    int
	writes int
	err    error
}

func (m *memMixer) Volume() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vol, m.err
}

func (m *memMixer) SetVolume(v int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.vol = v
	m.writes++
	return nil
}

func useMixer(t *testing.T, m volume.Mixer) {
	t.Helper()
	ctrlOnce = sync.Once{}
	newController = func(l *zap.Logger) *volume.Controller {
		return volume.NewController(l, volume.WithMixer(m))
	}
	t.Cleanup(func() {
		ctrlOnce = sync.Once{}
		newController = func(l *zap.Logger) *volume.Controller {
			return volume.NewController(l)
		}
	})
}

func TestSetThenGet(t *testing.T) {
	useMixer(t, &memMixer{})

	for _, v := range []int{0, 50, 100} {
		setVolume(v)
		if got := getVolume(); got != v {
			t.Errorf("setVolume(%d) then getVolume() = %d", v, got)
		}
	}
}

func TestSetVolumeClamps(t *testing.T) {
	useMixer(t, &memMixer{vol: 30})

	setVolume(150)
	if got := getVolume(); got != volume.MaxVolume {
		t.Errorf("expected clamp to %d, got %d", volume.MaxVolume, got)
	}
	setVolume(-20)
	if got := getVolume(); got != volume.MinVolume {
		t.Errorf("expected clamp to %d, got %d", volume.MinVolume, got)
	}
}

func TestGetVolumeError(t *testing.T) {
	mixer := &memMixer{vol: 30, err: volume.ErrElementNotFound}
	useMixer(t, mixer)

	if got := getVolume(); got != errorVolume {
		t.Errorf("expected %d on failure, got %d", errorVolume, got)
	}

	setVolume(10)
	if mixer.writes != 0 || mixer.vol != 30 {
		t.Errorf("failed set changed the mixer: vol=%d writes=%d", mixer.vol, mixer.writes)
	}
}
