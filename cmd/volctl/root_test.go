package main

import (
	"bytes"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/vmorsell/volctl/internal/volume"
	"go.uber.org/zap"
)

type memMixer struct {
	mu     sync.Mutex
	vol    int
	writes int
}

func (m *memMixer) Volume() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vol, nil
}

func (m *memMixer) SetVolume(v int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vol = v
	m.writes++
	return nil
}

// execute runs the root command against m and returns what it printed.
func execute(t *testing.T, m volume.Mixer, args ...string) (string, error) {
	t.Helper()
	prev := newController
	newController = func(l *zap.Logger) *volume.Controller {
		return volume.NewController(l, volume.WithMixer(m))
	}
	setOpts.clamp = false
	t.Cleanup(func() {
		newController = prev
		setOpts.clamp = false
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.toml")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestGetCommand(t *testing.T) {
	out, err := execute(t, &memMixer{vol: 42}, "get")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if out != "42%\n" {
		t.Errorf("get printed %q, want %q", out, "42%\n")
	}
}
