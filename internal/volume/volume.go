// Package volume reads and writes the system master output volume.
//
// Volumes are integer percentages in [MinVolume, MaxVolume]. Each platform
// provides a Mixer that talks to the native mixer API; every Mixer call
// acquires its own handle and releases it before returning.
package volume

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	MinVolume = 0
	MaxVolume = 100
)

var (
	// ErrOutOfRange is returned when a volume outside [MinVolume, MaxVolume] is requested.
	ErrOutOfRange = errors.New("volume out of range")
	// ErrElementNotFound is returned when the mixer has no master element.
	ErrElementNotFound = errors.New("mixer element not found")
	// ErrUnsupported is returned on platforms without a mixer backend.
	ErrUnsupported = errors.New("volume control not supported on this platform")
)

// Mixer is a native master volume backend.
type Mixer interface {
	// Volume returns the current master volume as a percentage.
	Volume() (int, error)
	// SetVolume writes the master volume. The percentage is already validated.
	SetVolume(percent int) error
}

// Controller is the validated entry point to the system mixer.
type Controller struct {
	logger *zap.Logger
	mixer  Mixer
}

// Option configures a Controller.
type Option func(*Controller)

// WithMixer replaces the platform mixer.
func WithMixer(m Mixer) Option {
	return func(c *Controller) {
		c.mixer = m
	}
}

// NewController returns a Controller backed by the platform mixer.
func NewController(logger *zap.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	if c.mixer == nil {
		c.mixer = newSystemMixer()
	}
	return c
}

// Volume returns the current master volume in [MinVolume, MaxVolume].
func (c *Controller) Volume(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	v, err := c.mixer.Volume()
	if err != nil {
		return 0, fmt.Errorf("get volume: %w", err)
	}
	v = Clamp(v)
	c.logger.Debug("read volume", zap.Int("volume", v))
	return v, nil
}

// SetVolume writes the master volume. Values outside [MinVolume, MaxVolume]
// are rejected with ErrOutOfRange and never reach the mixer.
func (c *Controller) SetVolume(ctx context.Context, v int) error {
	if err := Validate(v); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.mixer.SetVolume(v); err != nil {
		return fmt.Errorf("set volume %d: %w", v, err)
	}
	c.logger.Debug("wrote volume", zap.Int("volume", v))
	return nil
}

// Validate reports whether v is a valid volume percentage.
func Validate(v int) error {
	if v < MinVolume || v > MaxVolume {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrOutOfRange, v, MinVolume, MaxVolume)
	}
	return nil
}

// Clamp limits v to [MinVolume, MaxVolume].
func Clamp(v int) int {
	if v < MinVolume {
		return MinVolume
	}
	if v > MaxVolume {
		return MaxVolume
	}
	return v
}
