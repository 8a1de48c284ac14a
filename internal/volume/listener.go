package volume

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval is how often a Listener reads the mixer.
const DefaultPollInterval = 500 * time.Millisecond

// Listener watches for system volume changes by polling a Controller.
type Listener struct {
	ctrl     *Controller
	interval time.Duration

	mu      sync.Mutex
	lastVol int
}

// NewListener creates a Listener that polls ctrl every interval.
// A non-positive interval means DefaultPollInterval.
func NewListener(ctrl *Controller, interval time.Duration) *Listener {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Listener{
		ctrl:     ctrl,
		interval: interval,
	}
}

// Current returns the last observed volume.
func (l *Listener) Current() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastVol
}

// Observe records v as already seen so the next poll does not report it.
func (l *Listener) Observe(v int) {
	l.mu.Lock()
	l.lastVol = v
	l.mu.Unlock()
}

// Listen returns a channel that emits the system volume percentage whenever it changes.
// The channel is closed when ctx is done.
func (l *Listener) Listen(ctx context.Context) (<-chan int, error) {
	vol, err := l.ctrl.Volume(ctx)
	if err != nil {
		return nil, err
	}
	l.Observe(vol)

	ch := make(chan int)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			v, changed, err := l.poll(ctx)
			if err != nil {
				if ctx.Err() == nil {
					l.ctrl.logger.Warn("poll volume", zap.Error(err))
				}
				continue
			}
			if !changed {
				continue
			}
			select {
			case ch <- v:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

// SetVolume writes v through the controller and records the value the mixer
// reads back as observed. Polls are serialized with the write, so neither v
// nor its quantized form is reported as a change.
func (l *Listener) SetVolume(ctx context.Context, v int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.ctrl.SetVolume(ctx, v); err != nil {
		return err
	}
	if got, err := l.ctrl.Volume(ctx); err == nil {
		v = got
	}
	l.lastVol = v
	return nil
}

// poll reads the mixer and reports whether the value changed.
func (l *Listener) poll(ctx context.Context) (int, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, err := l.ctrl.Volume(ctx)
	if err != nil {
		return 0, false, err
	}
	if v == l.lastVol {
		return v, false, nil
	}
	l.lastVol = v
	return v, true, nil
}
