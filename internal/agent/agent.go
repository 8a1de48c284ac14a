// Package agent keeps the local master volume in step with a relay.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmorsell/volctl/internal/volume"
	"github.com/vmorsell/volctl/pkg/model"
	"go.uber.org/zap"
)

const (
	writeWait             = 10 * time.Second
	joinWait              = 10 * time.Second
	defaultReconnectDelay = 2 * time.Second
)

// Config configures an Agent.
type Config struct {
	RelayURL       string
	PollInterval   time.Duration
	ReconnectDelay time.Duration
}

// Agent publishes local volume changes to the relay and applies remote ones.
type Agent struct {
	logger   *zap.Logger
	listener *volume.Listener
	dialer   *websocket.Dialer
	cfg      Config

	// synced is the volume last agreed with the relay.
	synced atomic.Int64
}

// New creates an Agent that drives ctrl. A zero ReconnectDelay means two seconds.
func New(logger *zap.Logger, ctrl *volume.Controller, cfg Config) *Agent {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaultReconnectDelay
	}
	return &Agent{
		logger:   logger,
		listener: volume.NewListener(ctrl, cfg.PollInterval),
		dialer:   websocket.DefaultDialer,
		cfg:      cfg,
	}
}

// Run syncs until ctx is done, reconnecting whenever the relay connection drops.
// It fails only if the local volume cannot be read at startup.
func (a *Agent) Run(ctx context.Context) error {
	changes, err := a.listener.Listen(ctx)
	if err != nil {
		return fmt.Errorf("start volume listener: %w", err)
	}
	a.logger.Info("local volume", zap.Int("volume", a.listener.Current()))

	for {
		err := a.session(ctx, changes)
		if ctx.Err() != nil {
			return nil
		}
		a.logger.Warn("relay connection lost",
			zap.String("relayURL", a.cfg.RelayURL),
			zap.Duration("retryIn", a.cfg.ReconnectDelay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(a.cfg.ReconnectDelay):
		}
	}
}

// session runs one relay connection. All writes happen on this goroutine.
func (a *Agent) session(ctx context.Context, changes <-chan int) error {
	conn, _, err := a.dialer.DialContext(ctx, a.cfg.RelayURL, nil)
	if err != nil {
		return fmt.Errorf("dial relay: %w", err)
	}
	defer conn.Close()
	a.logger.Info("connected to relay", zap.String("relayURL", a.cfg.RelayURL))

	if err := a.join(ctx, conn); err != nil {
		return err
	}

	readErr := make(chan error, 1)
	go func() {
		readErr <- a.readLoop(ctx, conn)
	}()

	for {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return ctx.Err()
		case err := <-readErr:
			return err
		case v, ok := <-changes:
			if !ok {
				return ctx.Err()
			}
			// Changes queued while disconnected are covered by join, and
			// one overtaken by a remote apply is stale.
			if v == a.syncedVolume() || v != a.listener.Current() {
				a.logger.Debug("skipping stale local change", zap.Int("volume", v))
				continue
			}
			a.logger.Info("local volume changed", zap.Int("volume", v))
			if err := a.publish(conn, v); err != nil {
				return err
			}
		}
	}
}

// join settles the volume for a new connection. The relay sends its stored
// volume, if it has one, ahead of the first clients message. A stored volume
// is applied locally; otherwise the local volume is published.
func (a *Agent) join(ctx context.Context, conn *websocket.Conn) error {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	conn.SetReadDeadline(time.Now().Add(joinWait))
	defer conn.SetReadDeadline(time.Time{})

	adopted := false
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("join: %w", err)
		}
		typ, err := model.MessageType(data)
		if err != nil {
			a.logger.Warn("failed to handle relay message", zap.ByteString("message", data), zap.Error(err))
			continue
		}
		if err := a.handle(ctx, data); err != nil {
			a.logger.Warn("failed to handle relay message", zap.ByteString("message", data), zap.Error(err))
			continue
		}

		switch typ {
		case model.MessageTypeVolume:
			adopted = true
		case model.MessageTypeClients:
			if adopted {
				return nil
			}
			return a.publish(conn, a.listener.Current())
		}
	}
}

func (a *Agent) publish(conn *websocket.Conn, v int) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(model.NewVolumeMessage(v)); err != nil {
		return fmt.Errorf("publish volume %d: %w", v, err)
	}
	a.synced.Store(int64(v))
	return nil
}

func (a *Agent) syncedVolume() int {
	return int(a.synced.Load())
}

func (a *Agent) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if err := a.handle(ctx, data); err != nil {
			a.logger.Warn("failed to handle relay message", zap.ByteString("message", data), zap.Error(err))
		}
	}
}

func (a *Agent) handle(ctx context.Context, data []byte) error {
	typ, err := model.MessageType(data)
	if err != nil {
		return err
	}

	switch typ {
	case model.MessageTypeVolume:
		var msg model.VolumeMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("unmarshal volume message: %w", err)
		}
		if msg.Volume != a.listener.Current() {
			if err := a.listener.SetVolume(ctx, msg.Volume); err != nil {
				return fmt.Errorf("apply remote volume: %w", err)
			}
		}
		a.synced.Store(int64(a.listener.Current()))
		a.logger.Info("applied remote volume", zap.Int("volume", msg.Volume))

	case model.MessageTypeClients:
		var msg model.ClientsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("unmarshal clients message: %w", err)
		}
		a.logger.Info("connected clients", zap.Int("clients", msg.Clients))

	case model.MessageTypeError:
		var msg model.ErrorMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("unmarshal error message: %w", err)
		}
		return errors.New("relay rejected update: " + msg.Error)

	default:
		a.logger.Debug("ignoring message", zap.String("type", typ))
	}
	return nil
}
