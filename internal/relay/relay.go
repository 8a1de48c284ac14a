// Package relay fans volume changes out to every connected sync agent.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vmorsell/volctl/internal/ratelimit"
	"github.com/vmorsell/volctl/internal/volume"
	"github.com/vmorsell/volctl/pkg/model"
	"go.uber.org/zap"
)

const (
	readBufferSize  = 1024
	writeBufferSize = 1024
	sendBufferSize  = 256
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	maxMessageSize  = 1024
	shutdownTimeout = 5 * time.Second

	DefaultVolumeChangeRateLimit = 2

	ErrInvalidPayload   = `invalid payload, expected {"type":"volume","volume":int}`
	ErrVolumeOutOfRange = "volume must be between 0 and 100"
	ErrRateLimited      = "rate limit exceeded"
)

// Config configures a Server.
type Config struct {
	// VolumeChangeRateLimit is the number of changes a client may make per second.
	VolumeChangeRateLimit int
}

type client struct {
	conn   *websocket.Conn
	id     string
	send   chan []byte
	server *Server
}

// Server is a websocket relay hub.
type Server struct {
	logger   *zap.Logger
	limiter  *ratelimit.RateLimiter
	metrics  *metrics
	registry *prometheus.Registry
	upgrader websocket.Upgrader

	clientsMu  sync.Mutex
	clients    map[*client]struct{}
	lastVolume *int

	register   chan *client
	unregister chan *client
	done       chan struct{}
}

// New creates a relay. Metrics are registered on registry.
func New(logger *zap.Logger, registry *prometheus.Registry, cfg Config) *Server {
	limit := cfg.VolumeChangeRateLimit
	if limit <= 0 {
		limit = DefaultVolumeChangeRateLimit
	}
	return &Server{
		logger:   logger,
		limiter:  ratelimit.NewRateLimiter(limit, ratelimit.DefaultWindowSize),
		metrics:  newMetrics(registry),
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
}

// Handler serves the websocket endpoint at /ws and metrics at /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

// Run processes client registrations until ctx is done. It must be called once.
func (s *Server) Run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return

		case c := <-s.register:
			s.clientsMu.Lock()
			s.clients[c] = struct{}{}
			count := len(s.clients)
			s.metrics.clients.Set(float64(count))
			if s.lastVolume != nil {
				s.enqueue(c, model.NewVolumeMessage(*s.lastVolume))
			}
			s.broadcastLocked(model.NewClientsMessage(count), nil)
			s.clientsMu.Unlock()
			s.logger.Info("client connected", zap.String("clientID", c.id), zap.Int("clients", count))

		case c := <-s.unregister:
			s.clientsMu.Lock()
			if _, ok := s.clients[c]; ok {
				s.dropLocked(c)
			}
			count := len(s.clients)
			s.metrics.clients.Set(float64(count))
			s.broadcastLocked(model.NewClientsMessage(count), nil)
			s.clientsMu.Unlock()
			s.limiter.Forget(c.id)
			s.logger.Info("client disconnected", zap.String("clientID", c.id), zap.Int("clients", count))
		}
	}
}

// ListenAndServe runs the hub and an HTTP server on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("volume relay server started", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen and serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	c := &client{
		conn:   conn,
		id:     uuid.NewString(),
		send:   make(chan []byte, sendBufferSize),
		server: s,
	}

	select {
	case s.register <- c:
	case <-s.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// handleMessage validates a volume change from c and relays it.
func (s *Server) handleMessage(c *client, message []byte) {
	v, err := decodeVolumeChange(message)
	if err != nil {
		s.reject(c, "invalid", err.Error())
		return
	}
	if !s.limiter.Allow(c.id) {
		s.reject(c, "rate_limited", ErrRateLimited)
		return
	}

	s.clientsMu.Lock()
	s.lastVolume = &v
	others := s.broadcastLocked(model.NewVolumeMessage(v), c)
	total := len(s.clients)
	s.clientsMu.Unlock()

	s.metrics.volumeChanges.Inc()
	s.logger.Info("relayed volume change",
		zap.String("clientID", c.id),
		zap.Int("volume", v),
		zap.Int("recipients", others),
		zap.Int("clients", total))
}

func (s *Server) reject(c *client, reason, msg string) {
	s.metrics.rejected.WithLabelValues(reason).Inc()
	s.logger.Warn("rejected message", zap.String("clientID", c.id), zap.String("reason", reason))
	s.clientsMu.Lock()
	s.enqueue(c, model.NewErrorMessage(msg))
	s.clientsMu.Unlock()
}

// decodeVolumeChange parses a volume message and checks its range.
func decodeVolumeChange(message []byte) (int, error) {
	typ, err := model.MessageType(message)
	if err != nil || typ != model.MessageTypeVolume {
		return 0, errors.New(ErrInvalidPayload)
	}
	var msg model.VolumeMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return 0, errors.New(ErrInvalidPayload)
	}
	if err := volume.Validate(msg.Volume); err != nil {
		return 0, errors.New(ErrVolumeOutOfRange)
	}
	return msg.Volume, nil
}

// broadcastLocked sends msg to every client except skip and returns the
// number of recipients. Callers hold clientsMu.
func (s *Server) broadcastLocked(msg interface{}, skip *client) int {
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("failed to marshal message", zap.Error(err))
		return 0
	}
	n := 0
	for c := range s.clients {
		if c == skip {
			continue
		}
		if s.enqueueRaw(c, payload) {
			n++
		}
	}
	return n
}

// enqueue sends msg to a single client. Callers hold clientsMu.
func (s *Server) enqueue(c *client, msg interface{}) {
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("failed to marshal message", zap.Error(err))
		return
	}
	s.enqueueRaw(c, payload)
}

// enqueueRaw drops clients whose send buffer is full. Callers hold clientsMu.
func (s *Server) enqueueRaw(c *client, payload []byte) bool {
	if _, ok := s.clients[c]; !ok {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		s.logger.Warn("dropping slow client", zap.String("clientID", c.id))
		s.dropLocked(c)
		return false
	}
}

func (s *Server) dropLocked(c *client) {
	delete(s.clients, c)
	close(c.send)
}

func (s *Server) closeAll() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for c := range s.clients {
		s.dropLocked(c)
	}
	s.metrics.clients.Set(0)
}

func (c *client) readPump() {
	defer func() {
		select {
		case c.server.unregister <- c:
		case <-c.server.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if errors.Is(err, websocket.ErrReadLimit) {
			// The connection has already sent CloseMessageTooBig.
			c.server.metrics.rejected.WithLabelValues("too_large").Inc()
			c.server.logger.Warn("message too large",
				zap.String("clientID", c.id),
				zap.Int("max", maxMessageSize))
			return
		}
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.logger.Warn("websocket error", zap.String("clientID", c.id), zap.Error(err))
			}
			return
		}

		c.server.handleMessage(c, message)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
