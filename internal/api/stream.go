package api

import (
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// streamPath is the live collection-status feed exposed by newer backends.
const streamPath = "/api/collection/ws"

// StreamClient maintains a websocket subscription to the backend's live
// collection-status feed. When the socket is down the console falls back to
// plain polling, so every failure here is silent: logged, retried with
// backoff, never surfaced to the operator.
type StreamClient struct {
	endpoint     string
	dialer       *websocket.Dialer
	initialDelay time.Duration
	maxDelay     time.Duration
	logf         func(format string, args ...any)

	mu         sync.Mutex
	conn       *websocket.Conn
	connected  bool
	lastError  error
	lastStatus CollectionStatus
	hasStatus  bool

	done     chan struct{}
	stopOnce sync.Once
}

// NewStreamClient builds a stream client for the backend at baseURL. The
// http(s) scheme is rewritten to ws(s).
func NewStreamClient(baseURL string, initialDelay, maxDelay time.Duration, logf func(string, ...any)) *StreamClient {
	if initialDelay <= 0 {
		initialDelay = 2 * time.Second
	}
	if maxDelay < initialDelay {
		maxDelay = 60 * time.Second
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &StreamClient{
		endpoint:     wsEndpoint(baseURL),
		dialer:       &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		logf:         logf,
		done:         make(chan struct{}),
	}
}

// Start begins the connect/reconnect loop.
func (s *StreamClient) Start() {
	go s.connectionLoop()
}

// Stop closes the feed and halts reconnection.
func (s *StreamClient) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		if s.conn != nil {
			_ = s.conn.Close()
		}
		s.mu.Unlock()
	})
}

// Connected reports whether the feed is currently live.
func (s *StreamClient) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Latest returns the most recent status frame, if any arrived yet.
func (s *StreamClient) Latest() (CollectionStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastStatus, s.hasStatus
}

func (s *StreamClient) connectionLoop() {
	delay := s.initialDelay
	for {
		select {
		case <-s.done:
			return
		default:
		}

		if err := s.connectAndRead(); err != nil {
			s.mu.Lock()
			s.connected = false
			s.lastError = err
			s.mu.Unlock()
			s.logf("status feed down, retrying in %v: %v", delay, err)

			select {
			case <-s.done:
				return
			case <-time.After(delay):
			}
			delay *= 2
			if delay > s.maxDelay {
				delay = s.maxDelay
			}
			continue
		}
		// Clean read-loop exit means Stop was called or the peer closed.
		delay = s.initialDelay
	}
}

func (s *StreamClient) connectAndRead() error {
	conn, _, err := s.dialer.Dial(s.endpoint, nil)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.lastError = nil
	s.mu.Unlock()
	s.logf("status feed connected: %s", s.endpoint)

	defer func() {
		s.mu.Lock()
		s.connected = false
		s.conn = nil
		s.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		select {
		case <-s.done:
			return nil
		default:
		}
		_, frame, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
				return err
			}
		}
		var status CollectionStatus
		if err := json.Unmarshal(frame, &status); err != nil {
			s.logf("status feed: dropping malformed frame: %v", err)
			continue
		}
		s.mu.Lock()
		s.lastStatus = status
		s.hasStatus = true
		s.mu.Unlock()
	}
}

func wsEndpoint(baseURL string) string {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return baseURL + streamPath
	}
	switch parsed.Scheme {
	case "https":
		parsed.Scheme = "wss"
	default:
		parsed.Scheme = "ws"
	}
	parsed.Path += streamPath
	return parsed.String()
}
