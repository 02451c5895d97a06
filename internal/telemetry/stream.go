package telemetry

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Snapshot is the JSON payload broadcast to every connected watcher.
type Snapshot struct {
	Progress ProgressSnapshot `json:"progress"`
	Results  []ResultSnapshot `json:"results"`
}

// Server polls a Reader at its poll interval and fans each snapshot out to
// every connected websocket client. It is the external-observer side of
// the telemetry channel: the orchestrator never talks to it directly, it
// only ever writes through a Writer.
type Server struct {
	reader       *Reader
	upgrader     websocket.Upgrader
	pollInterval time.Duration
	log          *log.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewServer wraps reader for websocket fan-out. pollInterval of zero
// defaults to 250ms.
func NewServer(reader *Reader, pollInterval time.Duration, logger *log.Logger) *Server {
	if pollInterval <= 0 {
		pollInterval = 250 * time.Millisecond
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		reader:       reader,
		pollInterval: pollInterval,
		log:          logger,
		clients:      make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the connection and registers it for broadcast.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("telemetry stream upgrade failed", "err", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	// Drain and discard client frames; this is a push-only stream but a
	// dead socket needs to be detected to stop writing to it.
	go func() {
		defer s.removeClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) removeClient(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
}

// broadcast sends snap as JSON to every connected client, dropping any
// client whose write fails.
func (s *Server) broadcast(snap Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		s.log.Error("telemetry stream marshal failed", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			go s.removeClient(conn)
		}
	}
}

// Poll runs the read/broadcast loop until stop is closed.
func (s *Server) Poll(stop <-chan struct{}) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.broadcast(Snapshot{
				Progress: s.reader.ReadProgress(),
				Results:  s.reader.ReadResults(),
			})
		}
	}
}
