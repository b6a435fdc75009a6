package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/seesaw/mfses/internal/contracts"
	"github.com/seesaw/mfses/pkg/logger"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsSendBuffer   = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is served from other origins in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RunFeed broadcasts pipeline run records to websocket subscribers.
// It implements pipeline.Notifier.
// SSOT: run broadcasting happens only through this hub.
type RunFeed struct {
	logger *logger.Logger

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	closed  bool
}

type wsClient struct {
	conn *websocket.Conn
	send chan *contracts.PipelineRun
}

// NewRunFeed creates the run broadcast hub.
func NewRunFeed(log *logger.Logger) *RunFeed {
	return &RunFeed{
		logger:  log,
		clients: make(map[*wsClient]struct{}),
	}
}

// NotifyRun fans a run record out to every subscriber. Slow clients
// miss updates rather than blocking the pipeline.
func (f *RunFeed) NotifyRun(run *contracts.PipelineRun) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for client := range f.clients {
		select {
		case client.send <- run:
		default:
			f.logger.Warn("Websocket subscriber buffer full, update dropped")
		}
	}
}

// Serve handles GET /api/ws/runs.
func (f *RunFeed) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan *contracts.PipelineRun, wsSendBuffer),
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		conn.Close()
		return
	}
	f.clients[client] = struct{}{}
	f.mu.Unlock()

	go f.writeLoop(client)
	f.readLoop(client)
}

// Close disconnects every subscriber. Called on shutdown.
func (f *RunFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	for client := range f.clients {
		close(client.send)
		client.conn.Close()
		delete(f.clients, client)
	}
}

func (f *RunFeed) remove(client *wsClient) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.clients[client]; ok {
		delete(f.clients, client)
		close(client.send)
		client.conn.Close()
	}
}

func (f *RunFeed) writeLoop(client *wsClient) {
	for run := range client.send {
		client.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := client.conn.WriteJSON(run); err != nil {
			f.remove(client)
			return
		}
	}
}

// readLoop drains the connection so pings and close frames are
// processed; subscribers never send application data.
func (f *RunFeed) readLoop(client *wsClient) {
	defer f.remove(client)

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}
