package timeline

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// wsWriteTimeout bounds a single frame write to a slow client.
	wsWriteTimeout = 5 * time.Second
	// wsSendBuffer is the per-connection backlog; a client that falls this
	// far behind starts losing intermediate updates (the latest state always
	// arrives eventually).
	wsSendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboard and API share an origin on the appliance.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// watchHub fans navigator state updates out to the session's websocket
// clients. Updates are marshalled once per broadcast; connections that cannot
// keep up drop intermediate frames rather than stalling the navigator.
type watchHub struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]chan StateUpdate
	closed bool
	log    *slog.Logger
}

func newWatchHub(log *slog.Logger) *watchHub {
	return &watchHub{conns: make(map[*websocket.Conn]chan StateUpdate), log: log}
}

// broadcast queues an update for every connected client.
func (h *watchHub) broadcast(u StateUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.conns {
		select {
		case ch <- u:
		default:
			// Slow client; skip this frame for it.
		}
	}
}

// serve upgrades the request and pumps updates until the client disconnects
// or the hub closes. first is sent immediately so the client can paint
// without waiting for a change.
func (h *watchHub) serve(w http.ResponseWriter, r *http.Request, first StateUpdate) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	send := make(chan StateUpdate, wsSendBuffer)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.conns[conn] = send
	h.mu.Unlock()

	// Reader: only used to notice the client going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(conn)
				return
			}
		}
	}()

	write := func(u StateUpdate) bool {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(u); err != nil {
			h.drop(conn)
			return false
		}
		return true
	}

	if !write(first) {
		return
	}
	for u := range send {
		if !write(u) {
			return
		}
	}
	conn.Close()
}

// drop unregisters and closes one connection.
func (h *watchHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	ch, ok := h.conns[conn]
	if ok {
		delete(h.conns, conn)
		close(ch)
	}
	h.mu.Unlock()
	conn.Close()
}

// close disconnects all clients; used when the session is deleted.
func (h *watchHub) close() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()
	for _, c := range conns {
		h.drop(c)
	}
}
