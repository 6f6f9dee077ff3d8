package live

import (
	"encoding/json"
	"sync"

	"servecart/cart"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Badge is pushed to a session's sockets after every cart change.
type Badge struct {
	Kind      cart.EventKind `json:"kind,omitempty"`
	ItemCount int            `json:"itemCount"`
	Total     string         `json:"total"`
}

func NewBadge(ev cart.Event) Badge {
	return Badge{Kind: ev.Kind, ItemCount: ev.ItemCount, Total: ev.Total.StringFixed(2)}
}

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
	Room string
}

type broadcastMsg struct {
	Room string
	Data []byte
}

// Hub fans badge updates out to the sockets of each cart session.
type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	quit       chan struct{}
	stopOnce   sync.Once
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg, 256),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.Room] == nil {
				h.rooms[c.Room] = make(map[*Client]bool)
			}
			h.rooms[c.Room][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			h.drop(c)
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.rooms[m.Room] {
				select {
				case c.Send <- m.Data:
				default:
					h.drop(c)
				}
			}
			h.mu.Unlock()

		case <-h.quit:
			h.mu.Lock()
			for _, conns := range h.rooms {
				for c := range conns {
					h.drop(c)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// drop closes a registered client's queue exactly once. Callers hold mu.
func (h *Hub) drop(c *Client) {
	conns := h.rooms[c.Room]
	if !conns[c] {
		return
	}
	delete(conns, c)
	close(c.Send)
	if len(conns) == 0 {
		delete(h.rooms, c.Room)
	}
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// Register adds c unless the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.quit:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

// Publish queues data for a room without blocking; it reports false when the
// update was dropped.
func (h *Hub) Publish(room string, data []byte) bool {
	select {
	case h.broadcast <- broadcastMsg{Room: room, Data: data}:
		return true
	default:
		log.Warn().Str("session", room).Msg("live update dropped")
		return false
	}
}

// CartChanged is a cart.Store change listener.
func (h *Hub) CartChanged(sessionID string, ev cart.Event) {
	data, err := json.Marshal(NewBadge(ev))
	if err != nil {
		return
	}
	h.Publish(sessionID, data)
}

// Clients counts the sockets open for a room.
func (h *Hub) Clients(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}
