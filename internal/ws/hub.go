package ws

import (
	"context"
	"sync"

	"venue-staff/internal/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type venueMessage struct {
	venueID uuid.UUID
	data    []byte
}

type memberKey struct {
	venueID uuid.UUID
	userID  uuid.UUID
}

// Hub fans schedule events out to the sockets watching each venue.
type Hub struct {
	rooms      map[uuid.UUID]map[*Client]struct{}
	broadcast  chan venueMessage
	register   chan *Client
	unregister chan *Client
	kick       chan memberKey
	done       chan struct{}
	stopOnce   sync.Once
	mutex      sync.RWMutex
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]struct{}),
		broadcast:  make(chan venueMessage, 1024),
		// Unbuffered: a client is either taken by Run or closed by Register.
		register:   make(chan *Client),
		unregister: make(chan *Client, 128),
		kick:       make(chan memberKey, 64),
		done:       make(chan struct{}),
		logger:     logging.OrNop(logger).Named("ws"),
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			room, ok := h.rooms[client.venueID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[client.venueID] = room
			}
			room[client] = struct{}{}
			watching := len(room)
			h.mutex.Unlock()
			h.logger.Debug("ws connected",
				zap.Stringer("venue_id", client.venueID),
				zap.Stringer("user_id", client.userID),
				zap.Int("venue_clients", watching),
			)

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.remove(client)

		case k := <-h.kick:
			h.mutex.RLock()
			var gone []*Client
			for c := range h.rooms[k.venueID] {
				if c.userID == k.userID {
					gone = append(gone, c)
				}
			}
			h.mutex.RUnlock()
			for _, c := range gone {
				h.remove(c)
			}

		case msg := <-h.broadcast:
			h.mutex.RLock()
			targets := make([]*Client, 0, len(h.rooms[msg.venueID]))
			for c := range h.rooms[msg.venueID] {
				targets = append(targets, c)
			}
			h.mutex.RUnlock()

			for _, client := range targets {
				select {
				case client.send <- msg.data:
				default:
					// Slow reader; drop it rather than stall the venue.
					h.remove(client)
				}
			}
			h.logger.Debug("ws broadcast", zap.Stringer("venue_id", msg.venueID), zap.Int("clients", len(targets)))
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	room := h.rooms[client.venueID]
	if _, ok := room[client]; !ok {
		return
	}
	delete(room, client)
	close(client.send)
	if len(room) == 0 {
		delete(h.rooms, client.venueID)
	}
	h.logger.Debug("ws disconnected", zap.Stringer("venue_id", client.venueID), zap.Stringer("user_id", client.userID))
}

func (h *Hub) shutdown() {
	h.stopOnce.Do(func() { close(h.done) })
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for venueID, room := range h.rooms {
		for c := range room {
			close(c.send)
		}
		delete(h.rooms, venueID)
	}
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	select {
	case <-h.done:
		close(client.send)
		return
	default:
	}
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// MemberRemoved closes the user's sockets for the venue; membership is only
// checked when a socket connects.
func (h *Hub) MemberRemoved(venueID, userID uuid.UUID) {
	if h == nil {
		return
	}
	select {
	case h.kick <- memberKey{venueID: venueID, userID: userID}:
	default:
		h.logger.Warn("ws kick dropped", zap.Stringer("venue_id", venueID), zap.Stringer("user_id", userID), zap.String("reason", "buffer_full"))
	}
}

// Broadcast never blocks; events are dropped when the buffer is full.
func (h *Hub) Broadcast(venueID uuid.UUID, message []byte) {
	if h == nil {
		return
	}
	select {
	case h.broadcast <- venueMessage{venueID: venueID, data: message}:
	default:
		h.logger.Warn("ws broadcast dropped", zap.Stringer("venue_id", venueID), zap.String("reason", "buffer_full"))
	}
}

func (h *Hub) ClientCount(venueID uuid.UUID) int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.rooms[venueID])
}
