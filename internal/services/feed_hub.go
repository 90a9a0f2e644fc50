package services

import (
	"log"
	"sync"

	"meetingroom/internal/models"
)

// FeedHub tracks websocket subscribers of the meeting feed
type FeedHub struct {
	connections map[string]*models.FeedConnection
	mutex       sync.RWMutex
}

// NewFeedHub creates an empty hub
func NewFeedHub() *FeedHub {
	return &FeedHub{
		connections: make(map[string]*models.FeedConnection),
	}
}

// Add registers a connection
func (h *FeedHub) Add(conn *models.FeedConnection) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.connections[conn.ConnID] = conn
	log.Printf("✅ [FEED] Subscriber added: %s (Total: %d)", conn.ConnID, len(h.connections))
}

// Remove unregisters a connection and closes its write channel
func (h *FeedHub) Remove(connID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if conn, exists := h.connections[connID]; exists {
		conn.MarkClosed()
		delete(h.connections, connID)
		log.Printf("❌ [FEED] Subscriber removed: %s (Total: %d)", connID, len(h.connections))
	}
}

// Count returns the number of subscribers
func (h *FeedHub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.connections)
}

// Broadcast queues msg for every subscriber and returns how many accepted it.
// It never blocks: subscribers with a full buffer miss the message.
func (h *FeedHub) Broadcast(msg models.FeedMessage) int {
	h.mutex.RLock()
	conns := make([]*models.FeedConnection, 0, len(h.connections))
	for _, conn := range h.connections {
		conns = append(conns, conn)
	}
	h.mutex.RUnlock()

	delivered := 0
	for _, conn := range conns {
		if conn.SafeSend(msg) {
			delivered++
		}
	}
	return delivered
}

// CloseAll removes every subscriber
func (h *FeedHub) CloseAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for id, conn := range h.connections {
		conn.MarkClosed()
		delete(h.connections, id)
	}
}
