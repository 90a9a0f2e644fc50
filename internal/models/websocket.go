package models

import (
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

// Feed message types
const (
	FeedMessageConnected       = "connected"
	FeedMessageSnapshot        = "snapshot"
	FeedMessageMeetingsChanged = "meetings_changed"
	FeedMessagePong            = "pong"
	FeedMessageError           = "error"
)

// FeedClientMessage represents a message from a feed subscriber
type FeedClientMessage struct {
	Type string `json:"type"` // "ping" or "refresh"
}

// FeedMessage represents a message pushed to feed subscribers
type FeedMessage struct {
	Type         string              `json:"type"`
	Current      []*MeetingResponse  `json:"current,omitempty"`
	Past         []*MeetingResponse  `json:"past,omitempty"`
	Changed      []string            `json:"changed,omitempty"` // "active", "past"
	ActiveCount  int                 `json:"active_count"`
	PastCount    int                 `json:"past_count"`
	ErrorMessage string              `json:"error_message,omitempty"`
	Timestamp    time.Time           `json:"timestamp"`
	Groups       []*MeetingDateGroup `json:"groups,omitempty"`
}

// FeedConnection is one websocket subscriber of the meeting feed.
// Mutex guards closed and WriteChan only; it is never held across a network write.
type FeedConnection struct {
	ConnID    string
	ClientIP  string
	Conn      *websocket.Conn
	CreatedAt time.Time
	WriteChan chan FeedMessage
	Mutex     sync.Mutex
	closed    bool
}

// SafeSend queues a message without blocking, returning false if the
// connection is closed or its buffer is full
func (fc *FeedConnection) SafeSend(msg FeedMessage) bool {
	fc.Mutex.Lock()
	defer fc.Mutex.Unlock()

	if fc.closed {
		return false
	}

	select {
	case fc.WriteChan <- msg:
		return true
	default:
		return false
	}
}

// MarkClosed marks the connection as closed and releases the write loop
func (fc *FeedConnection) MarkClosed() {
	fc.Mutex.Lock()
	defer fc.Mutex.Unlock()

	if fc.closed {
		return
	}
	fc.closed = true
	close(fc.WriteChan)
}

// IsClosed returns true if the connection has been marked as closed
func (fc *FeedConnection) IsClosed() bool {
	fc.Mutex.Lock()
	defer fc.Mutex.Unlock()
	return fc.closed
}
