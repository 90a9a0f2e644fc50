package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"meetingroom/internal/models"
	"meetingroom/internal/services"
)

const (
	feedReadTimeout  = 90 * time.Second
	feedWriteTimeout = 10 * time.Second
	feedPingInterval = 30 * time.Second
	feedBufferSize   = 16
)

// FeedHandler pushes meeting changes to websocket subscribers
type FeedHandler struct {
	meetings *services.MeetingService
	hub      *services.FeedHub
	metrics  *services.Metrics
	loc      *time.Location

	// writeTimeout bounds every frame write; a subscriber that stops reading is dropped
	writeTimeout time.Duration
}

// NewFeedHandler creates a feed handler. metrics may be nil.
func NewFeedHandler(meetings *services.MeetingService, hub *services.FeedHub, metrics *services.Metrics, loc *time.Location) *FeedHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &FeedHandler{
		meetings:     meetings,
		hub:          hub,
		metrics:      metrics,
		loc:          loc,
		writeTimeout: feedWriteTimeout,
	}
}

// snapshot builds the full board state
func (h *FeedHandler) snapshot(msgType string) models.FeedMessage {
	now := h.meetings.Now()
	current := services.CurrentResponses(h.meetings.Current(now))
	active, past := h.meetings.Counts()

	return models.FeedMessage{
		Type:        msgType,
		Current:     current,
		Groups:      services.GroupByStartDate(current, true, h.loc),
		ActiveCount: active,
		PastCount:   past,
		Timestamp:   now.UTC(),
	}
}

// OnChange is registered as an engine listener and broadcasts every change
func (h *FeedHandler) OnChange(cs services.ChangeSet) {
	if h.hub.Count() == 0 {
		return
	}
	msg := h.snapshot(models.FeedMessageMeetingsChanged)
	if cs.Active {
		msg.Changed = append(msg.Changed, "active")
	}
	if cs.Past {
		msg.Changed = append(msg.Changed, "past")
	}

	if delivered := h.hub.Broadcast(msg); delivered > 0 {
		h.metrics.RecordFeedMessage(models.FeedMessageMeetingsChanged)
	}
}

// Handle serves one websocket subscriber
func (h *FeedHandler) Handle(c *websocket.Conn) {
	clientIP, _ := c.Locals("client_ip").(string)
	done := make(chan struct{})

	conn := &models.FeedConnection{
		ConnID:    uuid.New().String(),
		ClientIP:  clientIP,
		Conn:      c,
		CreatedAt: time.Now(),
		WriteChan: make(chan models.FeedMessage, feedBufferSize),
	}

	h.hub.Add(conn)
	defer func() {
		close(done)
		h.hub.Remove(conn.ConnID)
	}()

	c.SetReadDeadline(time.Now().Add(feedReadTimeout))
	c.SetPongHandler(func(string) error {
		c.SetReadDeadline(time.Now().Add(feedReadTimeout))
		return nil
	})

	go h.pingLoop(conn, done)
	go h.writeLoop(conn)

	conn.SafeSend(h.snapshot(models.FeedMessageSnapshot))
	h.metrics.RecordFeedMessage(models.FeedMessageSnapshot)

	h.readLoop(conn)
}

func (h *FeedHandler) pingLoop(conn *models.FeedConnection, done <-chan struct{}) {
	ticker := time.NewTicker(feedPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			// WriteControl may run concurrently with writeLoop
			err := conn.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(h.writeTimeout))
			if err != nil {
				log.Printf("⚠️  [FEED] Ping failed for %s: %v", conn.ConnID, err)
				return
			}
		}
	}
}

func (h *FeedHandler) readLoop(conn *models.FeedConnection) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ [FEED] Panic in readLoop: %v", r)
		}
	}()

	for {
		_, data, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("⚠️  [FEED] Read error for %s: %v", conn.ConnID, err)
			}
			return
		}
		conn.Conn.SetReadDeadline(time.Now().Add(feedReadTimeout))

		var msg models.FeedClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			conn.SafeSend(models.FeedMessage{
				Type:         models.FeedMessageError,
				ErrorMessage: "Invalid message format",
				Timestamp:    time.Now().UTC(),
			})
			continue
		}

		switch msg.Type {
		case "ping":
			conn.SafeSend(models.FeedMessage{Type: models.FeedMessagePong, Timestamp: time.Now().UTC()})
		case "refresh":
			conn.SafeSend(h.snapshot(models.FeedMessageSnapshot))
			h.metrics.RecordFeedMessage(models.FeedMessageSnapshot)
		default:
			log.Printf("⚠️  [FEED] Unknown message type from %s: %s", conn.ConnID, msg.Type)
		}
	}
}

// writeLoop is the only writer of data frames; it ends when the hub closes WriteChan.
// A failed or timed out write closes the socket so readLoop ends and the hub drops the subscriber.
func (h *FeedHandler) writeLoop(conn *models.FeedConnection) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ [FEED] Panic in writeLoop: %v", r)
		}
	}()

	for msg := range conn.WriteChan {
		conn.Conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := conn.Conn.WriteJSON(msg); err != nil {
			log.Printf("❌ [FEED] Write error for %s: %v", conn.ConnID, err)
			conn.Conn.Close()
			return
		}
	}
}
