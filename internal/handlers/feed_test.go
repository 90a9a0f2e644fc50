package handlers

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	gws "github.com/gorilla/websocket"

	"meetingroom/internal/models"
	"meetingroom/internal/services"
)

func startFeedServer(t *testing.T) (string, *services.MeetingService, *services.FeedHub) {
	t.Helper()
	return startFeedServerWithTimeout(t, feedWriteTimeout)
}

func startFeedServerWithTimeout(t *testing.T, writeTimeout time.Duration) (string, *services.MeetingService, *services.FeedHub) {
	t.Helper()

	meetings, _ := newTestMeetings(t)
	hub := services.NewFeedHub()
	feed := NewFeedHandler(meetings, hub, nil, time.UTC)
	feed.writeTimeout = writeTimeout
	meetings.OnChange(feed.OnChange)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("client_ip", c.IP())
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/meetings", websocket.New(feed.Handle))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	go func() {
		_ = app.Listener(ln)
	}()
	t.Cleanup(func() {
		hub.CloseAll()
		_ = app.Shutdown()
	})

	return "ws://" + ln.Addr().String() + "/ws/meetings", meetings, hub
}

func readFeedMessage(t *testing.T, conn *gws.Conn) models.FeedMessage {
	t.Helper()
	var msg models.FeedMessage
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Failed to read feed message: %v", err)
	}
	return msg
}

func TestFeedHandler_SnapshotAndChanges(t *testing.T) {
	url, meetings, hub := startFeedServer(t)

	start := mustTime("2025-01-01T09:00:00Z")
	if _, err := meetings.Create(&models.CreateMeetingRequest{
		StartTime:       &start,
		Content:         "Before connect",
		StaffCode:       "NV001",
		MeetingPassword: "11",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	snapshot := readFeedMessage(t, conn)
	if snapshot.Type != models.FeedMessageSnapshot {
		t.Fatalf("Expected snapshot first, got %s", snapshot.Type)
	}
	if snapshot.ActiveCount != 1 || len(snapshot.Current) != 1 {
		t.Errorf("Unexpected snapshot %+v", snapshot)
	}
	if hub.Count() != 1 {
		t.Errorf("Expected 1 subscriber, got %d", hub.Count())
	}

	if _, err := meetings.Create(&models.CreateMeetingRequest{
		StartTime:       &start,
		Content:         "After connect",
		StaffCode:       "NV001",
		MeetingPassword: "12",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	changed := readFeedMessage(t, conn)
	if changed.Type != models.FeedMessageMeetingsChanged {
		t.Fatalf("Expected meetings_changed, got %s", changed.Type)
	}
	if changed.ActiveCount != 2 || len(changed.Changed) != 1 || changed.Changed[0] != "active" {
		t.Errorf("Unexpected change message %+v", changed)
	}

	if err := meetings.Delete(changed.Current[0].ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	deleted := readFeedMessage(t, conn)
	if len(deleted.Changed) != 2 || deleted.PastCount != 1 {
		t.Errorf("Expected active and past to change, got %+v", deleted)
	}
}

func TestFeedHandler_PingAndRefresh(t *testing.T) {
	url, _, _ := startFeedServer(t)

	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	readFeedMessage(t, conn) // snapshot

	if err := conn.WriteJSON(models.FeedClientMessage{Type: "ping"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if msg := readFeedMessage(t, conn); msg.Type != models.FeedMessagePong {
		t.Errorf("Expected pong, got %s", msg.Type)
	}

	if err := conn.WriteJSON(models.FeedClientMessage{Type: "refresh"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if msg := readFeedMessage(t, conn); msg.Type != models.FeedMessageSnapshot {
		t.Errorf("Expected snapshot, got %s", msg.Type)
	}

	if err := conn.WriteMessage(gws.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if msg := readFeedMessage(t, conn); msg.Type != models.FeedMessageError {
		t.Errorf("Expected error message, got %s", msg.Type)
	}
}

func TestFeedHandler_RejectsPlainHTTP(t *testing.T) {
	meetings, _ := newTestMeetings(t)
	feed := NewFeedHandler(meetings, services.NewFeedHub(), nil, time.UTC)

	app := fiber.New()
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/meetings", websocket.New(feed.Handle))

	status, _ := doJSON(t, app, "GET", "/ws/meetings", nil)
	if status != fiber.StatusUpgradeRequired {
		t.Errorf("Expected 426, got %d", status)
	}
}

func TestFeedHandler_StalledSubscriberDoesNotBlockMutations(t *testing.T) {
	url, meetings, hub := startFeedServerWithTimeout(t, 500*time.Millisecond)

	// Connected but never reads, so the server's socket buffers fill up
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(3 * time.Second)
	for hub.Count() != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	start := mustTime("2025-01-01T09:00:00Z")
	content := strings.Repeat("x", 256*1024)

	for i := 0; i < 40; i++ {
		done := make(chan error, 1)
		go func() {
			_, err := meetings.Create(&models.CreateMeetingRequest{
				StartTime:       &start,
				Content:         content,
				StaffCode:       "NV001",
				MeetingPassword: "11",
			})
			done <- err
		}()

		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("Create #%d failed: %v", i+1, err)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("Create #%d blocked on a subscriber that stopped reading", i+1)
		}
	}

	deadline = time.Now().Add(5 * time.Second)
	for hub.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if hub.Count() != 0 {
		t.Errorf("Expected the stalled subscriber to be dropped after a write timeout, got %d subscribers", hub.Count())
	}
}
