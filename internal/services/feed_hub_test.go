package services

import (
	"testing"

	"meetingroom/internal/models"
)

func TestFeedHub_Broadcast(t *testing.T) {
	hub := NewFeedHub()

	fast := &models.FeedConnection{ConnID: "fast", WriteChan: make(chan models.FeedMessage, 4)}
	full := &models.FeedConnection{ConnID: "full", WriteChan: make(chan models.FeedMessage)}
	hub.Add(fast)
	hub.Add(full)

	if hub.Count() != 2 {
		t.Fatalf("Expected 2 subscribers, got %d", hub.Count())
	}

	delivered := hub.Broadcast(models.FeedMessage{Type: models.FeedMessageMeetingsChanged})
	if delivered != 1 {
		t.Errorf("Expected 1 delivery, got %d", delivered)
	}
	if msg := <-fast.WriteChan; msg.Type != models.FeedMessageMeetingsChanged {
		t.Errorf("Unexpected message %+v", msg)
	}

	hub.Remove("fast")
	if !fast.IsClosed() {
		t.Error("Removed connection must be closed")
	}
	if fast.SafeSend(models.FeedMessage{}) {
		t.Error("SafeSend on a closed connection must fail")
	}

	hub.CloseAll()
	if hub.Count() != 0 || !full.IsClosed() {
		t.Error("CloseAll must remove and close every subscriber")
	}
}
