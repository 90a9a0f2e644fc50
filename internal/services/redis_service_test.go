package services

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisService_Store(t *testing.T) {
	mr := miniredis.RunT(t)

	svc, err := NewRedisService(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer svc.Close()

	store := svc.Store()
	if err := store.Set(context.Background(), "acme_meetings", "[]"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if got, err := mr.Get(redisKeyPrefix + "acme_meetings"); err != nil || got != "[]" {
		t.Errorf("Expected prefixed key to hold '[]', got %q (%v)", got, err)
	}
}

func TestNewRedisService_Errors(t *testing.T) {
	if _, err := NewRedisService(context.Background(), "not a url"); err == nil {
		t.Error("Expected error for an unparseable URL")
	}

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedisService(context.Background(), "redis://"+addr); err == nil {
		t.Error("Expected error when Redis is not answering")
	}
}
