package storage

import (
	"context"
	"errors"
	"testing"
)

// fakeBackend is a map-backed tier whose failures can be switched on
type fakeBackend struct {
	name     string
	data     map[string]string
	getErr   error
	setErr   error
	delErr   error
	getCalls int
	setCalls int
	delCalls int
}

func newFake(name string) *fakeBackend {
	return &fakeBackend{name: name, data: map[string]string{}}
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Get(_ context.Context, key string) (string, error) {
	f.getCalls++
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *fakeBackend) Set(_ context.Context, key, value string) error {
	f.setCalls++
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

func (f *fakeBackend) Delete(_ context.Context, key string) error {
	f.delCalls++
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.data, key)
	return nil
}

func TestChainGet_RemoteHitCachesLocally(t *testing.T) {
	remote, local, memory := newFake(TierRemote), newFake(TierLocal), newFake(TierMemory)
	remote.data["k"] = "remote-value"
	local.data["k"] = "stale"

	c := NewChain(remote, local, memory)
	v, err := c.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v != "remote-value" {
		t.Errorf("Expected remote value, got %q", v)
	}
	if local.data["k"] != "remote-value" {
		t.Errorf("Expected remote value to be copied locally, got %q", local.data["k"])
	}
	if local.getCalls != 0 {
		t.Errorf("Local tier should not be read on remote hit")
	}
}

func TestChainGet_LocalCacheFailureIgnored(t *testing.T) {
	remote, local, memory := newFake(TierRemote), newFake(TierLocal), newFake(TierMemory)
	remote.data["k"] = "v"
	local.setErr = ErrQuotaExceeded

	c := NewChain(remote, local, memory)
	v, err := c.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("Expected remote hit despite local failure, got %v", err)
	}
	if v != "v" {
		t.Errorf("Expected 'v', got %q", v)
	}
}

func TestChainGet_Fallbacks(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(remote, local, memory *fakeBackend)
		noRemote  bool
		expected  string
		expectErr error
	}{
		{
			name: "remote unavailable falls back to local",
			setup: func(remote, local, memory *fakeBackend) {
				remote.getErr = ErrUnavailable
				local.data["k"] = "local"
			},
			expected: "local",
		},
		{
			name: "remote missing falls back to local",
			setup: func(remote, local, memory *fakeBackend) {
				local.data["k"] = "local"
			},
			expected: "local",
		},
		{
			name: "local unavailable falls back to memory",
			setup: func(remote, local, memory *fakeBackend) {
				remote.getErr = ErrUnavailable
				local.getErr = ErrUnavailable
				memory.data["k"] = "memory"
			},
			expected: "memory",
		},
		{
			name: "local missing falls back to memory",
			setup: func(remote, local, memory *fakeBackend) {
				memory.data["k"] = "memory"
			},
			expected: "memory",
		},
		{
			name:     "no remote configured",
			noRemote: true,
			setup: func(remote, local, memory *fakeBackend) {
				local.data["k"] = "local"
			},
			expected: "local",
		},
		{
			name: "absent everywhere",
			setup: func(remote, local, memory *fakeBackend) {
				remote.getErr = ErrUnavailable
				local.getErr = ErrUnavailable
			},
			expectErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote, local, memory := newFake(TierRemote), newFake(TierLocal), newFake(TierMemory)
			tt.setup(remote, local, memory)

			var c *Chain
			if tt.noRemote {
				c = NewChain(nil, local, memory)
			} else {
				c = NewChain(remote, local, memory)
			}

			v, err := c.Get(context.Background(), "k")
			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Fatalf("Expected %v, got %v", tt.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if v != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, v)
			}
		})
	}
}

func TestChainSet_RemoteFailureNotPropagated(t *testing.T) {
	remote, local, memory := newFake(TierRemote), newFake(TierLocal), newFake(TierMemory)
	remote.setErr = ErrUnavailable

	c := NewChain(remote, local, memory)
	if err := c.Set(context.Background(), "k", "v"); err != nil {
		t.Fatalf("Set should not fail when only remote fails: %v", err)
	}
	if local.data["k"] != "v" {
		t.Errorf("Expected local write, got %q", local.data["k"])
	}
	if memory.setCalls != 0 {
		t.Errorf("Memory tier should not be written when local succeeds")
	}
}

func TestChainSet_LocalQuotaFallsBackToMemory(t *testing.T) {
	remote, local, memory := newFake(TierRemote), newFake(TierLocal), newFake(TierMemory)
	local.setErr = ErrQuotaExceeded

	c := NewChain(remote, local, memory)
	if err := c.Set(context.Background(), "k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if memory.data["k"] != "v" {
		t.Errorf("Expected memory write after local failure, got %q", memory.data["k"])
	}
	if remote.data["k"] != "v" {
		t.Errorf("Expected remote write to be attempted independently")
	}
}

func TestChainDelete_AllTiers(t *testing.T) {
	remote, local, memory := newFake(TierRemote), newFake(TierLocal), newFake(TierMemory)
	remote.delErr = ErrUnavailable
	local.data["k"] = "v"
	memory.data["k"] = "v"

	c := NewChain(remote, local, memory)
	if err := c.Delete(context.Background(), "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := local.data["k"]; ok {
		t.Error("Expected key removed from local tier")
	}
	if _, ok := memory.data["k"]; ok {
		t.Error("Expected key removed from memory tier")
	}
}

func TestChainObserver(t *testing.T) {
	remote, local, memory := newFake(TierRemote), newFake(TierLocal), newFake(TierMemory)
	remote.setErr = ErrUnavailable

	var results []string
	c := NewChain(remote, local, memory)
	c.SetObserver(func(tier, op, result string) {
		results = append(results, tier+":"+op+":"+result)
	})

	_ = c.Set(context.Background(), "k", "v")

	expected := []string{"remote:set:unavailable", "local:set:ok"}
	if len(results) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, results)
	}
	for i := range expected {
		if results[i] != expected[i] {
			t.Errorf("Observation %d: expected %q, got %q", i, expected[i], results[i])
		}
	}
}

func TestKeys(t *testing.T) {
	k := Keys{OrgID: "acme"}

	if got := k.Meetings(); got != "acme_meetings" {
		t.Errorf("Meetings() = %q", got)
	}
	if got := k.PastMeetings(); got != "acme_past_meetings" {
		t.Errorf("PastMeetings() = %q", got)
	}
	if got := k.UserSession(); got != "acme_user_session" {
		t.Errorf("UserSession() = %q", got)
	}
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	_ = m.Set(ctx, "k", "v")
	if v, err := m.Get(ctx, "k"); err != nil || v != "v" {
		t.Fatalf("Expected 'v', got %q (%v)", v, err)
	}
	if m.Len() != 1 {
		t.Errorf("Expected 1 item, got %d", m.Len())
	}

	_ = m.Delete(ctx, "k")
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestResult(t *testing.T) {
	tests := map[string]error{
		"ok":             nil,
		"not_found":      ErrNotFound,
		"unavailable":    ErrUnavailable,
		"quota_exceeded": ErrQuotaExceeded,
		"error":          errors.New("boom"),
	}
	for expected, err := range tests {
		if got := Result(err); got != expected {
			t.Errorf("Result(%v) = %q, want %q", err, got, expected)
		}
	}
}
