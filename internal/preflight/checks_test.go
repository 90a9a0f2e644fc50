package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"meetingroom/internal/config"
	"meetingroom/internal/storage"
)

type downStore struct{}

func (downStore) Name() string { return storage.TierRemote }
func (downStore) Get(context.Context, string) (string, error) {
	return "", storage.ErrUnavailable
}
func (downStore) Set(context.Context, string, string) error { return storage.ErrUnavailable }
func (downStore) Delete(context.Context, string) error     { return storage.ErrUnavailable }

func testConfig() *config.Config {
	return &config.Config{
		OrgID:            "acme",
		LocalStore:       config.LocalStoreSQLite,
		RemoteStorageURL: "http://storage.invalid",
	}
}

func TestCheckLocalStore(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name  string
		local storage.Backend
		want  string
	}{
		{name: "reachable", local: storage.NewMemoryStore(), want: "pass"},
		{name: "unreachable", local: downStore{}, want: "fail"},
		{name: "missing", local: nil, want: "fail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewChecker(cfg, tt.local, nil).checkLocalStore(context.Background())
			if result.Status != tt.want {
				t.Errorf("Expected status '%s', got '%s' (%s)", tt.want, result.Status, result.Message)
			}
		})
	}
}

func TestCheckRemoteStore_NeverFails(t *testing.T) {
	cfg := testConfig()
	local := storage.NewMemoryStore()

	if r := NewChecker(cfg, local, nil).checkRemoteStore(context.Background()); r.Status != "warning" {
		t.Errorf("Expected warning without a remote store, got '%s'", r.Status)
	}

	r := NewChecker(cfg, local, downStore{}).checkRemoteStore(context.Background())
	if r.Status != "warning" {
		t.Errorf("Expected warning for an unreachable remote store, got '%s'", r.Status)
	}
	if r.Error == nil {
		t.Error("Expected error to be set")
	}

	if r := NewChecker(cfg, local, storage.NewMemoryStore()).checkRemoteStore(context.Background()); r.Status != "pass" {
		t.Errorf("Expected pass for a reachable remote store, got '%s'", r.Status)
	}
}

func TestCheckStaffData(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "staff.yaml")
	if err := os.WriteFile(good, []byte("- staff_code: NV001\n  name: An Nguyen\n"), 0o644); err != nil {
		t.Fatalf("Failed to write staff file: %v", err)
	}

	tests := []struct {
		name string
		file string
		want string
	}{
		{name: "not configured", file: "", want: "warning"},
		{name: "missing file", file: filepath.Join(dir, "nope.yaml"), want: "warning"},
		{name: "valid file", file: good, want: "pass"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.StaffDataFile = tt.file
			result := NewChecker(cfg, storage.NewMemoryStore(), nil).checkStaffData()
			if result.Status != tt.want {
				t.Errorf("Expected status '%s', got '%s' (%s)", tt.want, result.Status, result.Message)
			}
		})
	}
}

func TestRunAll(t *testing.T) {
	cfg := testConfig()
	cfg.AuthUsername = "desk"

	results := NewChecker(cfg, storage.NewMemoryStore(), downStore{}).RunAll(context.Background())
	if len(results) != 4 {
		t.Fatalf("Expected 4 results, got %d", len(results))
	}
	if HasFailures(results) {
		t.Errorf("Expected no failures with a reachable local store, got %+v", results)
	}

	results = NewChecker(cfg, downStore{}, nil).RunAll(context.Background())
	if !HasFailures(results) {
		t.Error("Expected a failure when the local store is unreachable")
	}
}
