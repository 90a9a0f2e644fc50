package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"meetingroom/internal/models"
)

var testStaff = []models.Staff{
	{StaffCode: "NV001", Name: "Nguyen Van An", Title: "Backend Engineer"},
	{StaffCode: "NV002", Name: "Tran Thi Binh", Title: "Product Owner"},
	{StaffCode: "QA010", Name: "Le Van Cuong", Title: "Tester"},
}

func TestStaffDirectory_FindByCode(t *testing.T) {
	d := NewStaffDirectory(testStaff)

	s, ok := d.FindByCode("NV002")
	if !ok || s.Name != "Tran Thi Binh" {
		t.Fatalf("Expected NV002, got %+v (%v)", s, ok)
	}

	// Returned entry is a copy
	s.Name = "changed"
	again, _ := d.FindByCode("NV002")
	if again.Name != "Tran Thi Binh" {
		t.Error("FindByCode leaked internal state")
	}

	if _, ok := d.FindByCode("nv002"); ok {
		t.Error("Codes must match exactly")
	}
}

func TestStaffDirectory_Search(t *testing.T) {
	d := NewStaffDirectory(testStaff)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"blank", "   ", 0},
		{"by code", "nv00", 2},
		{"by name", "binh", 1},
		{"by title", "ENGINEER", 1},
		{"no match", "zzz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Search(tt.query)
			if got == nil {
				t.Fatal("Search must return an empty slice, not nil")
			}
			if len(got) != tt.want {
				t.Errorf("Search(%q) returned %d, want %d", tt.query, len(got), tt.want)
			}
		})
	}
}

func TestStaffDirectory_RemoteTakesPrecedence(t *testing.T) {
	d := NewStaffDirectory(testStaff)

	d.SetRemote([]models.Staff{{StaffCode: "R1", Name: "Remote Person"}})
	if _, ok := d.FindByCode("NV001"); ok {
		t.Error("Static entries must be hidden while a remote list is loaded")
	}
	if len(d.All()) != 1 {
		t.Errorf("Expected remote list only, got %d entries", len(d.All()))
	}

	d.SetRemote(nil)
	if _, ok := d.FindByCode("NV001"); !ok {
		t.Error("Static list must return once the remote list is cleared")
	}
}

func TestStaffDirectory_DefaultStaff(t *testing.T) {
	d := NewStaffDirectory(nil)
	if len(d.All()) != len(DefaultStaff()) {
		t.Errorf("Expected default staff list")
	}
}

func TestStaffDirectory_FetchRemote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/staff.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]models.Staff{{StaffCode: "R9", Name: "Remote Nine"}})
	}))
	defer server.Close()

	d := NewStaffDirectory(testStaff)
	if err := d.FetchRemote(context.Background(), server.URL+"/staff.json", time.Second); err != nil {
		t.Fatalf("FetchRemote failed: %v", err)
	}
	if s, ok := d.FindByCode("R9"); !ok || s.Name != "Remote Nine" {
		t.Errorf("Expected remote entry, got %+v", s)
	}

	if err := d.FetchRemote(context.Background(), server.URL+"/missing", time.Second); err == nil {
		t.Error("Expected error for 404")
	}
	// A failed fetch keeps the previous list
	if _, ok := d.FindByCode("R9"); !ok {
		t.Error("Failed fetch must not clear the remote list")
	}
}

func TestStaffDirectory_WatchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "staff.yaml")
	if err := os.WriteFile(path, []byte("- staff_code: F1\n  name: First\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	d := NewStaffDirectory(testStaff)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.WatchFile(ctx, path); err != nil {
		t.Fatalf("WatchFile failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("staff:\n  - staff_code: F2\n    name: Second\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := d.FindByCode("F2"); ok {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("Expected staff list to reload after the file changed")
}
