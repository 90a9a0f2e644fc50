package services

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-resty/resty/v2"

	"meetingroom/internal/config"
	"meetingroom/internal/models"
)

// StaffDirectory resolves staff codes. A non-empty remote list takes
// precedence over the static list.
type StaffDirectory struct {
	mu     sync.RWMutex
	remote []models.Staff
	static []models.Staff
}

// NewStaffDirectory creates a directory over a static list; nil uses DefaultStaff
func NewStaffDirectory(static []models.Staff) *StaffDirectory {
	if static == nil {
		static = DefaultStaff()
	}
	return &StaffDirectory{static: static}
}

// DefaultStaff is the built-in list used when no staff file is configured
func DefaultStaff() []models.Staff {
	return []models.Staff{
		{StaffCode: "ADMIN", Name: "Quản trị phòng họp", Title: "Hành chính", Email: "admin@example.com"},
		{StaffCode: "GUEST", Name: "Khách", Title: "Khách mời", Email: ""},
	}
}

func (d *StaffDirectory) list() []models.Staff {
	if len(d.remote) > 0 {
		return d.remote
	}
	return d.static
}

// SetStatic replaces the static list
func (d *StaffDirectory) SetStatic(list []models.Staff) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.static = list
}

// SetRemote replaces the remote list; an empty list re-enables the static list
func (d *StaffDirectory) SetRemote(list []models.Staff) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.remote = list
}

// FindByCode returns a copy of the entry with the exact staff code
func (d *StaffDirectory) FindByCode(code string) (*models.Staff, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, s := range d.list() {
		if s.StaffCode == code {
			found := s
			return &found, true
		}
	}
	return nil, false
}

// Search matches the query case-insensitively against code, name and title.
// A blank query matches nothing.
func (d *StaffDirectory) Search(query string) []models.Staff {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []models.Staff{}
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	out := []models.Staff{}
	for _, s := range d.list() {
		if strings.Contains(strings.ToLower(s.StaffCode), q) ||
			strings.Contains(strings.ToLower(s.Name), q) ||
			strings.Contains(strings.ToLower(s.Title), q) {
			out = append(out, s)
		}
	}
	return out
}

// All returns a copy of the effective list
func (d *StaffDirectory) All() []models.Staff {
	d.mu.RLock()
	defer d.mu.RUnlock()

	src := d.list()
	out := make([]models.Staff, len(src))
	copy(out, src)
	return out
}

// FetchRemote downloads a JSON staff list and installs it as the remote list
func (d *StaffDirectory) FetchRemote(ctx context.Context, url string, timeout time.Duration) error {
	var list []models.Staff
	resp, err := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		R().
		SetContext(ctx).
		SetResult(&list).
		Get(url)
	if err != nil {
		return fmt.Errorf("failed to fetch staff list: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("staff list request returned status %d", resp.StatusCode())
	}

	d.SetRemote(list)
	log.Printf("👥 [STAFF] Loaded %d staff entries from %s", len(list), url)
	return nil
}

// WatchFile reloads the static list whenever filePath changes, until ctx is done
func (d *StaffDirectory) WatchFile(ctx context.Context, filePath string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		watcher.Close()
		return fmt.Errorf("failed to get absolute path for %s: %w", filePath, err)
	}

	// Watch the directory; editors often replace files instead of writing them
	dir := filepath.Dir(absPath)
	filename := filepath.Base(absPath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	log.Printf("👁️  [STAFF] Watching %s for changes", filePath)

	go func() {
		defer watcher.Close()

		var debounceTimer *time.Timer
		debounceDuration := 300 * time.Millisecond

		for {
			select {
			case <-ctx.Done():
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != filename {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}

				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, func() {
					list, err := config.LoadStaffFile(absPath)
					if err != nil {
						log.Printf("❌ [STAFF] Failed to reload %s: %v", filePath, err)
						return
					}
					d.SetStatic(list)
					log.Printf("🔄 [STAFF] Reloaded %d staff entries from %s", len(list), filePath)
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("⚠️  [STAFF] File watcher error: %v", err)
			}
		}
	}()

	return nil
}
