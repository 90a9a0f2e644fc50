package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"meetingroom/internal/models"
	"meetingroom/internal/storage"
)

// KeyValueStore is the storage surface the orchestrator writes through
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// PersistenceService loads both meeting collections at startup and writes
// them back whenever the engine reports a change. It never writes before the
// initial load has completed and skips writes identical to its previous one.
type PersistenceService struct {
	store    KeyValueStore
	keys     storage.Keys
	meetings *MeetingService
	timeout  time.Duration

	mu        sync.Mutex
	loaded    bool
	lastSaved map[string]string
}

// NewPersistenceService wires the orchestrator to the engine's change notifications
func NewPersistenceService(store KeyValueStore, keys storage.Keys, meetings *MeetingService, timeout time.Duration) *PersistenceService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	p := &PersistenceService{
		store:     store,
		keys:      keys,
		meetings:  meetings,
		timeout:   timeout,
		lastSaved: make(map[string]string),
	}
	meetings.OnChange(p.handleChange)
	return p
}

// Loaded reports whether the initial load has completed
func (p *PersistenceService) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

// Load reads both collections, merges them into the engine and persists the
// merged result where it differs from what was read. Unparseable data is
// logged and treated as empty.
func (p *PersistenceService) Load(ctx context.Context) error {
	activeKey := p.keys.Meetings()
	pastKey := p.keys.PastMeetings()

	rawPast, pastFound := p.read(ctx, pastKey)
	rawActive, activeFound := p.read(ctx, activeKey)

	past, err := ParseHistoricalMeetings(pastKey, rawPast)
	if err != nil {
		log.Printf("⚠️  [PERSIST] %v, starting with empty history", err)
	}
	active, err := ParseMeetings(activeKey, rawActive)
	if err != nil {
		log.Printf("⚠️  [PERSIST] %v, starting with no active meetings", err)
	}

	addedPast := p.meetings.MergePast(past)
	addedActive := p.meetings.MergeActive(active)
	log.Printf("📥 [PERSIST] Loaded %d active and %d historical meeting(s)", addedActive, addedPast)

	p.mu.Lock()
	p.loaded = true
	if activeFound {
		if v, err := serialize(p.meetings.Active()); err == nil && v == rawActive {
			p.lastSaved[activeKey] = rawActive
		}
	}
	if pastFound {
		if v, err := serialize(p.meetings.Past()); err == nil && v == rawPast {
			p.lastSaved[pastKey] = rawPast
		}
	}
	p.mu.Unlock()

	return p.persist(ctx, ChangeSet{Active: true, Past: true})
}

func (p *PersistenceService) read(ctx context.Context, key string) (string, bool) {
	v, err := p.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("⚠️  [PERSIST] Failed to read %s: %v", key, err)
		}
		return "", false
	}
	return v, true
}

// Flush persists both collections; used at shutdown
func (p *PersistenceService) Flush(ctx context.Context) error {
	return p.persist(ctx, ChangeSet{Active: true, Past: true})
}

func (p *PersistenceService) handleChange(cs ChangeSet) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.persist(ctx, cs); err != nil {
		log.Printf("❌ [PERSIST] Failed to persist changes: %v", err)
	}
}

func (p *PersistenceService) persist(ctx context.Context, cs ChangeSet) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		return nil
	}

	var errs []error
	if cs.Active {
		if err := p.saveLocked(ctx, p.keys.Meetings(), p.meetings.Active()); err != nil {
			errs = append(errs, err)
		}
	}
	if cs.Past {
		if err := p.saveLocked(ctx, p.keys.PastMeetings(), p.meetings.Past()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *PersistenceService) saveLocked(ctx context.Context, key string, collection any) error {
	value, err := serialize(collection)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", key, err)
	}
	if last, ok := p.lastSaved[key]; ok && last == value {
		return nil
	}

	if err := p.store.Set(ctx, key, value); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	p.lastSaved[key] = value
	log.Printf("💾 [PERSIST] Saved %s (%d bytes)", key, len(value))
	return nil
}

func serialize(collection any) (string, error) {
	data, err := json.Marshal(collection)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParseMeetings decodes a persisted active collection. Empty input is an empty collection.
func ParseMeetings(key, raw string) ([]models.Meeting, error) {
	if raw == "" {
		return nil, nil
	}
	var out []models.Meeting
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &ParseError{Key: key, Err: err}
	}
	return out, nil
}

// ParseHistoricalMeetings decodes a persisted history collection
func ParseHistoricalMeetings(key, raw string) ([]models.HistoricalMeeting, error) {
	if raw == "" {
		return nil, nil
	}
	var out []models.HistoricalMeeting
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &ParseError{Key: key, Err: err}
	}
	return out, nil
}
