package services

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"meetingroom/internal/models"
)

// UnknownIDPolicy decides what update and delete do with ids that are not active
type UnknownIDPolicy string

const (
	// UnknownIDIgnore makes update/delete of unknown ids a silent no-op
	UnknownIDIgnore UnknownIDPolicy = "ignore"
	// UnknownIDReport returns ErrMeetingNotFound
	UnknownIDReport UnknownIDPolicy = "report"
)

// Valid reports whether p is a known policy
func (p UnknownIDPolicy) Valid() bool {
	return p == UnknownIDIgnore || p == UnknownIDReport
}

// DefaultMeetingDuration is applied when a submission has no end time
const DefaultMeetingDuration = time.Hour

// MeetingServiceConfig tunes validation of the lifecycle engine
type MeetingServiceConfig struct {
	UnknownIDPolicy     UnknownIDPolicy
	RejectInvertedRange bool
	DefaultDuration     time.Duration
}

// StaffLookup resolves staff codes to directory entries
type StaffLookup interface {
	FindByCode(code string) (*models.Staff, bool)
}

// ChangeSet tells listeners which collections were modified
type ChangeSet struct {
	Active bool
	Past   bool
}

// Any reports whether anything changed
func (c ChangeSet) Any() bool {
	return c.Active || c.Past
}

// ChangeListener is called after a mutation, outside the engine lock
type ChangeListener func(ChangeSet)

// MeetingService owns the active and historical meeting collections.
// Every mutation runs under a single lock; readers receive copies.
type MeetingService struct {
	mu     sync.Mutex
	active []models.Meeting
	past   []models.HistoricalMeeting

	cfg   MeetingServiceConfig
	staff StaffLookup
	pool  *PasswordPool
	now   func() time.Time
	newID func() string

	listenersMu sync.RWMutex
	listeners   []ChangeListener
}

// MeetingServiceOption customises a MeetingService
type MeetingServiceOption func(*MeetingService)

// WithClock overrides the time source
func WithClock(now func() time.Time) MeetingServiceOption {
	return func(s *MeetingService) { s.now = now }
}

// WithIDGenerator overrides meeting id generation
func WithIDGenerator(newID func() string) MeetingServiceOption {
	return func(s *MeetingService) { s.newID = newID }
}

// WithPasswordPool overrides the password pool
func WithPasswordPool(pool *PasswordPool) MeetingServiceOption {
	return func(s *MeetingService) { s.pool = pool }
}

// WithStaffLookup sets the directory used to snapshot staff on create
func WithStaffLookup(staff StaffLookup) MeetingServiceOption {
	return func(s *MeetingService) { s.staff = staff }
}

// NewMeetingService creates an empty engine
func NewMeetingService(cfg MeetingServiceConfig, opts ...MeetingServiceOption) *MeetingService {
	if cfg.UnknownIDPolicy == "" {
		cfg.UnknownIDPolicy = UnknownIDIgnore
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = DefaultMeetingDuration
	}

	s := &MeetingService{
		active: []models.Meeting{},
		past:   []models.HistoricalMeeting{},
		cfg:    cfg,
		pool:   NewPasswordPool(nil),
		now:    time.Now,
		newID:  newMeetingID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newMeetingID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Now returns the engine clock's current time
func (s *MeetingService) Now() time.Time {
	return s.now()
}

// OnChange registers a listener for collection changes
func (s *MeetingService) OnChange(l ChangeListener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *MeetingService) notify(cs ChangeSet) {
	if !cs.Any() {
		return
	}
	s.listenersMu.RLock()
	listeners := make([]ChangeListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.RUnlock()

	for _, l := range listeners {
		l(cs)
	}
}

// Create validates a submission and appends it to the active collection.
// Password uniqueness is not checked here; the pool guarantees it for generated codes.
func (s *MeetingService) Create(req *models.CreateMeetingRequest) (*models.Meeting, error) {
	if req == nil {
		return nil, newValidationError("body", "request body is required")
	}

	content := strings.TrimSpace(req.Content)
	staffCode := strings.TrimSpace(req.StaffCode)
	password := strings.TrimSpace(req.MeetingPassword)

	if content == "" {
		return nil, newValidationError("content", "content is required")
	}
	if staffCode == "" {
		return nil, newValidationError("staff_code", "staff code is required")
	}
	if req.StartTime == nil || req.StartTime.IsZero() {
		return nil, newValidationError("start_time", "start time is required")
	}
	if password == "" {
		return nil, newValidationError("meeting_password", "meeting password is required")
	}

	room := req.Room
	if room == "" {
		room = models.RoomLarge
	}
	if !room.Valid() {
		return nil, newValidationError("room", fmt.Sprintf("unknown room %q", room))
	}

	team := req.Team
	if team == "" {
		team = models.TeamSquad1
	}
	if !team.Valid() {
		return nil, newValidationError("team", fmt.Sprintf("unknown team %q", team))
	}

	start := req.StartTime.UTC()
	var end time.Time
	if req.EndTime != nil && !req.EndTime.IsZero() {
		end = req.EndTime.UTC()
	} else {
		end = start.Add(s.cfg.DefaultDuration)
	}
	if s.cfg.RejectInvertedRange && end.Before(start) {
		return nil, newValidationError("end_time", "end time must not be before start time")
	}

	var staff *models.Staff
	if s.staff != nil {
		if entry, ok := s.staff.FindByCode(staffCode); ok {
			staff = entry
		}
	}

	s.mu.Lock()
	now := s.now().UTC()
	meeting := models.Meeting{
		ID:              s.newID(),
		StartTime:       start,
		EndTime:         end,
		Room:            room,
		Content:         content,
		StaffCode:       staffCode,
		Team:            team,
		MeetingPassword: password,
		CreatedAt:       now,
		UpdatedAt:       now,
		Staff:           staff,
	}
	s.active = append(s.active, meeting)
	s.mu.Unlock()

	log.Printf("📅 [MEETINGS] Created meeting %s in %s (%s → %s)", meeting.ID, room, start.Format(time.RFC3339), end.Format(time.RFC3339))
	s.notify(ChangeSet{Active: true})

	return &meeting, nil
}

func (s *MeetingService) unknownID(id string) error {
	if s.cfg.UnknownIDPolicy == UnknownIDReport {
		return fmt.Errorf("%w: %s", ErrMeetingNotFound, id)
	}
	return nil
}

// indexOfActive must be called with the lock held
func (s *MeetingService) indexOfActive(id string) int {
	for i := range s.active {
		if s.active[i].ID == id {
			return i
		}
	}
	return -1
}

// inPast must be called with the lock held
func (s *MeetingService) inPast(id string) bool {
	for i := range s.past {
		if s.past[i].ID == id {
			return true
		}
	}
	return false
}

// Update replaces the content of an active meeting.
// Unknown ids follow the configured policy; under "ignore" the result is (nil, nil).
func (s *MeetingService) Update(id string, patch *models.UpdateMeetingRequest) (*models.Meeting, error) {
	if patch == nil || patch.Content == nil {
		return nil, newValidationError("content", "content is required")
	}
	content := strings.TrimSpace(*patch.Content)
	if content == "" {
		return nil, newValidationError("content", "content is required")
	}

	s.mu.Lock()
	idx := s.indexOfActive(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, s.unknownID(id)
	}
	s.active[idx].Content = content
	s.active[idx].UpdatedAt = s.now().UTC()
	updated := s.active[idx]
	s.mu.Unlock()

	log.Printf("✏️  [MEETINGS] Updated meeting %s", id)
	s.notify(ChangeSet{Active: true})
	return &updated, nil
}

// Delete moves an active meeting to history with status "deleted".
// Unknown ids follow the configured policy.
func (s *MeetingService) Delete(id string) error {
	s.mu.Lock()
	idx := s.indexOfActive(id)
	if idx < 0 {
		s.mu.Unlock()
		return s.unknownID(id)
	}

	meeting := s.active[idx]
	s.active = append(s.active[:idx], s.active[idx+1:]...)

	cs := ChangeSet{Active: true}
	if !s.inPast(id) {
		s.past = append(s.past, meeting.Archive(models.StatusDeleted, s.now().UTC()))
		cs.Past = true
	}
	s.mu.Unlock()

	log.Printf("🗑️  [MEETINGS] Deleted meeting %s", id)
	s.notify(cs)
	return nil
}

// SweepResult counts the outcome of one sweep. Moved meetings whose id was
// already historical leave the active collection without a new record.
type SweepResult struct {
	Moved    int
	Archived int
}

// SweepExpired moves every meeting that ended before now to history as
// "completed" and returns how many left the active collection.
func (s *MeetingService) SweepExpired(now time.Time) int {
	return s.Sweep(now).Moved
}

// Sweep is SweepExpired reporting how many historical records were written
func (s *MeetingService) Sweep(now time.Time) SweepResult {
	s.mu.Lock()
	kept := make([]models.Meeting, 0, len(s.active))
	var res SweepResult
	at := now.UTC()

	for _, m := range s.active {
		if !m.IsExpired(now) {
			kept = append(kept, m)
			continue
		}
		res.Moved++
		if !s.inPast(m.ID) {
			s.past = append(s.past, m.Archive(models.StatusCompleted, at))
			res.Archived++
		}
	}

	if res.Moved == 0 {
		s.mu.Unlock()
		return res
	}
	s.active = kept
	s.mu.Unlock()

	log.Printf("⏰ [SWEEP] Moved %d expired meeting(s) to history", res.Moved)
	s.notify(ChangeSet{Active: true, Past: res.Archived > 0})
	return res
}

// Get returns a copy of one active meeting
func (s *MeetingService) Get(id string) (*models.Meeting, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfActive(id)
	if idx < 0 {
		return nil, false
	}
	m := s.active[idx]
	return &m, true
}

// GetPast returns a copy of one historical meeting
func (s *MeetingService) GetPast(id string) (*models.HistoricalMeeting, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.past {
		if s.past[i].ID == id {
			h := s.past[i]
			return &h, true
		}
	}
	return nil, false
}

// Active returns a copy of the active collection in insertion order
func (s *MeetingService) Active() []models.Meeting {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Meeting, len(s.active))
	copy(out, s.active)
	return out
}

// Past returns a copy of the historical collection in insertion order
func (s *MeetingService) Past() []models.HistoricalMeeting {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.HistoricalMeeting, len(s.past))
	copy(out, s.past)
	return out
}

// Current returns active meetings that have not ended at now
func (s *MeetingService) Current(now time.Time) []models.Meeting {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Meeting, 0, len(s.active))
	for _, m := range s.active {
		if !m.IsExpired(now) {
			out = append(out, m)
		}
	}
	return out
}

// Counts returns the sizes of both collections
func (s *MeetingService) Counts() (active, past int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active), len(s.past)
}

// MergeActive appends incoming records whose ids are neither active nor
// historical. In-memory records win. Returns the number added.
func (s *MeetingService) MergeActive(incoming []models.Meeting) int {
	s.mu.Lock()
	seen := make(map[string]struct{}, len(s.active)+len(s.past))
	for i := range s.active {
		seen[s.active[i].ID] = struct{}{}
	}
	for i := range s.past {
		seen[s.past[i].ID] = struct{}{}
	}

	added := 0
	for _, m := range incoming {
		if m.ID == "" {
			continue
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		s.active = append(s.active, m)
		added++
	}
	s.mu.Unlock()

	if added > 0 {
		s.notify(ChangeSet{Active: true})
	}
	return added
}

// MergePast appends incoming historical records with unseen ids, then drops
// any active record whose id is now historical. Returns the number added.
func (s *MeetingService) MergePast(incoming []models.HistoricalMeeting) int {
	s.mu.Lock()
	seen := make(map[string]struct{}, len(s.past))
	for i := range s.past {
		seen[s.past[i].ID] = struct{}{}
	}

	added := 0
	for _, h := range incoming {
		if h.ID == "" {
			continue
		}
		if _, dup := seen[h.ID]; dup {
			continue
		}
		seen[h.ID] = struct{}{}
		s.past = append(s.past, h)
		added++
	}

	cs := ChangeSet{Past: added > 0}
	if added > 0 {
		kept := s.active[:0:0]
		for _, m := range s.active {
			if _, archived := seen[m.ID]; archived {
				cs.Active = true
				continue
			}
			kept = append(kept, m)
		}
		if cs.Active {
			s.active = kept
		}
	}
	s.mu.Unlock()

	s.notify(cs)
	return added
}

// ActivePasswords returns the passwords held by current meetings
func (s *MeetingService) ActivePasswords(now time.Time) map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ActivePasswords(s.active, now)
}

// GeneratePassword returns a code no current meeting holds
func (s *MeetingService) GeneratePassword(now time.Time) (string, error) {
	return s.pool.Generate(s.ActivePasswords(now))
}

// PoolStats reports password usage at now
func (s *MeetingService) PoolStats(now time.Time) PoolStats {
	return s.pool.Stats(s.ActivePasswords(now))
}

// CheckPassword verifies the password of an active meeting
func (s *MeetingService) CheckPassword(id, password string) error {
	m, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMeetingNotFound, id)
	}
	if !passwordsEqual(m.MeetingPassword, strings.TrimSpace(password)) {
		return ErrWrongPassword
	}
	return nil
}
