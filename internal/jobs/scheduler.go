package jobs

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Job interface that all scheduled jobs must implement
type Job interface {
	Run(ctx context.Context) error
}

// Schedule describes when a job runs: a cron expression when Cron is set,
// otherwise every Interval
type Schedule struct {
	Interval time.Duration
	Cron     string
}

func (s Schedule) String() string {
	if s.Cron != "" {
		return "cron " + s.Cron
	}
	return "every " + s.Interval.String()
}

func (s Schedule) definition() (gocron.JobDefinition, error) {
	if s.Cron != "" {
		return gocron.CronJob(s.Cron, false), nil
	}
	if s.Interval <= 0 {
		return nil, fmt.Errorf("schedule needs a cron expression or a positive interval")
	}
	return gocron.DurationJob(s.Interval), nil
}

// JobScheduler runs registered jobs on a gocron scheduler. A job never
// overlaps with itself; a run that is due while the previous one is still
// going is rescheduled.
type JobScheduler struct {
	scheduler gocron.Scheduler
	jobs      map[string]Job
	handles   map[string]gocron.Job
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	running   bool
	stopped   bool
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler() (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &JobScheduler{
		scheduler: scheduler,
		jobs:      make(map[string]Job),
		handles:   make(map[string]gocron.Job),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Register adds a job to the scheduler
func (s *JobScheduler) Register(name string, job Job, schedule Schedule) error {
	def, err := schedule.definition()
	if err != nil {
		return fmt.Errorf("job %s: %w", name, err)
	}

	handle, err := s.scheduler.NewJob(
		def,
		gocron.NewTask(func() {
			s.runJob(name, job)
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to register job %s: %w", name, err)
	}

	s.mu.Lock()
	s.jobs[name] = job
	s.handles[name] = handle
	s.mu.Unlock()

	log.Printf("✅ [SCHEDULER] Registered job: %s (%s)", name, schedule)
	return nil
}

// Start begins running all registered jobs
func (s *JobScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running || s.stopped {
		return
	}

	s.running = true
	s.scheduler.Start()
	log.Printf("🚀 [SCHEDULER] Started job scheduler with %d jobs", len(s.jobs))
}

func (s *JobScheduler) runJob(name string, job Job) {
	s.wg.Add(1)
	defer s.wg.Done()

	startTime := time.Now()
	if err := job.Run(s.ctx); err != nil {
		log.Printf("❌ [SCHEDULER] Job '%s' failed: %v", name, err)
		return
	}

	if d := time.Since(startTime); d > time.Second {
		log.Printf("🐢 [SCHEDULER] Job '%s' took %v", name, d)
	}
}

// Stop gracefully stops all jobs and waits for running ones
func (s *JobScheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.running = false
	s.mu.Unlock()

	log.Println("🛑 [SCHEDULER] Stopping job scheduler...")

	if err := s.scheduler.Shutdown(); err != nil {
		log.Printf("⚠️  [SCHEDULER] Shutdown error: %v", err)
	}
	s.cancel()
	s.wg.Wait()

	log.Println("✅ [SCHEDULER] Job scheduler stopped")
}

// RunNow runs a registered job synchronously in the caller's goroutine
func (s *JobScheduler) RunNow(name string) error {
	s.mu.Lock()
	job, exists := s.jobs[name]
	s.mu.Unlock()

	if !exists {
		return fmt.Errorf("job %q not found", name)
	}

	return job.Run(s.ctx)
}

// GetStatus returns the status of all jobs
func (s *JobScheduler) GetStatus() map[string]JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := make(map[string]JobStatus)
	for name, handle := range s.handles {
		js := JobStatus{Name: name, Registered: true}
		if next, err := handle.NextRun(); err == nil {
			js.NextRunTime = next
		}
		if last, err := handle.LastRun(); err == nil {
			js.LastRunTime = last
		}
		status[name] = js
	}

	return status
}

// JobStatus represents the status of a job
type JobStatus struct {
	Name        string    `json:"name"`
	NextRunTime time.Time `json:"next_run_time"`
	LastRunTime time.Time `json:"last_run_time"`
	Registered  bool      `json:"registered"`
}
