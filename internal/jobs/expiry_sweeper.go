package jobs

import (
	"context"
	"time"

	"meetingroom/internal/services"
)

// ExpirySweeperJobName is the scheduler name of the sweep job
const ExpirySweeperJobName = "expiry-sweeper"

// ExpirySweeper moves meetings whose end time has passed into history
type ExpirySweeper struct {
	meetings *services.MeetingService
	metrics  *services.Metrics
}

// NewExpirySweeper creates the sweep job. metrics may be nil.
func NewExpirySweeper(meetings *services.MeetingService, metrics *services.Metrics) *ExpirySweeper {
	return &ExpirySweeper{
		meetings: meetings,
		metrics:  metrics,
	}
}

// Run sweeps once using the engine clock
func (e *ExpirySweeper) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	res := e.meetings.Sweep(e.meetings.Now())

	e.metrics.RecordSweep(time.Since(start).Seconds())
	if res.Archived > 0 {
		e.metrics.RecordArchived("completed", res.Archived)
	}
	return nil
}
