package services

import (
	"crypto/subtle"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AttemptLimiter throttles meeting password attempts per meeting id
type AttemptLimiter struct {
	limiters *sync.Map // map[string]*rate.Limiter
	every    time.Duration
	burst    int
}

// NewAttemptLimiter allows burst attempts per meeting, refilling one every interval
func NewAttemptLimiter(burst int, every time.Duration) *AttemptLimiter {
	if burst < 1 {
		burst = 1
	}
	if every <= 0 {
		every = 10 * time.Second
	}
	return &AttemptLimiter{
		limiters: &sync.Map{},
		every:    every,
		burst:    burst,
	}
}

// Allow consumes one attempt for the meeting and reports whether it was permitted
func (al *AttemptLimiter) Allow(meetingID string) bool {
	return al.getOrCreate(meetingID).Allow()
}

// Forget drops the limiter of a meeting that left the active collection
func (al *AttemptLimiter) Forget(meetingID string) {
	al.limiters.Delete(meetingID)
}

// Retain drops the limiters of every meeting not in active
func (al *AttemptLimiter) Retain(active map[string]struct{}) {
	al.limiters.Range(func(key, _ any) bool {
		if _, ok := active[key.(string)]; !ok {
			al.limiters.Delete(key)
		}
		return true
	})
}

// Len returns the number of tracked meetings
func (al *AttemptLimiter) Len() int {
	n := 0
	al.limiters.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (al *AttemptLimiter) getOrCreate(meetingID string) *rate.Limiter {
	if limiter, ok := al.limiters.Load(meetingID); ok {
		return limiter.(*rate.Limiter)
	}

	newLimiter := rate.NewLimiter(rate.Every(al.every), al.burst)

	// Another goroutine may have created it first
	actual, _ := al.limiters.LoadOrStore(meetingID, newLimiter)
	return actual.(*rate.Limiter)
}

// passwordsEqual compares in constant time
func passwordsEqual(expected, given string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(given)) == 1
}
