package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application.
// Recording methods are no-ops on a nil receiver.
type Metrics struct {
	StorageOperations *prometheus.CounterVec
	MeetingsCreated   prometheus.Counter
	MeetingsArchived  *prometheus.CounterVec
	PasswordAttempts  *prometheus.CounterVec
	FeedMessages      *prometheus.CounterVec
	SweepDuration     prometheus.Histogram
}

// InitMetrics registers the metrics and gauges over the engine, pool and feed hub
func InitMetrics(reg prometheus.Registerer, meetings *MeetingService, hub *FeedHub) *Metrics {
	factory := promauto.With(reg)

	metrics := &Metrics{
		StorageOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "meetingroom_storage_operations_total",
			Help: "Storage tier operations by tier, operation and result",
		}, []string{"tier", "op", "result"}),

		MeetingsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "meetingroom_meetings_created_total",
			Help: "Total number of meetings booked",
		}),

		MeetingsArchived: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "meetingroom_meetings_archived_total",
			Help: "Meetings moved to history by status",
		}, []string{"status"}),

		PasswordAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "meetingroom_password_attempts_total",
			Help: "Meeting password checks by result",
		}, []string{"result"}),

		FeedMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "meetingroom_feed_messages_total",
			Help: "Messages pushed to feed subscribers by type",
		}, []string{"type"}),

		SweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "meetingroom_sweep_duration_seconds",
			Help:    "Expiry sweep duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
	}

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "meetingroom_meetings_active",
		Help: "Meetings in the active collection",
	}, func() float64 {
		if meetings == nil {
			return 0
		}
		active, _ := meetings.Counts()
		return float64(active)
	})

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "meetingroom_meetings_past",
		Help: "Meetings in the historical collection",
	}, func() float64 {
		if meetings == nil {
			return 0
		}
		_, past := meetings.Counts()
		return float64(past)
	})

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "meetingroom_passwords_free",
		Help: "Two-digit meeting passwords currently available",
	}, func() float64 {
		if meetings == nil {
			return 0
		}
		return float64(meetings.PoolStats(meetings.Now()).Free)
	})

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "meetingroom_feed_subscribers",
		Help: "Current number of meeting feed websocket subscribers",
	}, func() float64 {
		if hub == nil {
			return 0
		}
		return float64(hub.Count())
	})

	return metrics
}

// ObserveStorage matches storage.OpObserver
func (m *Metrics) ObserveStorage(tier, op, result string) {
	if m == nil {
		return
	}
	m.StorageOperations.WithLabelValues(tier, op, result).Inc()
}

// RecordMeetingCreated records a booking
func (m *Metrics) RecordMeetingCreated() {
	if m == nil {
		return
	}
	m.MeetingsCreated.Inc()
}

// RecordArchived records meetings moved to history
func (m *Metrics) RecordArchived(status string, n int) {
	if m == nil {
		return
	}
	m.MeetingsArchived.WithLabelValues(status).Add(float64(n))
}

// RecordPasswordAttempt records a password check outcome
func (m *Metrics) RecordPasswordAttempt(result string) {
	if m == nil {
		return
	}
	m.PasswordAttempts.WithLabelValues(result).Inc()
}

// RecordFeedMessage records a broadcast
func (m *Metrics) RecordFeedMessage(msgType string) {
	if m == nil {
		return
	}
	m.FeedMessages.WithLabelValues(msgType).Inc()
}

// RecordSweep records how long a sweep took
func (m *Metrics) RecordSweep(seconds float64) {
	if m == nil {
		return
	}
	m.SweepDuration.Observe(seconds)
}
