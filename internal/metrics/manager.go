package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests          *prometheus.CounterVec
	CounterSetsCompleted     *prometheus.CounterVec
	CounterWorkoutsFinalized prometheus.Counter
	CounterRewardsAwarded    prometheus.Counter
	CounterRecordsImported   *prometheus.CounterVec

	// gauges
	GaugeLiveSessions prometheus.Gauge

	// histograms
	HistRequestDuration prometheus.Histogram
	HistWorkoutScore    prometheus.Histogram
	HistSetScore        prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("repscore", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("repscore", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterSetsCompleted := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "sets_completed",
		Help:      "The total number of completed sets",
	}, []string{"exercise", "feedback"})
	counterWorkoutsFinalized := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "workouts_finalized",
		Help:      "The total number of finished workouts",
	})
	counterRewardsAwarded := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rewards_awarded",
		Help:      "The total number of workouts that earned rewards",
	})
	counterRecordsImported := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "records_imported",
		Help:      "Imported export records by kind and outcome",
	}, []string{"kind", "outcome"})

	gaugeLiveSessions := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "live_sessions",
		Help:      "Current number of workouts in progress",
	})

	histReqDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets: []float64{
				0.0001, 0.0005, 0.001, 0.005, 0.01,
				0.05, 0.1, 0.5, 1, 5,
			},
			Name: "request_duration_seconds",
			Help: "Total duration of requests in seconds",
		},
	)
	histWorkoutScore := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
			Name:      "workout_score",
			Help:      "Overall score of finished workouts",
		},
	)
	histSetScore := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
			Name:      "set_score",
			Help:      "Score of completed sets",
		},
	)

	return &Manager{
		CounterRequests:          counterRequests,
		CounterSetsCompleted:     counterSetsCompleted,
		CounterWorkoutsFinalized: counterWorkoutsFinalized,
		CounterRewardsAwarded:    counterRewardsAwarded,
		CounterRecordsImported:   counterRecordsImported,
		GaugeLiveSessions:        gaugeLiveSessions,
		HistRequestDuration:      histReqDuration,
		HistWorkoutScore:         histWorkoutScore,
		HistSetScore:             histSetScore,
	}
}
