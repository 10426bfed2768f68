package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Transition results for story_transitions_total.
const (
	transitionAccepted  = "accepted"
	transitionCompleted = "completed"
	transitionInvalid   = "invalid"
	transitionRejected  = "rejected" // completed session or lost race
)

var (
	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "story_transitions_total",
			Help: "Total number of advance attempts by result.",
		},
		[]string{"result"},
	)

	driftRecoveriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "story_drift_recoveries_total",
		Help: "Total number of sessions reset to act 1 because their current act was missing.",
	})

	sessionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "story_sessions_created_total",
		Help: "Total number of created player sessions.",
	})

	eventPublishFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "story_event_publish_failures_total",
		Help: "Total number of session events that could not be published.",
	})
)
