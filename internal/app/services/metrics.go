package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ApplicationMetrics counts application submissions and status transitions
type ApplicationMetrics struct {
	Submitted   prometheus.Counter
	Transitions *prometheus.CounterVec
}

// NewApplicationMetrics creates the counters and registers them with reg.
// A nil registerer leaves them unregistered, which tests rely on.
func NewApplicationMetrics(reg prometheus.Registerer) *ApplicationMetrics {
	m := &ApplicationMetrics{
		Submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "careercompass",
			Name:      "applications_submitted_total",
			Help:      "Number of submitted applications.",
		}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careercompass",
			Name:      "application_transitions_total",
			Help:      "Number of application status changes by target status.",
		}, []string{"to"}),
	}
	if reg != nil {
		reg.MustRegister(m.Submitted, m.Transitions)
	}
	return m
}
