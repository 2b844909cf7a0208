package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mdsq"

// Metrics holds the domain counters exported on /metrics.
type Metrics struct {
	CascadeDeletes   *prometheus.CounterVec
	PlanReplacements prometheus.Counter
	CheckIns         prometheus.Counter
	PermissionDenied *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg skips
// registration, which tests use to get isolated counters.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CascadeDeletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cascade_deletes_total",
			Help:      "Directory entities removed through a cascading delete.",
		}, []string{"entity"}),
		PlanReplacements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_replacements_total",
			Help:      "Service itineraries replaced.",
		}),
		CheckIns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkins_total",
			Help:      "Attendance check-ins recorded.",
		}),
		PermissionDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "permission_denied_total",
			Help:      "Scheduling mutations rejected by the role gate.",
		}, []string{"operation"}),
	}
	if reg != nil {
		reg.MustRegister(m.CascadeDeletes, m.PlanReplacements, m.CheckIns, m.PermissionDenied)
	}
	return m
}

// Nop returns unregistered collectors.
func Nop() *Metrics {
	return New(nil)
}
