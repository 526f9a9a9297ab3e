// Package metrics defines Prometheus metrics for the dashboard.
//
// Metrics are registered with the default registry and served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Login outcomes
const (
	LoginSuccess            = "success"
	LoginInvalidCredentials = "invalid_credentials"
	LoginTransportError     = "transport_error"
	LoginInProgress         = "in_progress"
)

// Restore outcomes
const (
	RestoreRestored = "restored"
	RestoreEmpty    = "empty"
	RestoreCorrupt  = "corrupt"
	RestoreError    = "error"
)

var (
	// LoginAttemptsTotal counts login attempts by outcome.
	LoginAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_login_attempts_total",
			Help: "Total number of login attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// SessionRestoresTotal counts session restores from durable storage by outcome.
	SessionRestoresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_session_restores_total",
			Help: "Total number of session restores by outcome.",
		},
		[]string{"outcome"},
	)

	LogoutsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_logouts_total",
			Help: "Total number of logouts.",
		},
	)

	// RecordUpdatesTotal counts user record writes by kind (user, profile, password) and outcome.
	RecordUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_record_updates_total",
			Help: "Total number of record updates by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		LoginAttemptsTotal,
		SessionRestoresTotal,
		LogoutsTotal,
		RecordUpdatesTotal,
	)
}

func RecordLogin(outcome string) {
	LoginAttemptsTotal.WithLabelValues(outcome).Inc()
}

func RecordRestore(outcome string) {
	SessionRestoresTotal.WithLabelValues(outcome).Inc()
}

func RecordLogout() {
	LogoutsTotal.Inc()
}

// RecordUpdate records a record write; err decides the outcome label.
func RecordUpdate(kind string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	RecordUpdatesTotal.WithLabelValues(kind, outcome).Inc()
}
