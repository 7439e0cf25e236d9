package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the users module.
type Metrics struct {
	UsersRegistered prometheus.Counter
	LoginFailures   prometheus.Counter
}

// New creates a Metrics instance with all users module metrics registered.
func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "supplytrack_users_registered_total",
			Help: "Total number of users registered",
		}),
		LoginFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "supplytrack_login_failures_total",
			Help: "Total number of failed login attempts",
		}),
	}
}

// IncrementUsersRegistered records a successful registration.
func (m *Metrics) IncrementUsersRegistered() {
	m.UsersRegistered.Inc()
}

// IncrementLoginFailures records a rejected login attempt.
func (m *Metrics) IncrementLoginFailures() {
	m.LoginFailures.Inc()
}
