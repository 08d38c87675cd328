package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation outcomes recorded on the mutation counter.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
)

var (
	// StoreMutations counts store operations by name and outcome. Rejected
	// means the operation failed validation and mutated nothing.
	StoreMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "retailflow",
		Subsystem: "store",
		Name:      "mutations_total",
		Help:      "Store mutation operations by operation and outcome.",
	}, []string{"operation", "outcome"})

	// PersistenceFailures counts state writes that were swallowed after the
	// in-memory mutation already succeeded.
	PersistenceFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "retailflow",
		Subsystem: "store",
		Name:      "persistence_failures_total",
		Help:      "State persistence writes that failed and were logged.",
	})

	// Logins counts authentication attempts by result.
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "retailflow",
		Subsystem: "auth",
		Name:      "logins_total",
		Help:      "Login attempts by result.",
	}, []string{"result"})
)
