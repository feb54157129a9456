// Package observability defines logging and the Prometheus metrics for the
// service. Metric variables below are registered with the default registry
// at init time via promauto; the /metrics endpoint exposes them.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "projectdesk"

// HTTPRequestsTotal counts handled HTTP requests.
// Labels: method, path (route pattern), status (numeric code as string).
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests handled.",
	},
	[]string{"method", "path", "status"},
)

// DomainErrorsTotal counts requests rejected with a domain error code
// (FORBIDDEN, INVALID_TRANSITION, ...).
var DomainErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "domain_errors_total",
		Help:      "Total number of requests rejected with a domain error, by code.",
	},
	[]string{"code"},
)

// LoginsTotal counts login attempts by outcome ("success" / "failure").
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// RequestDecisionsTotal counts service-request transitions out of PENDING.
// Label: decision ("approved" / "rejected").
var RequestDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "request_decisions_total",
		Help:      "Total number of service-request decisions, by outcome.",
	},
	[]string{"decision"},
)

// ProjectTransitionsTotal counts project status changes.
// Label: to (the new status).
var ProjectTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "project_transitions_total",
		Help:      "Total number of project status transitions, by target status.",
	},
	[]string{"to"},
)

// AssignmentChangesTotal counts assignment-set mutations.
// Label: op ("assign" / "unassign").
var AssignmentChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assignment_changes_total",
		Help:      "Total number of project assignment changes, by operation.",
	},
	[]string{"op"},
)
