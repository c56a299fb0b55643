// Package metrics defines and registers all custom Prometheus metrics for the
// task management API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry on package init via
// promauto and are exposed by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskmgmt"

// ── Authentication metrics ────────────────────────────────────────────────────

// TokenRejectionsTotal counts bearer tokens that did not establish a principal.
// Label:
//   - reason: "unknown_subject", "expired", "invalid_signature", "malformed",
//     "unsupported" or "resolver_error"
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_token_rejections_total",
		Help:      "Total number of bearer tokens rejected by the request authenticator.",
	},
	[]string{"reason"},
)

// PrincipalsEstablishedTotal counts requests that were authenticated.
var PrincipalsEstablishedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_principals_established_total",
		Help:      "Total number of requests with an authenticated principal.",
	},
)

// AccessDeniedTotal counts guard decisions that stopped a request.
// Label:
//   - result: "unauthenticated" or "forbidden"
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_access_denied_total",
		Help:      "Total number of requests stopped by a role guard.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "unknown_identity" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "duplicate" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// AuditEventsDroppedTotal counts audit events lost to a full dispatcher queue.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of auth audit events dropped because the queue was full.",
	},
)

// ── Task metrics ──────────────────────────────────────────────────────────────

// TasksCreatedTotal counts newly created tasks.
// Label:
//   - priority: "LOW", "MIDDLE" or "HIGH"
var TasksCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_created_total",
		Help:      "Total number of tasks created, by priority.",
	},
	[]string{"priority"},
)

// TaskStatusChangesTotal counts status updates made by performers.
// Label:
//   - status: the new task status
var TaskStatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_status_changes_total",
		Help:      "Total number of task status changes, by new status.",
	},
	[]string{"status"},
)

// CommentsCreatedTotal counts new comments.
var CommentsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comments_created_total",
		Help:      "Total number of comments created.",
	},
)
