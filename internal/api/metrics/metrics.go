// Package metrics defines and registers the custom Prometheus metrics of the
// patient portal API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry on package init.
// HTTP request metrics are produced separately by echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "patient_portal"

// ── Account metrics ───────────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts that passed the bot gate.
// Label:
//   - result: "created", "conflict", "invalid" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts that passed the bot gate.
// Label:
//   - result: "success", "not_found", "invalid_credentials" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// BotVerificationsTotal counts bot-gate decisions.
// Label:
//   - result: "passed", "failed" or "missing"
var BotVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bot_verifications_total",
		Help:      "Total number of bot verification checks, by result.",
	},
	[]string{"result"},
)

// SessionRejectionsTotal counts requests refused by the session guard.
// Label:
//   - reason: "missing" or "invalid"
var SessionRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_rejections_total",
		Help:      "Total number of requests rejected for a missing or invalid session.",
	},
	[]string{"reason"},
)

// ── Record metrics ────────────────────────────────────────────────────────────

// RecordReadsTotal counts dashboard reads.
// Label:
//   - result: "found", "empty" or "error"
var RecordReadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_reads_total",
		Help:      "Total number of patient record reads, by result.",
	},
	[]string{"result"},
)

// RecordUpdatesTotal counts record update attempts.
// Label:
//   - result: "saved", "rejected" or "error"
var RecordUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_updates_total",
		Help:      "Total number of patient record updates, by result.",
	},
	[]string{"result"},
)

// RateLimitedTotal counts requests denied by the rate limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests denied by the per-IP rate limiter.",
	},
)
