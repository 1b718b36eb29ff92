// Copyright (c) 2026 TRV Enterprises LLC
// Licensed under the Business Source License 1.1
// See LICENSE file for details.

// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Evaluator metrics
	EvalPassesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_eval_passes_total",
			Help: "Total number of evaluation passes run",
		},
	)

	EvalPassesSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_eval_passes_skipped_total",
			Help: "Total number of passes skipped because the engine switch was off",
		},
	)

	RulesEvaluatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_rules_evaluated_total",
			Help: "Total number of rule evaluations attempted",
		},
	)

	AlertsFiredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_alerts_fired_total",
			Help: "Total number of alerts fired",
		},
		[]string{"priority"},
	)

	CooldownSuppressedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_cooldown_suppressed_total",
			Help: "Total number of triggers suppressed by the cooldown gate",
		},
	)

	InsufficientDataTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_insufficient_data_total",
			Help: "Total number of rule evaluations skipped for lack of in-window entries",
		},
	)

	EvalErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_eval_errors_total",
			Help: "Total number of per-rule evaluation errors",
		},
	)

	// Ingest metrics
	EntriesIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_entries_ingested_total",
			Help: "Total number of scored entries ingested",
		},
		[]string{"source", "status"}, // source: http, mqtt; status: accepted, rejected
	)

	// Sink metrics
	WebhookSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_webhook_sends_total",
			Help: "Total number of webhook deliveries attempted",
		},
		[]string{"status"}, // status: success, failed, dropped
	)

	WSClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentinel_ws_clients",
			Help: "Current number of connected WebSocket alert subscribers",
		},
	)
)
