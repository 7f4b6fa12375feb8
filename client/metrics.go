// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package client

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for the request counter.
const (
	outcomeOK             = "ok"
	outcomeError          = "error"
	outcomeTransportError = "transport_error"
	outcomeNoSession      = "no_session"
)

var requestCount = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "diffeo",
		Subsystem: "servicecall",
		Name:      "requests_total",
		Help:      "Count of dispatched service calls by action and outcome",
	},
	[]string{
		"action",
		"outcome",
	},
)

var requestDuration = prometheus.NewSummaryVec(
	prometheus.SummaryOpts{
		Namespace: "diffeo",
		Subsystem: "servicecall",
		Name:      "request_duration_seconds",
		Help:      "Wall-clock duration of dispatched service calls",
	},
	[]string{
		"action",
	},
)

func init() {
	prometheus.MustRegister(requestCount)
	prometheus.MustRegister(requestDuration)
}
