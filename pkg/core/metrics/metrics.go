package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values for RPC call metrics.
const (
	OutcomeOK             = "ok"
	OutcomeFault          = "fault"
	OutcomeRejected       = "rejected"
	OutcomeTransportError = "transport_error"
	OutcomeDecodeError    = "decode_error"
)

// XML-RPC call metrics
var (
	RPCCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osdb_rpc_calls_total",
			Help: "Total number of XML-RPC calls made to OpenSubtitles.",
		},
		[]string{"method", "outcome"},
	)

	RPCCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "osdb_rpc_call_duration_seconds",
			Help:    "Duration of XML-RPC round trips to OpenSubtitles.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// Session metrics
var (
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osdb_logins_total",
			Help: "Total number of LogIn attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		RPCCallsTotal,
		RPCCallDuration,
		LoginsTotal,
	)
}
