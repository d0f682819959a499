package observability

import "github.com/prometheus/client_golang/prometheus"

const (
	namespace        = "logbridge"
	subsystemRPC     = "rpc"
	metricCallsName  = "calls_total"
	metricSecondName = "call_seconds"
	helpCalls        = "Total number of dispatched procedure calls by path and result code"
	helpSeconds      = "Latency of dispatched procedure calls"
	labelPath        = "path"
	labelCode        = "code"
)

var (
	// CallCounter counts dispatched calls.
	CallCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemRPC,
		Name:      metricCallsName,
		Help:      helpCalls,
	}, []string{labelPath, labelCode})
	// CallDuration observes handler latency for known paths.
	CallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystemRPC,
		Name:      metricSecondName,
		Help:      helpSeconds,
		Buckets:   prometheus.DefBuckets,
	}, []string{labelPath})
)

// Register registers all observability metrics.
func Register() {
	prometheus.MustRegister(CallCounter, CallDuration)
}
