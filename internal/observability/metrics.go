package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/elrstools/crsflink/internal/crsf/frame"
)

var (
	registerOnce sync.Once

	framesDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crsflink",
			Subsystem: "decoder",
			Name:      "frames_total",
			Help:      "Valid frames decoded, by frame type.",
		},
		[]string{"port", "type"},
	)
	streamErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crsflink",
			Subsystem: "decoder",
			Name:      "stream_errors_total",
			Help:      "Recovered stream-level errors, by kind.",
		},
		[]string{"port", "kind"},
	)
	bytesDiscarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crsflink",
			Subsystem: "decoder",
			Name:      "bytes_discarded_total",
			Help:      "Bytes dropped during resynchronization.",
		},
		[]string{"port"},
	)
	linkTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crsflink",
			Subsystem: "link",
			Name:      "transitions_total",
			Help:      "Link state transitions, by target state.",
		},
		[]string{"port", "to"},
	)
	linkUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "crsflink",
			Subsystem: "link",
			Name:      "up",
			Help:      "1 while the link is connected.",
		},
		[]string{"port"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crsflink",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Status server requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "crsflink",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Status server request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(framesDecoded, streamErrors, bytesDiscarded,
			linkTransitions, linkUp, httpRequests, httpDuration)
	})
}

func RecordFrame(port, frameType string) {
	RegisterMetrics()
	framesDecoded.WithLabelValues(port, frameType).Inc()
}

func RecordLinkTransition(port, to string, up bool) {
	RegisterMetrics()
	linkTransitions.WithLabelValues(port, to).Inc()
	if up {
		linkUp.WithLabelValues(port).Set(1)
	} else {
		linkUp.WithLabelValues(port).Set(0)
	}
}

// RecordStreamStats publishes the delta between two deframer snapshots.
// The deframer keeps cumulative counters; prometheus counters only go up,
// so callers hand in the previous snapshot they reported.
func RecordStreamStats(port string, prev, cur frame.Stats) {
	RegisterMetrics()
	streamErrors.WithLabelValues(port, "crc").Add(float64(cur.CRCErrors - prev.CRCErrors))
	streamErrors.WithLabelValues(port, "bad_length").Add(float64(cur.BadLengths - prev.BadLengths))
	streamErrors.WithLabelValues(port, "overflow").Add(float64(cur.BufferOverflows - prev.BufferOverflows))
	bytesDiscarded.WithLabelValues(port).Add(float64(cur.BytesDiscarded - prev.BytesDiscarded))
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
