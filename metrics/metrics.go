package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"sync"
)

const namespace = "hackathon"

var (
	checkpointCompletions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkpoint",
			Name:      "completions_total",
			Help:      "Count of checkpoint completions by checkpoint number and resulting status.",
		},
		[]string{"checkpoint", "status"},
	)
	queueBookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mentorship",
			Name:      "bookings_total",
			Help:      "Count of mentor booking attempts by outcome.",
		},
		[]string{"outcome"},
	)
	scoreSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "score_submissions_total",
			Help:      "Count of score submissions by round.",
		},
		[]string{"round"},
	)
	websocketConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "connections",
			Help:      "Number of open websocket connections.",
		},
	)
)

// Registry holds every collector of the service; it is served on /metrics.
var Registry = prometheus.NewRegistry()

var registerMetrics sync.Once

// Register all metrics.
func Register() {
	registerMetrics.Do(func() {
		Registry.MustRegister(checkpointCompletions)
		Registry.MustRegister(queueBookings)
		Registry.MustRegister(scoreSubmissions)
		Registry.MustRegister(websocketConnections)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordCheckpointCompletion records a completed or partially completed checkpoint.
func RecordCheckpointCompletion(checkpoint, status string) {
	checkpointCompletions.WithLabelValues(checkpoint, status).Inc()
}

// RecordBooking records the outcome of a booking attempt, e.g. "booked" or "queue_full".
func RecordBooking(outcome string) {
	queueBookings.WithLabelValues(outcome).Inc()
}

func RecordScoreSubmission(round string) {
	scoreSubmissions.WithLabelValues(round).Inc()
}

func SetWebsocketConnections(n int) {
	websocketConnections.Set(float64(n))
}
