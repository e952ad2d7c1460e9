// Package metrics exposes watcher counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gitlab.com/codearena.net/internal/domain"
)

const metricsNamespace = "codearena"

// Recorder counts view transitions and real-time connectivity. It owns its registry so
// several recorders can coexist in tests.
type Recorder struct {
	registry *prometheus.Registry

	viewUpdates      *prometheus.CounterVec
	finished         *prometheus.CounterVec
	score            prometheus.Histogram
	connectionState  *prometheus.GaugeVec
	connectionErrors prometheus.Counter
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		viewUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "view_updates_total",
			Help:      "Number of published view changes",
		}, []string{"state"}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "submissions_finished_total",
			Help:      "Number of submissions that reached a terminal state",
		}, []string{"state"}),
		score: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "submission_score_percent",
			Help:      "Histogram for the final score",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
		connectionState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "realtime_connection_state",
			Help:      "1 for the current real-time connection state, 0 otherwise",
		}, []string{"state"}),
		connectionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "realtime_connection_errors_total",
			Help:      "Number of failed real-time connection attempts",
		}),
	}
	r.registry.MustRegister(r.viewUpdates, r.finished, r.score, r.connectionState, r.connectionErrors)
	r.ObserveConnection(domain.ConnDisconnected, nil)
	return r
}

// ObserveView is a reconciler observer.
func (r *Recorder) ObserveView(v domain.SubmissionView) {
	r.viewUpdates.WithLabelValues(string(v.State)).Inc()
	if !v.State.Terminal() {
		return
	}
	r.finished.WithLabelValues(string(v.State)).Inc()
	if v.Score != nil {
		r.score.Observe(float64(v.Score.Percentage))
	}
}

// ObserveConnection is a real-time state listener.
func (r *Recorder) ObserveConnection(state domain.ConnectionState, err error) {
	for _, s := range []domain.ConnectionState{domain.ConnDisconnected, domain.ConnConnecting, domain.ConnConnected} {
		v := 0.0
		if s == state {
			v = 1
		}
		r.connectionState.WithLabelValues(string(s)).Set(v)
	}
	if err != nil {
		r.connectionErrors.Inc()
	}
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
