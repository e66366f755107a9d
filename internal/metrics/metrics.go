package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts veto commands and bracket propagations. A nil *Recorder
// is valid and records nothing.
type Recorder struct {
	registry     *prometheus.Registry
	commands     *prometheus.CounterVec
	propagations *prometheus.CounterVec
	affected     prometheus.Histogram
	lobbies      prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "veto",
			Name:      "commands_total",
			Help:      "Veto commands applied, by command type and outcome.",
		}, []string{"command", "outcome"}),
		propagations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bracket",
			Name:      "propagations_total",
			Help:      "Match results reported, by outcome.",
		}, []string{"outcome"}),
		affected: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bracket",
			Name:      "affected_matches",
			Help:      "Downstream matches touched by one reported result.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32},
		}),
		lobbies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "veto",
			Name:      "lobbies_open",
			Help:      "Veto lobbies currently running.",
		}),
	}
	r.registry.MustRegister(r.commands, r.propagations, r.affected, r.lobbies)
	return r
}

// RecordCommand counts one command. An empty kind means it succeeded.
func (r *Recorder) RecordCommand(command, kind string) {
	if r == nil {
		return
	}
	r.commands.WithLabelValues(command, outcome(kind)).Inc()
}

func (r *Recorder) RecordPropagation(affected int, kind string) {
	if r == nil {
		return
	}
	r.propagations.WithLabelValues(outcome(kind)).Inc()
	if kind == "" {
		r.affected.Observe(float64(affected))
	}
}

func (r *Recorder) LobbyOpened() {
	if r == nil {
		return
	}
	r.lobbies.Inc()
}

func (r *Recorder) LobbyClosed() {
	if r == nil {
		return
	}
	r.lobbies.Dec()
}

// Handler serves the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func outcome(kind string) string {
	if kind == "" {
		return "ok"
	}
	return kind
}
