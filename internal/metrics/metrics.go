// internal/metrics/metrics.go
//
// Prometheus instruments for gameplay.
// Responsibilities:
//   - Count games started, answers, hints and unlocks.
//   - Track the number of live sessions.
//   - Serve everything from a private registry via promhttp.

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registry and every instrument on it.
type Metrics struct {
	reg *prometheus.Registry

	GamesStarted   *prometheus.CounterVec
	Answers        *prometheus.CounterVec
	HintsUsed      prometheus.Counter
	LevelsUnlocked *prometheus.CounterVec
	ActiveSessions prometheus.Gauge
}

// New registers all instruments on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		GamesStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hanzi_games_started_total",
				Help: "Games started, by mode and level",
			},
			[]string{"mode", "level"},
		),
		Answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hanzi_answers_total",
				Help: "Submitted answers, by outcome",
			},
			[]string{"outcome"},
		),
		HintsUsed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hanzi_hints_used_total",
			Help: "Hints handed out",
		}),
		LevelsUnlocked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hanzi_levels_unlocked_total",
				Help: "Level unlocks, by level",
			},
			[]string{"level"},
		),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hanzi_active_sessions",
			Help: "Sessions held in memory",
		}),
	}
	m.reg.MustRegister(
		m.GamesStarted,
		m.Answers,
		m.HintsUsed,
		m.LevelsUnlocked,
		m.ActiveSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry (tests gather from it).
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// GameStarted counts a new game.
func (m *Metrics) GameStarted(mode, level string) {
	m.GamesStarted.WithLabelValues(mode, level).Inc()
}

// Answered counts an answer outcome.
func (m *Metrics) Answered(outcome string) {
	m.Answers.WithLabelValues(outcome).Inc()
}

// Unlocked counts a level unlock. Empty ids are ignored.
func (m *Metrics) Unlocked(level string) {
	if level == "" {
		return
	}
	m.LevelsUnlocked.WithLabelValues(level).Inc()
}

// SetActive records how many sessions are live.
func (m *Metrics) SetActive(n int) { m.ActiveSessions.Set(float64(n)) }
