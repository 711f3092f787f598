package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quizrace"

// Game collects gameplay counters. It satisfies game.Recorder.
type Game struct {
	sessionsStarted  prometheus.Counter
	sessionsFinished prometheus.Counter
	sessionsExited   prometheus.Counter
	activeSessions   prometheus.Gauge
	races            *prometheus.CounterVec
	raceTicks        prometheus.Histogram
	finalScores      prometheus.Histogram
}

// New registers the gameplay collectors on reg.
func New(reg prometheus.Registerer) *Game {
	g := &Game{
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Sessions loaded or resumed.",
		}),
		sessionsFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_finished_total",
			Help:      "Sessions that retired every question.",
		}),
		sessionsExited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_exited_total",
			Help:      "Sessions abandoned before completion.",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently loaded.",
		}),
		races: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "races_total",
			Help:      "Races by lifecycle stage and answer result.",
		}, []string{"stage", "result"}),
		raceTicks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "race_ticks",
			Help:      "Ticks needed for a contender to cross the finish line.",
			Buckets:   prometheus.LinearBuckets(30, 10, 10),
		}),
		finalScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_final_score",
			Help:      "Score at session completion.",
			Buckets:   prometheus.ExponentialBuckets(10, 2, 8),
		}),
	}
	reg.MustRegister(
		g.sessionsStarted,
		g.sessionsFinished,
		g.sessionsExited,
		g.activeSessions,
		g.races,
		g.raceTicks,
		g.finalScores,
	)
	return g
}

func (g *Game) SessionStarted() {
	g.sessionsStarted.Inc()
	g.activeSessions.Inc()
}

func (g *Game) RaceStarted() {
	g.races.WithLabelValues("started", "").Inc()
}

func (g *Game) RaceFinished(correct bool, ticks int) {
	result := "incorrect"
	if correct {
		result = "correct"
	}
	g.races.WithLabelValues("finished", result).Inc()
	g.raceTicks.Observe(float64(ticks))
}

func (g *Game) SessionFinished(score int) {
	g.sessionsFinished.Inc()
	g.activeSessions.Dec()
	g.finalScores.Observe(float64(score))
}

func (g *Game) SessionExited() {
	g.sessionsExited.Inc()
	g.activeSessions.Dec()
}
