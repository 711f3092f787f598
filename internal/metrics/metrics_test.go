package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGameRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	g := New(reg)

	g.SessionStarted()
	g.SessionStarted()
	g.RaceStarted()
	g.RaceFinished(true, 55)
	g.RaceStarted()
	g.RaceFinished(false, 61)
	g.SessionFinished(40)
	g.SessionExited()

	assert.Equal(t, 2.0, testutil.ToFloat64(g.sessionsStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(g.sessionsFinished))
	assert.Equal(t, 1.0, testutil.ToFloat64(g.sessionsExited))
	assert.Equal(t, 0.0, testutil.ToFloat64(g.activeSessions))
	assert.Equal(t, 2.0, testutil.ToFloat64(g.races.WithLabelValues("started", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(g.races.WithLabelValues("finished", "correct")))
	assert.Equal(t, 1.0, testutil.ToFloat64(g.races.WithLabelValues("finished", "incorrect")))

	count, err := testutil.GatherAndCount(reg, "quizrace_race_ticks")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewPanicsOnDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
