package cli

import (
	"bytes"
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/quiz-race/internal/game/race"
)

func TestRunSimulationFavorsCorrectContender(t *testing.T) {
	for _, playerCorrect := range []bool{true, false} {
		report := RunSimulation(1000, rand.New(rand.NewSource(1337)), playerCorrect, race.DefaultConfig())

		assert.Equal(t, 1000, report.Races)
		total := 0
		for _, w := range report.Wins {
			total += w
		}
		assert.Equal(t, 1000, total)
		assert.Greater(t, report.FavoredRate(), 0.5, "player correct: %v", playerCorrect)
		assert.Greater(t, report.AverageTicks(), 1.0)
	}
}

func TestEmptyReport(t *testing.T) {
	var report SimulationReport
	assert.Zero(t, report.FavoredRate())
	assert.Zero(t, report.AverageTicks())
}

func TestSimulateCommand(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"simulate", "--races", "200", "--seed", "7", "--env-file", ""})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "of 200 races")
}

func TestSimulateRejectsNonPositiveRaces(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"simulate", "--races", "0", "--env-file", ""})
	assert.Error(t, cmd.Execute())
}

func TestBootstrapLoadsDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RACE_FINISH_LINE=250\n"), 0o600))
	t.Setenv("RACE_FINISH_LINE", "")
	require.NoError(t, os.Unsetenv("RACE_FINISH_LINE"))

	ctx, err := bootstrap(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 250.0, configFrom(ctx).Race.FinishLine)
}

func TestBootstrapToleratesMissingDotEnv(t *testing.T) {
	ctx, err := bootstrap(context.Background(), filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "quiz-race", configFrom(ctx).Name)
}
