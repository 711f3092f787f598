package cli

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/gokatarajesh/quiz-race/internal/app"
	"github.com/gokatarajesh/quiz-race/internal/game/race"
	"github.com/gokatarajesh/quiz-race/internal/logging"
)

// SimulationReport tallies a batch of clockless races.
type SimulationReport struct {
	Races       int
	Wins        [race.ContenderCount]int
	FavoredWins int
	TotalTicks  int
}

// FavoredRate is the share of races won by the contender of the correct answer.
func (r SimulationReport) FavoredRate() float64 {
	if r.Races == 0 {
		return 0
	}
	return float64(r.FavoredWins) / float64(r.Races)
}

// AverageTicks is the mean race length.
func (r SimulationReport) AverageTicks() float64 {
	if r.Races == 0 {
		return 0
	}
	return float64(r.TotalTicks) / float64(r.Races)
}

// RunSimulation races n times with a random correct index per race. When
// playerCorrect is false the player always picks one of the other three.
func RunSimulation(n int, rng *rand.Rand, playerCorrect bool, cfg race.Config) SimulationReport {
	report := SimulationReport{Races: n}
	for i := 0; i < n; i++ {
		correct := rng.Intn(race.ContenderCount)
		selected := correct
		if !playerCorrect {
			selected = (correct + 1 + rng.Intn(race.ContenderCount-1)) % race.ContenderCount
		}

		out := race.Simulate(correct, selected, rng, cfg)
		report.Wins[out.Winner]++
		report.TotalTicks += out.Ticks
		if out.Winner == correct {
			report.FavoredWins++
		}
	}
	return report
}

func newSimulateCmd() *cobra.Command {
	var (
		races int
		seed  int64
		wrong bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run races without a clock and report how often the correct answer wins",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if races <= 0 {
				return fmt.Errorf("--races must be positive, got %d", races)
			}
			opts, err := app.EngineOptions(configFrom(cmd.Context()))
			if err != nil {
				return err
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			report := RunSimulation(races, rand.New(rand.NewSource(seed)), !wrong, opts.Race)
			logger := logging.FromContext(cmd.Context())
			logger.Info().
				Int("races", report.Races).
				Int64("seed", seed).
				Bool("player_correct", !wrong).
				Float64("favored_rate", report.FavoredRate()).
				Float64("avg_ticks", report.AverageTicks()).
				Ints("wins_by_lane", report.Wins[:]).
				Msg("simulation complete")

			fmt.Fprintf(cmd.OutOrStdout(), "favored contender won %d of %d races (%.1f%%), %.1f ticks on average\n",
				report.FavoredWins, report.Races, report.FavoredRate()*100, report.AverageTicks())
			return nil
		},
	}

	cmd.Flags().IntVar(&races, "races", 1000, "number of races to run")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 uses the clock")
	cmd.Flags().BoolVar(&wrong, "wrong", false, "simulate a player who always picks a wrong answer")
	return cmd
}
