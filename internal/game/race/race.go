package race

import (
	"sort"
	"time"

	"github.com/gokatarajesh/quiz-race/internal/question"
)

// ContenderCount is fixed: one contender per answer choice.
const ContenderCount = question.ChoiceCount

// Source supplies uniform floats in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Range is a half-open interval [Min, Max).
type Range struct {
	Min float64
	Max float64
}

func (r Range) draw(src Source) float64 {
	return r.Min + (r.Max-r.Min)*src.Float64()
}

func (r Range) zero() bool {
	return r.Min == 0 && r.Max == 0
}

// Config holds the speed policy and track geometry.
type Config struct {
	FavoredWhenRight Range         // correct contender, player picked it
	FavoredWhenWrong Range         // correct contender, player picked another
	WrongPick        Range         // the player's wrong pick
	Field            Range         // every other contender
	Jitter           Range         // per-tick multiplier
	FinishLine       float64       // default: 100
	TickInterval     time.Duration // default: 80ms
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		FavoredWhenRight: Range{Min: 1.8, Max: 2.6},
		FavoredWhenWrong: Range{Min: 1.4, Max: 2.0},
		WrongPick:        Range{Min: 0.8, Max: 1.2},
		Field:            Range{Min: 1.0, Max: 1.8},
		Jitter:           Range{Min: 0.8, Max: 1.2},
		FinishLine:       100,
		TickInterval:     80 * time.Millisecond,
	}
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.FavoredWhenRight.zero() {
		c.FavoredWhenRight = def.FavoredWhenRight
	}
	if c.FavoredWhenWrong.zero() {
		c.FavoredWhenWrong = def.FavoredWhenWrong
	}
	if c.WrongPick.zero() {
		c.WrongPick = def.WrongPick
	}
	if c.Field.zero() {
		c.Field = def.Field
	}
	if c.Jitter.zero() {
		c.Jitter = def.Jitter
	}
	if c.FinishLine <= 0 {
		c.FinishLine = def.FinishLine
	}
	if c.TickInterval <= 0 {
		c.TickInterval = def.TickInterval
	}
	return c
}

// Contender is one runner, tied to the choice at Index.
type Contender struct {
	Index    int     `json:"index"`
	Label    string  `json:"label"`
	Position float64 `json:"position"`
	Speed    float64 `json:"speed"`
}

// Outcome is the final ranking of a finished race.
type Outcome struct {
	Ranking []Contender `json:"ranking"`
	Winner  int         `json:"winner"`
	Ticks   int         `json:"ticks"`
}

// Race advances four contenders tick by tick until one crosses the finish line.
// A Race is not safe for concurrent use.
type Race struct {
	cfg        Config
	src        Source
	contenders [ContenderCount]Contender
	ticks      int
	outcome    *Outcome
}

// New assigns starting speeds once. correctIndex and selectedIndex must be in
// [0, ContenderCount).
func New(correctIndex, selectedIndex int, src Source, cfg Config) *Race {
	cfg = cfg.WithDefaults()
	r := &Race{cfg: cfg, src: src}

	playerCorrect := selectedIndex == correctIndex
	for i := range r.contenders {
		var speeds Range
		switch {
		case i == correctIndex && playerCorrect:
			speeds = cfg.FavoredWhenRight
		case i == correctIndex:
			speeds = cfg.FavoredWhenWrong
		case i == selectedIndex:
			speeds = cfg.WrongPick
		default:
			speeds = cfg.Field
		}
		r.contenders[i] = Contender{
			Index: i,
			Label: question.Label(i),
			Speed: speeds.draw(src),
		}
	}
	return r
}

// Contenders returns a copy of the current field.
func (r *Race) Contenders() []Contender {
	out := make([]Contender, ContenderCount)
	copy(out, r.contenders[:])
	return out
}

// Done reports whether the race has produced an outcome.
func (r *Race) Done() bool {
	return r.outcome != nil
}

// Outcome returns the result once Done.
func (r *Race) Outcome() (Outcome, bool) {
	if r.outcome == nil {
		return Outcome{}, false
	}
	return *r.outcome, true
}

// Step advances one tick and returns the positions after it. The outcome is
// non-nil on the tick that crosses the finish line. Contenders crossing on the
// same tick are ranked by how far past the line they got, before positions
// clamp, so a tie at the line is not broken by index alone. Stepping a finished
// race is a no-op that returns the final state again.
func (r *Race) Step() ([]Contender, *Outcome) {
	if r.outcome != nil {
		out := *r.outcome
		return r.Contenders(), &out
	}

	r.ticks++
	crossed := false
	for i := range r.contenders {
		c := &r.contenders[i]
		c.Position += c.Speed * r.cfg.Jitter.draw(r.src)
		if c.Position >= r.cfg.FinishLine {
			crossed = true
		}
	}
	if !crossed {
		return r.Contenders(), nil
	}

	ranking := r.Contenders()
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Position > ranking[j].Position
	})
	for i := range r.contenders {
		r.contenders[i].Position = min(r.contenders[i].Position, r.cfg.FinishLine)
	}
	for i := range ranking {
		ranking[i].Position = min(ranking[i].Position, r.cfg.FinishLine)
	}

	r.outcome = &Outcome{
		Ranking: ranking,
		Winner:  ranking[0].Index,
		Ticks:   r.ticks,
	}
	out := *r.outcome
	return r.Contenders(), &out
}

// Simulate runs a race to completion without a clock.
func Simulate(correctIndex, selectedIndex int, src Source, cfg Config) Outcome {
	r := New(correctIndex, selectedIndex, src, cfg)
	for {
		if _, outcome := r.Step(); outcome != nil {
			return *outcome
		}
	}
}
