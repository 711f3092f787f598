package game

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-race/internal/game/race"
	"github.com/gokatarajesh/quiz-race/internal/game/scoring"
	"github.com/gokatarajesh/quiz-race/internal/game/session"
	"github.com/gokatarajesh/quiz-race/internal/question"
)

// Phase is the engine's position in the per-question cycle.
type Phase string

const (
	PhaseAwaitingSelection Phase = "awaiting_selection"
	PhaseRacing            Phase = "racing"
	PhaseSettled           Phase = "settled"
	PhaseFinished          Phase = "finished"
)

// Recorder receives gameplay events for metrics. All methods must be safe for
// concurrent use and must not call back into the engine.
type Recorder interface {
	SessionStarted()
	RaceStarted()
	RaceFinished(correct bool, ticks int)
	SessionFinished(score int)
	SessionExited()
}

type nopRecorder struct{}

func (nopRecorder) SessionStarted()        {}
func (nopRecorder) RaceStarted()           {}
func (nopRecorder) RaceFinished(bool, int) {}
func (nopRecorder) SessionFinished(int)    {}
func (nopRecorder) SessionExited()         {}

// Options tunes an Engine. Zero values fall back to defaults.
type Options struct {
	SessionID     uuid.UUID
	Race          race.Config
	Scoring       scoring.Config
	RetryPolicy   session.RetryPolicy
	ManualAdvance bool  // wait in PhaseSettled for Advance
	Seed          int64 // 0 seeds from the clock
	NewTicker     race.TickerFactory
	Recorder      Recorder
}

// Settlement describes one finished race and the tally right after it.
type Settlement struct {
	Question question.Question
	Selected int
	Correct  bool
	Outcome  race.Outcome
	Delta    int
	Streak   int
	State    session.State
}

// Summary is reported when the last question is retired.
type Summary struct {
	Score          int `json:"score"`
	CorrectAnswers int `json:"correct_answers"`
	TotalQuestions int `json:"total_questions"`
	HighestStreak  int `json:"highest_streak"`
	Accuracy       int `json:"accuracy"`
}

func summarize(s session.State) Summary {
	out := Summary{
		Score:          s.Score,
		CorrectAnswers: s.CorrectAnswers(),
		TotalQuestions: s.TotalQuestions,
		HighestStreak:  s.HighestStreak,
	}
	if s.TotalQuestions > 0 {
		out.Accuracy = int(math.Round(float64(out.CorrectAnswers) / float64(s.TotalQuestions) * 100))
	}
	return out
}

// Engine runs one single-player session: it owns the question tracker, the
// session tally and at most one live race. Callbacks are delivered one at a
// time in event order, outside the engine lock, so they may query the engine or
// call SelectAnswer, StartRace and Advance. They must not call ExitSession.
type Engine struct {
	id       uuid.UUID
	opts     Options
	logger   zerolog.Logger
	scorer   *scoring.Engine
	runner   *race.Runner
	recorder Recorder

	mu         sync.Mutex
	rng        *rand.Rand
	tracker    *session.Tracker
	state      session.State
	phase      Phase
	closed     bool
	current    *question.Question
	selection  int
	outcome    *race.Outcome
	generation uint64
	cancel     context.CancelFunc
	delivered  chan struct{} // closed when the latest queued delivery is done

	onStarted  func(question.Question, int)
	onTick     func([]race.Contender)
	onSettled  func(Settlement)
	onFinished func(Summary)
	onQuestion func(question.Question)
}

// LoadSession starts a session over questions and loads the first one. An
// empty pool leaves the engine in PhaseFinished with a zero summary.
func LoadSession(questions []question.Question, opts Options, logger zerolog.Logger) *Engine {
	e := newEngine(questions, opts, logger)
	e.state = session.NewState(e.tracker.Total())
	e.recorder.SessionStarted()
	e.logger.Info().
		Int("total_questions", e.state.TotalQuestions).
		Msg("session loaded")

	e.mu.Lock()
	e.advanceLocked()
	e.mu.Unlock()
	return e
}

// Resume rebuilds a session from a saved tally. Ids outside questions are
// dropped and the session keeps opts.SessionID.
func Resume(questions []question.Question, saved session.State, opts Options, logger zerolog.Logger) *Engine {
	e := newEngine(questions, opts, logger)
	e.tracker.Restore(saved.Asked)

	state := saved.Clone()
	state.Asked = e.tracker.Asked()
	state.Mistakes = session.IDSet{}
	for id := range saved.Mistakes {
		if _, ok := e.tracker.Lookup(id); ok {
			state.Mistakes.Add(id)
		}
	}
	state.TotalQuestions = e.tracker.Total()
	e.state = state
	e.recorder.SessionStarted()
	e.logger.Info().
		Int("asked", len(state.Asked)).
		Int("total_questions", state.TotalQuestions).
		Int("score", state.Score).
		Msg("session resumed")

	e.mu.Lock()
	e.advanceLocked()
	e.mu.Unlock()
	return e
}

func newEngine(questions []question.Question, opts Options, logger zerolog.Logger) *Engine {
	if opts.SessionID == uuid.Nil {
		opts.SessionID = uuid.New()
	}
	if opts.RetryPolicy == "" {
		opts.RetryPolicy = session.RetryUntilCorrect
	}
	opts.Race = opts.Race.WithDefaults()
	if opts.Scoring == (scoring.Config{}) {
		opts.Scoring = scoring.DefaultConfig()
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed))
	return &Engine{
		id:        opts.SessionID,
		opts:      opts,
		logger:    logger.With().Str("component", "race_engine").Str("session_id", opts.SessionID.String()).Logger(),
		scorer:    scoring.NewEngine(opts.Scoring),
		runner:    race.NewRunner(opts.Race.TickInterval, opts.NewTicker),
		recorder:  opts.Recorder,
		rng:       rng,
		tracker:   session.NewTracker(questions, rng),
		selection: -1,
	}
}

// OnRaceStarted registers a callback delivered after StartRace, before the first tick.
func (e *Engine) OnRaceStarted(fn func(q question.Question, selected int)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onStarted = fn
}

// OnTick registers the per-tick position callback.
func (e *Engine) OnTick(fn func([]race.Contender)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTick = fn
}

// OnSettled registers the callback fired once per finished race.
func (e *Engine) OnSettled(fn func(Settlement)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onSettled = fn
}

// OnSessionFinished registers the completion callback.
func (e *Engine) OnSessionFinished(fn func(Summary)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onFinished = fn
}

// OnQuestion registers the callback fired for every question loaded after the first.
func (e *Engine) OnQuestion(fn func(question.Question)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onQuestion = fn
}

// SelectAnswer records the player's pick. It may be changed until the race
// starts; anything else is ignored.
func (e *Engine) SelectAnswer(index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.phase != PhaseAwaitingSelection {
		return false
	}
	if index < 0 || index >= race.ContenderCount {
		return false
	}
	e.selection = index
	return true
}

// StartRace launches the race for the current question. It requires a
// selection and is ignored while a race is running.
func (e *Engine) StartRace() bool {
	e.mu.Lock()
	if e.closed || e.phase != PhaseAwaitingSelection || e.selection < 0 || e.current == nil {
		e.mu.Unlock()
		return false
	}

	e.phase = PhaseRacing
	e.outcome = nil
	e.generation++
	gen := e.generation
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	q := *e.current
	selected := e.selection
	src := rand.New(rand.NewSource(e.rng.Int63()))
	r := race.New(q.CorrectIndex, selected, src, e.opts.Race)
	if cb := e.onStarted; cb != nil {
		e.deliverLocked(func() { cb(q, selected) })
	}
	e.mu.Unlock()

	e.recorder.RaceStarted()
	e.logger.Debug().
		Int("question_id", q.ID).
		Int("selected", selected).
		Uint64("generation", gen).
		Msg("race started")

	go e.runRace(ctx, gen, r, q, selected)
	return true
}

func (e *Engine) runRace(ctx context.Context, gen uint64, r *race.Race, q question.Question, selected int) {
	outcome, err := e.runner.Run(ctx, r, func(positions []race.Contender) {
		e.mu.Lock()
		defer e.mu.Unlock()
		if cb := e.onTick; cb != nil && gen == e.generation {
			e.deliverLocked(func() { cb(positions) })
		}
	})
	if err != nil {
		e.logger.Debug().Err(err).Uint64("generation", gen).Msg("race cancelled")
		return
	}
	e.settle(gen, q, selected, outcome)
}

func (e *Engine) settle(gen uint64, q question.Question, selected int, outcome race.Outcome) {
	e.mu.Lock()
	if e.closed || gen != e.generation {
		e.mu.Unlock()
		return
	}

	correct := q.IsCorrect(selected)
	result := e.scorer.Settle(correct, q.PointValue, e.state.CurrentStreak)
	e.state = e.state.Apply(session.Answer{
		QuestionID: q.ID,
		Correct:    correct,
		Result:     result,
	}, e.opts.RetryPolicy)
	if e.state.Asked.Has(q.ID) {
		e.tracker.MarkAnswered(q.ID)
	}

	e.phase = PhaseSettled
	e.outcome = &outcome
	e.releaseLocked()
	settlement := Settlement{
		Question: q,
		Selected: selected,
		Correct:  correct,
		Outcome:  outcome,
		Delta:    result.Delta,
		Streak:   result.NextStreak,
		State:    e.state.Clone(),
	}

	if cb := e.onSettled; cb != nil {
		e.deliverLocked(func() { cb(settlement) })
	}
	if !e.opts.ManualAdvance {
		e.advanceLocked()
	}
	e.mu.Unlock()

	e.recorder.RaceFinished(correct, outcome.Ticks)
	e.logger.Info().
		Int("question_id", q.ID).
		Int("winner", outcome.Winner).
		Bool("correct", correct).
		Int("delta", result.Delta).
		Int("score", settlement.State.Score).
		Int("streak", result.NextStreak).
		Msg("race settled")
}

// Advance leaves PhaseSettled when ManualAdvance is set. It reports whether the
// engine moved on.
func (e *Engine) Advance() bool {
	e.mu.Lock()
	if e.closed || e.phase != PhaseSettled {
		e.mu.Unlock()
		return false
	}
	e.advanceLocked()
	e.mu.Unlock()
	return true
}

// advanceLocked loads the next question or finishes the session.
func (e *Engine) advanceLocked() {
	var (
		q  question.Question
		ok bool
	)
	if !e.tracker.IsComplete() {
		q, ok = e.tracker.PickNext()
	}

	if !ok {
		e.phase = PhaseFinished
		e.current = nil
		e.selection = -1
		summary := summarize(e.state)
		e.recorder.SessionFinished(summary.Score)
		e.logger.Info().
			Int("score", summary.Score).
			Int("correct", summary.CorrectAnswers).
			Int("total", summary.TotalQuestions).
			Int("highest_streak", summary.HighestStreak).
			Msg("session finished")
		if cb := e.onFinished; cb != nil {
			e.deliverLocked(func() { cb(summary) })
		}
		return
	}

	first := e.current == nil && e.outcome == nil
	e.current = &q
	e.selection = -1
	e.phase = PhaseAwaitingSelection
	if cb := e.onQuestion; cb != nil && !first {
		e.deliverLocked(func() { cb(q) })
	}
}

// deliverLocked queues fn behind every earlier delivery. fn runs outside the
// engine lock and is skipped once the engine is closed.
func (e *Engine) deliverLocked(fn func()) {
	if e.closed {
		return
	}
	prev := e.delivered
	done := make(chan struct{})
	e.delivered = done

	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		if !e.Closed() {
			fn()
		}
	}()
}

// ExitSession cancels any live race and discards the session. It waits for a
// callback already in progress; once it returns no callback runs again.
func (e *Engine) ExitSession() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	abandoned := e.phase != PhaseFinished
	e.closed = true
	e.generation++
	e.releaseLocked()
	e.phase = PhaseFinished
	e.current = nil
	e.selection = -1
	e.outcome = nil
	e.state = session.NewState(0)
	pending := e.delivered
	e.mu.Unlock()

	if pending != nil {
		<-pending
	}
	if abandoned {
		e.recorder.SessionExited()
	}
	e.logger.Info().Bool("abandoned", abandoned).Msg("session exited")
}

func (e *Engine) releaseLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// ID identifies the session.
func (e *Engine) ID() uuid.UUID {
	return e.id
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Closed reports whether ExitSession was called.
func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Current returns the question on screen, if any.
func (e *Engine) Current() (question.Question, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return question.Question{}, false
	}
	return *e.current, true
}

// Selection returns the pending pick, if any.
func (e *Engine) Selection() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection, e.selection >= 0
}

// LastOutcome returns the most recent race result.
func (e *Engine) LastOutcome() (race.Outcome, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.outcome == nil {
		return race.Outcome{}, false
	}
	return *e.outcome, true
}

// State returns a copy of the session tally.
func (e *Engine) State() session.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Summary computes the summary of the tally so far.
func (e *Engine) Summary() Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return summarize(e.state)
}
