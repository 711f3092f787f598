package scoring

// Config holds configurable scoring constants.
type Config struct {
	StreakStep   int // default: 3, a bonus is paid once per full step of streak
	StreakBonus  int // default: 10 points per full step
	WrongPenalty int // default: 5, subtracted on an incorrect answer
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		StreakStep:   3,
		StreakBonus:  10,
		WrongPenalty: 5,
	}
}

// Result is the outcome of settling one question.
type Result struct {
	Delta      int `json:"delta"`
	NextStreak int `json:"next_streak"`
}

// Engine turns a question outcome into a score delta. It holds no session state.
type Engine struct {
	config Config
}

// NewEngine creates a scoring engine with the provided config. Zero fields fall
// back to their defaults.
func NewEngine(config Config) *Engine {
	def := DefaultConfig()
	if config.StreakStep <= 0 {
		config.StreakStep = def.StreakStep
	}
	if config.StreakBonus < 0 {
		config.StreakBonus = def.StreakBonus
	}
	if config.WrongPenalty < 0 {
		config.WrongPenalty = def.WrongPenalty
	}
	return &Engine{config: config}
}

// Config returns the effective constants.
func (e *Engine) Config() Config {
	return e.config
}

// Settle computes the delta for one answer.
// Formula when correct: pointValue + floor(nextStreak/step) * bonus
// - nextStreak: currentStreak + 1
// - incorrect answers reset the streak and cost the penalty
func (e *Engine) Settle(correct bool, pointValue, currentStreak int) Result {
	if !correct {
		return Result{Delta: -e.config.WrongPenalty, NextStreak: 0}
	}

	next := currentStreak + 1
	return Result{
		Delta:      pointValue + e.StreakBonus(next),
		NextStreak: next,
	}
}

// StreakBonus returns the bonus earned at the given streak length.
func (e *Engine) StreakBonus(streak int) int {
	if streak < e.config.StreakStep {
		return 0
	}
	return (streak / e.config.StreakStep) * e.config.StreakBonus
}

// Apply adds delta to score and floors the result at zero.
func Apply(score, delta int) int {
	score += delta
	if score < 0 {
		return 0
	}
	return score
}
