package question

import (
	"fmt"
	"strings"
)

// ChoiceCount is the fixed number of answer choices per question, one per race contender.
const ChoiceCount = 4

// Difficulty grades a question and selects its default point value.
type Difficulty string

// Difficulty constants for readability.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists every known difficulty in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// DefaultPoints returns the points awarded for a correct answer at this difficulty.
func (d Difficulty) DefaultPoints() int {
	switch d {
	case DifficultyEasy:
		return 15
	case DifficultyMedium:
		return 20
	case DifficultyHard:
		return 30
	default:
		return 0
	}
}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	return d.DefaultPoints() > 0
}

// ParseDifficulty accepts any casing of easy, medium or hard.
func ParseDifficulty(raw string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(raw)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, raw)
	}
	return d, nil
}

// Question is an immutable multiple-choice item. Choices are indexed 0..3 and
// CorrectIndex points at the right one.
type Question struct {
	ID           int        `json:"id" yaml:"id"`
	Category     string     `json:"category" yaml:"category"`
	Prompt       string     `json:"prompt" yaml:"prompt"`
	Choices      []string   `json:"choices" yaml:"choices"`
	CorrectIndex int        `json:"-" yaml:"correct"`
	Difficulty   Difficulty `json:"difficulty" yaml:"difficulty"`
	PointValue   int        `json:"point_value" yaml:"points"`
}

// Label returns the display letter for a choice index ("A" for 0).
func Label(index int) string {
	if index < 0 || index >= ChoiceCount {
		return ""
	}
	return string(rune('A' + index))
}

// IsCorrect reports whether the choice at index is the right answer.
func (q Question) IsCorrect(index int) bool {
	return index == q.CorrectIndex
}
