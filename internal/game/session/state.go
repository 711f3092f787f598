package session

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/gokatarajesh/quiz-race/internal/game/scoring"
)

// IDSet is a set of question ids. It marshals as a sorted JSON array.
type IDSet map[int]struct{}

func NewIDSet(ids ...int) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s IDSet) Add(id int)      { s[id] = struct{}{} }
func (s IDSet) Has(id int) bool { _, ok := s[id]; return ok }

func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Sorted returns the ids in ascending order.
func (s IDSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}

// RetryPolicy decides what happens to a question answered incorrectly.
type RetryPolicy string

const (
	// RetryUntilCorrect keeps a missed question in the pool.
	RetryUntilCorrect RetryPolicy = "retry_until_correct"
	// AdvanceOnMistake retires a missed question like an answered one.
	AdvanceOnMistake RetryPolicy = "advance_on_mistake"
)

// ParseRetryPolicy maps a config string to a policy. Empty means RetryUntilCorrect.
func ParseRetryPolicy(raw string) (RetryPolicy, error) {
	switch p := RetryPolicy(strings.ToLower(strings.TrimSpace(raw))); p {
	case "", RetryUntilCorrect:
		return RetryUntilCorrect, nil
	case AdvanceOnMistake:
		return AdvanceOnMistake, nil
	default:
		return "", fmt.Errorf("unknown retry policy %q", raw)
	}
}

// State is the running tally of one session.
type State struct {
	Asked          IDSet `json:"asked"`
	Mistakes       IDSet `json:"mistakes"`
	Score          int   `json:"score"`
	CurrentStreak  int   `json:"current_streak"`
	HighestStreak  int   `json:"highest_streak"`
	TotalQuestions int   `json:"total_questions"`
}

// NewState returns the zero tally for a pool of total questions.
func NewState(total int) State {
	return State{Asked: IDSet{}, Mistakes: IDSet{}, TotalQuestions: total}
}

// Clone deep-copies the id sets.
func (s State) Clone() State {
	s.Asked = s.Asked.Clone()
	s.Mistakes = s.Mistakes.Clone()
	return s
}

// Complete reports whether every question has been retired.
func (s State) Complete() bool {
	return len(s.Asked) == s.TotalQuestions
}

// CorrectAnswers counts questions never missed.
func (s State) CorrectAnswers() int {
	return s.TotalQuestions - len(s.Mistakes)
}

// Answer is one settled question.
type Answer struct {
	QuestionID int
	Correct    bool
	Result     scoring.Result
}

// Apply returns the state after one settled answer. The receiver is not modified.
func (s State) Apply(a Answer, policy RetryPolicy) State {
	next := s.Clone()
	next.Score = scoring.Apply(next.Score, a.Result.Delta)
	next.CurrentStreak = a.Result.NextStreak
	next.HighestStreak = max(next.HighestStreak, next.CurrentStreak)

	if a.Correct {
		next.Asked.Add(a.QuestionID)
		return next
	}
	next.Mistakes.Add(a.QuestionID)
	if policy == AdvanceOnMistake {
		next.Asked.Add(a.QuestionID)
	}
	return next
}
