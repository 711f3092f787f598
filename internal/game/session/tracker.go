package session

import (
	"github.com/gokatarajesh/quiz-race/internal/question"
)

// Picker draws uniform indexes. *rand.Rand satisfies it.
type Picker interface {
	Intn(n int) int
}

// Tracker hands out questions without repeating any that were marked answered.
type Tracker struct {
	pool  []question.Question
	asked IDSet
	rng   Picker
}

// NewTracker builds a tracker over questions. Duplicate ids keep their first
// occurrence.
func NewTracker(questions []question.Question, rng Picker) *Tracker {
	seen := make(map[int]struct{}, len(questions))
	pool := make([]question.Question, 0, len(questions))
	for _, q := range questions {
		if _, dup := seen[q.ID]; dup {
			continue
		}
		seen[q.ID] = struct{}{}
		pool = append(pool, q)
	}
	return &Tracker{pool: pool, asked: IDSet{}, rng: rng}
}

// Total is the number of distinct questions in the pool.
func (t *Tracker) Total() int {
	return len(t.pool)
}

// PickNext returns a uniformly random unasked question, or false once the
// pool is exhausted.
func (t *Tracker) PickNext() (question.Question, bool) {
	remaining := make([]int, 0, len(t.pool))
	for i, q := range t.pool {
		if !t.asked.Has(q.ID) {
			remaining = append(remaining, i)
		}
	}
	if len(remaining) == 0 {
		return question.Question{}, false
	}
	return t.pool[remaining[t.rng.Intn(len(remaining))]], true
}

// MarkAnswered is idempotent. Ids outside the pool are ignored.
func (t *Tracker) MarkAnswered(id int) {
	if !t.contains(id) {
		return
	}
	t.asked.Add(id)
}

// IsComplete reports whether every pooled question has been marked.
func (t *Tracker) IsComplete() bool {
	return len(t.asked) == len(t.pool)
}

// Asked returns a copy of the answered ids.
func (t *Tracker) Asked() IDSet {
	return t.asked.Clone()
}

// Restore seeds the answered set from a saved session.
func (t *Tracker) Restore(ids IDSet) {
	for id := range ids {
		t.MarkAnswered(id)
	}
}

// Lookup finds a pooled question by id.
func (t *Tracker) Lookup(id int) (question.Question, bool) {
	for _, q := range t.pool {
		if q.ID == id {
			return q, true
		}
	}
	return question.Question{}, false
}

func (t *Tracker) contains(id int) bool {
	_, ok := t.Lookup(id)
	return ok
}
