package question

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrInvalidQuestion   = errors.New("invalid question")
	ErrEmptyBank         = errors.New("question bank is empty")
)

//go:embed bank.yaml
var defaultBankYAML []byte

// Bank is a read-only, in-memory question catalogue.
type Bank struct {
	questions []Question
}

type bankFile struct {
	Questions []Question `yaml:"questions"`
}

// DefaultBank parses the bank compiled into the binary.
func DefaultBank() (*Bank, error) {
	return ParseBank(defaultBankYAML)
}

// LoadBank reads a YAML bank from path. An empty path falls back to DefaultBank.
func LoadBank(path string) (*Bank, error) {
	if path == "" {
		return DefaultBank()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	bank, err := ParseBank(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return bank, nil
}

// ParseBank decodes and normalizes a YAML document of the form {questions: [...]}.
func ParseBank(data []byte) (*Bank, error) {
	var file bankFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	if len(file.Questions) == 0 {
		return nil, ErrEmptyBank
	}

	out := make([]Question, 0, len(file.Questions))
	for i, q := range file.Questions {
		normalized, err := normalize(q)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		out = append(out, normalized)
	}
	return &Bank{questions: out}, nil
}

func normalize(q Question) (Question, error) {
	if strings.TrimSpace(q.Prompt) == "" {
		return q, fmt.Errorf("%w: missing prompt", ErrInvalidQuestion)
	}
	if len(q.Choices) != ChoiceCount {
		return q, fmt.Errorf("%w: want %d choices, got %d", ErrInvalidQuestion, ChoiceCount, len(q.Choices))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= ChoiceCount {
		return q, fmt.Errorf("%w: correct index %d out of range", ErrInvalidQuestion, q.CorrectIndex)
	}
	d, err := ParseDifficulty(string(q.Difficulty))
	if err != nil {
		return q, err
	}
	q.Difficulty = d
	if q.PointValue <= 0 {
		q.PointValue = d.DefaultPoints()
	}
	q.Choices = append([]string(nil), q.Choices...)
	return q, nil
}

// All returns a copy of every question in bank order.
func (b *Bank) All() []Question {
	return append([]Question(nil), b.questions...)
}

// Select filters by category and difficulty. Empty filters match everything and
// category comparison ignores case.
func (b *Bank) Select(category string, difficulty Difficulty) []Question {
	var out []Question
	for _, q := range b.questions {
		if category != "" && !strings.EqualFold(q.Category, category) {
			continue
		}
		if difficulty != "" && q.Difficulty != difficulty {
			continue
		}
		out = append(out, q)
	}
	return out
}

// CategorySummary counts questions per difficulty within one category.
type CategorySummary struct {
	Name   string             `json:"name"`
	Total  int                `json:"total"`
	Counts map[Difficulty]int `json:"counts"`
}

// Categories summarizes the bank sorted by category name.
func (b *Bank) Categories() []CategorySummary {
	index := map[string]*CategorySummary{}
	for _, q := range b.questions {
		summary, ok := index[q.Category]
		if !ok {
			summary = &CategorySummary{Name: q.Category, Counts: map[Difficulty]int{}}
			index[q.Category] = summary
		}
		summary.Total++
		summary.Counts[q.Difficulty]++
	}

	out := make([]CategorySummary, 0, len(index))
	for _, summary := range index {
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
