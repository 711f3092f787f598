package question

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDifficulty(t *testing.T) {
	cases := []struct {
		raw     string
		want    Difficulty
		wantErr bool
	}{
		{raw: "easy", want: DifficultyEasy},
		{raw: "Medium", want: DifficultyMedium},
		{raw: " HARD ", want: DifficultyHard},
		{raw: "extreme", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseDifficulty(tc.raw)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrUnknownDifficulty, tc.raw)
			continue
		}
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got)
	}
}

func TestDefaultPoints(t *testing.T) {
	assert.Equal(t, 15, DifficultyEasy.DefaultPoints())
	assert.Equal(t, 20, DifficultyMedium.DefaultPoints())
	assert.Equal(t, 30, DifficultyHard.DefaultPoints())
	assert.Equal(t, 0, Difficulty("nope").DefaultPoints())
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "A", Label(0))
	assert.Equal(t, "D", Label(3))
	assert.Equal(t, "", Label(4))
	assert.Equal(t, "", Label(-1))
}

func TestDefaultBankIsValid(t *testing.T) {
	bank, err := DefaultBank()
	require.NoError(t, err)

	all := bank.All()
	require.NotEmpty(t, all)

	seen := map[int]bool{}
	for _, q := range all {
		assert.False(t, seen[q.ID], "duplicate id %d", q.ID)
		seen[q.ID] = true
		assert.Len(t, q.Choices, ChoiceCount)
		assert.True(t, q.Difficulty.Valid())
		assert.Equal(t, q.Difficulty.DefaultPoints(), q.PointValue)
	}
}

func TestParseBankFillsPointsAndNormalizesDifficulty(t *testing.T) {
	bank, err := ParseBank([]byte(`
questions:
  - id: 1
    category: Science
    prompt: p1
    choices: [a, b, c, d]
    correct: 2
    difficulty: Hard
  - id: 2
    category: Math
    prompt: p2
    choices: [a, b, c, d]
    correct: 0
    difficulty: easy
    points: 99
`))
	require.NoError(t, err)

	all := bank.All()
	require.Len(t, all, 2)
	assert.Equal(t, DifficultyHard, all[0].Difficulty)
	assert.Equal(t, 30, all[0].PointValue)
	assert.Equal(t, 2, all[0].CorrectIndex)
	assert.Equal(t, 99, all[1].PointValue)
}

func TestParseBankRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"three choices": `
questions:
  - {id: 1, prompt: p, choices: [a, b, c], correct: 0, difficulty: easy}`,
		"correct out of range": `
questions:
  - {id: 1, prompt: p, choices: [a, b, c, d], correct: 4, difficulty: easy}`,
		"missing prompt": `
questions:
  - {id: 1, choices: [a, b, c, d], correct: 0, difficulty: easy}`,
	}

	for name, doc := range cases {
		_, err := ParseBank([]byte(doc))
		assert.ErrorIs(t, err, ErrInvalidQuestion, name)
	}

	_, err := ParseBank([]byte(`questions: [{id: 1, prompt: p, choices: [a, b, c, d], correct: 0, difficulty: insane}]`))
	assert.ErrorIs(t, err, ErrUnknownDifficulty)

	_, err = ParseBank([]byte(`questions: []`))
	assert.ErrorIs(t, err, ErrEmptyBank)
}

func TestLoadBankFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`questions: [{id: 7, category: Geo, prompt: p, choices: [a, b, c, d], correct: 1, difficulty: medium}]`), 0o600))

	bank, err := LoadBank(path)
	require.NoError(t, err)
	require.Len(t, bank.All(), 1)
	assert.Equal(t, 7, bank.All()[0].ID)

	_, err = LoadBank(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSelectFilters(t *testing.T) {
	bank, err := DefaultBank()
	require.NoError(t, err)

	science := bank.Select("science", "")
	require.NotEmpty(t, science)
	for _, q := range science {
		assert.Equal(t, "Science", q.Category)
	}

	hardMath := bank.Select("Math", DifficultyHard)
	require.NotEmpty(t, hardMath)
	for _, q := range hardMath {
		assert.Equal(t, DifficultyHard, q.Difficulty)
	}

	assert.Empty(t, bank.Select("Astrology", ""))
	assert.Len(t, bank.Select("", ""), len(bank.All()))
}

func TestCategoriesHandler(t *testing.T) {
	bank, err := DefaultBank()
	require.NoError(t, err)
	h := NewHTTPHandler(bank, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.HandleCategories(rec, httptest.NewRequest(http.MethodGet, "/v1/categories", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body categoriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	names := make([]string, 0, len(body.Categories))
	total := 0
	for _, c := range body.Categories {
		names = append(names, c.Name)
		total += c.Total
	}
	assert.Equal(t, []string{"History", "Math", "Science"}, names)
	assert.Equal(t, len(bank.All()), total)

	rec = httptest.NewRecorder()
	h.HandleCategories(rec, httptest.NewRequest(http.MethodPost, "/v1/categories", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
	assert.JSONEq(t, `{"error":"method_not_allowed","message":"Method not allowed","details":{"allowed":["GET"]}}`, rec.Body.String())
}
