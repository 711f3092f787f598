package question

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/gokatarajesh/quiz-race/pkg/http/errors"
)

// HTTPHandler exposes read-only bank endpoints.
type HTTPHandler struct {
	bank   *Bank
	logger zerolog.Logger
}

// NewHTTPHandler constructs a question bank HTTP handler.
func NewHTTPHandler(bank *Bank, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		bank:   bank,
		logger: logger.With().Str("component", "question_http").Logger(),
	}
}

type categoriesResponse struct {
	Categories   []CategorySummary `json:"categories"`
	Difficulties []Difficulty      `json:"difficulties"`
}

// HandleCategories responds with GET /v1/categories.
func (h *HTTPHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		httperrors.RespondErrorWithDetails(w, http.StatusMethodNotAllowed, httperrors.ErrCodeMethodNotAllowed, "Method not allowed",
			map[string]any{"allowed": []string{http.MethodGet}})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(categoriesResponse{
		Categories:   h.bank.Categories(),
		Difficulties: Difficulties,
	}); err != nil {
		h.logger.Warn().Err(err).Msg("encode categories failed")
	}
}
