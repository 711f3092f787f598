package game

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-race/internal/game/race"
	"github.com/gokatarajesh/quiz-race/internal/question"
	"github.com/gokatarajesh/quiz-race/internal/server"
	httperrors "github.com/gokatarajesh/quiz-race/pkg/http/errors"
	ws "github.com/gokatarajesh/quiz-race/pkg/http/ws"
)

const snapshotTimeout = 2 * time.Second

// Handler relays one engine per WebSocket connection.
type Handler struct {
	bank      *question.Bank
	snapshots Snapshots
	hub       *ws.Hub
	opts      Options
	logger    zerolog.Logger
}

// NewHandler creates the race WebSocket handler. snapshots may be nil, which
// disables resume. opts is the template for every engine.
func NewHandler(bank *question.Bank, snapshots Snapshots, hub *ws.Hub, opts Options, logger zerolog.Logger) *Handler {
	return &Handler{
		bank:      bank,
		snapshots: snapshots,
		hub:       hub,
		opts:      opts,
		logger:    logger.With().Str("component", "race_ws").Logger(),
	}
}

// client binds an engine to its connection for the lifetime of the socket.
type client struct {
	h          *Handler
	engine     *Engine
	conn       *ws.Connection
	category   string
	difficulty question.Difficulty
	logger     zerolog.Logger
}

// HandleWebSocket serves GET /ws/race?category=&difficulty=&session=.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	category := query.Get("category")

	var difficulty question.Difficulty
	if raw := query.Get("difficulty"); raw != "" {
		d, err := question.ParseDifficulty(raw)
		if err != nil {
			httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidDifficulty, err.Error(), "difficulty")
			return
		}
		difficulty = d
	}

	var resumeID uuid.UUID
	if raw := query.Get("session"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidRequest, "Invalid session id", "session")
			return
		}
		resumeID = id
	}

	conn, err := server.WSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	s := &client{
		h:          h,
		conn:       ws.NewConnection(conn, h.logger),
		category:   category,
		difficulty: difficulty,
	}
	go s.conn.WritePump()

	questions := h.bank.Select(category, difficulty)
	snap := h.loadSnapshot(r.Context(), resumeID, category, difficulty)
	s.start(questions, snap)

	h.hub.Register(s.engine.ID(), s.conn)
	s.conn.ReadPump(s.handleMessage)

	// The socket is gone; stop any live race but keep the snapshot for a reconnect.
	s.engine.ExitSession()
	h.hub.Unregister(s.engine.ID(), s.conn)
}

func (h *Handler) loadSnapshot(ctx context.Context, id uuid.UUID, category string, difficulty question.Difficulty) *Snapshot {
	if h.snapshots == nil || id == uuid.Nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	snap, err := h.snapshots.Load(ctx, id)
	if err != nil {
		h.logger.Warn().Err(err).Str("session_id", id.String()).Msg("snapshot load failed")
		return nil
	}
	if snap == nil {
		h.logger.Debug().Str("session_id", id.String()).Msg("no snapshot to resume")
		return nil
	}
	if snap.Category != category || snap.Difficulty != difficulty {
		h.logger.Debug().Str("session_id", id.String()).Msg("snapshot filters differ, starting fresh")
		return nil
	}
	return snap
}

func (s *client) start(questions []question.Question, snap *Snapshot) {
	opts := s.h.opts
	if snap != nil {
		opts.SessionID = snap.SessionID
		s.engine = Resume(questions, snap.State, opts, s.h.logger)
	} else {
		s.engine = LoadSession(questions, opts, s.h.logger)
	}
	s.logger = s.h.logger.With().Str("session_id", s.engine.ID().String()).Logger()

	s.engine.OnRaceStarted(s.onRaceStarted)
	s.engine.OnTick(s.onTick)
	s.engine.OnSettled(s.onSettled)
	s.engine.OnQuestion(s.sendQuestion)
	s.engine.OnSessionFinished(s.onFinished)

	state := s.engine.State()
	_ = s.send(ws.TypeSessionStarted, ws.SessionStartedPayload{
		SessionID:      s.engine.ID().String(),
		Category:       s.category,
		Difficulty:     string(s.difficulty),
		TotalQuestions: state.TotalQuestions,
		Resumed:        snap != nil,
		Score:          state.Score,
		Streak:         state.CurrentStreak,
		ManualAdvance:  opts.ManualAdvance,
	})

	if q, ok := s.engine.Current(); ok {
		s.sendQuestion(q)
		return
	}
	if state.TotalQuestions == 0 {
		_ = s.sendError(httperrors.ErrCodeEmptyQuestionPool, "No questions match the selected category and difficulty")
	}
	s.onFinished(s.engine.Summary())
}

func (s *client) handleMessage(msg ws.Message) error {
	switch msg.Type {
	case ws.TypeSelectAnswer:
		var req ws.SelectAnswerPayload
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return s.sendError(httperrors.ErrCodeInvalidPayload, "Invalid select_answer payload")
		}
		if !s.engine.SelectAnswer(req.Index) {
			return s.sendError(httperrors.ErrCodeInvalidSelection, fmt.Sprintf("Cannot select answer %d now", req.Index))
		}
		return nil
	case ws.TypeStartRace:
		if !s.engine.StartRace() {
			return s.sendError(httperrors.ErrCodeRaceNotStarted, "Select an answer before starting, and wait for the current race to finish")
		}
		return nil
	case ws.TypeNextQuestion:
		if !s.engine.Advance() {
			return s.sendError(httperrors.ErrCodeNotSettled, "No settled race to advance from")
		}
		return nil
	case ws.TypeExitSession:
		s.engine.ExitSession()
		s.deleteSnapshot()
		s.h.hub.Unregister(s.engine.ID(), s.conn)
		return nil
	case ws.TypePing:
		return s.send(ws.TypePong, nil)
	default:
		return s.sendError(httperrors.ErrCodeUnknownMessageType, fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

func (s *client) onRaceStarted(q question.Question, selected int) {
	_ = s.send(ws.TypeRaceStarted, ws.RaceStartedPayload{QuestionID: q.ID, Selected: selected})
}

func (s *client) onTick(positions []race.Contender) {
	_ = s.send(ws.TypeRaceTick, ws.RaceTickPayload{Contenders: toWSContenders(positions)})
}

func (s *client) onSettled(st Settlement) {
	_ = s.send(ws.TypeRaceSettled, ws.RaceSettledPayload{
		QuestionID:   st.Question.ID,
		Ranking:      toWSContenders(st.Outcome.Ranking),
		Winner:       st.Outcome.Winner,
		Ticks:        st.Outcome.Ticks,
		Selected:     st.Selected,
		CorrectIndex: st.Question.CorrectIndex,
		Correct:      st.Correct,
		Delta:        st.Delta,
		Score:        st.State.Score,
		Streak:       st.Streak,
	})

	if s.h.snapshots == nil || st.State.Complete() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()
	if err := s.h.snapshots.Save(ctx, Snapshot{
		SessionID:  s.engine.ID(),
		Category:   s.category,
		Difficulty: s.difficulty,
		State:      st.State,
	}); err != nil {
		s.logger.Warn().Err(err).Msg("snapshot save failed")
	}
}

func (s *client) onFinished(summary Summary) {
	_ = s.send(ws.TypeSessionFinished, ws.SessionFinishedPayload(summary))
	s.deleteSnapshot()
}

func (s *client) deleteSnapshot() {
	if s.h.snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()
	if err := s.h.snapshots.Delete(ctx, s.engine.ID()); err != nil {
		s.logger.Warn().Err(err).Msg("snapshot delete failed")
	}
}

func (s *client) sendQuestion(q question.Question) {
	choices := make([]ws.Choice, len(q.Choices))
	for i, text := range q.Choices {
		choices[i] = ws.Choice{Index: i, Label: question.Label(i), Text: text}
	}
	state := s.engine.State()
	_ = s.send(ws.TypeQuestion, ws.QuestionPayload{
		ID:         q.ID,
		Category:   q.Category,
		Prompt:     q.Prompt,
		Choices:    choices,
		Difficulty: string(q.Difficulty),
		PointValue: q.PointValue,
		Answered:   len(state.Asked),
		Total:      state.TotalQuestions,
	})
}

func (s *client) send(msgType string, payload any) error {
	msg, err := ws.NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	if err := s.conn.Send(msg); err != nil {
		s.logger.Debug().Err(err).Str("type", msgType).Msg("send dropped")
		return err
	}
	return nil
}

func (s *client) sendError(code, message string) error {
	return s.send(ws.TypeError, ws.ErrorPayload{Code: code, Message: message})
}

func toWSContenders(cs []race.Contender) []ws.Contender {
	out := make([]ws.Contender, len(cs))
	for i, c := range cs {
		out[i] = ws.Contender{Index: c.Index, Label: c.Label, Position: c.Position}
	}
	return out
}
