package ws

import (
	"encoding/json"
	"fmt"
)

// MessageType constants for WebSocket protocol.
const (
	// Client -> Server
	TypeSelectAnswer = "select_answer"
	TypeStartRace    = "start_race"
	TypeNextQuestion = "next_question"
	TypeExitSession  = "exit_session"
	TypePing         = "ping"

	// Server -> Client
	TypeSessionStarted  = "session_started"
	TypeQuestion        = "question"
	TypeRaceStarted     = "race_started"
	TypeRaceTick        = "race_tick"
	TypeRaceSettled     = "race_settled"
	TypeSessionFinished = "session_finished"
	TypeError           = "error"
	TypePong            = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// NewMessage marshals payload into a typed envelope. A nil payload is omitted.
func NewMessage(msgType string, payload any) (Message, error) {
	msg := Message{Type: msgType}
	if payload == nil {
		return msg, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	msg.Payload = data
	return msg, nil
}

// Client Messages (incoming)

type SelectAnswerPayload struct {
	Index int `json:"index"`
}

// Server Messages (outgoing)

type SessionStartedPayload struct {
	SessionID      string `json:"session_id"`
	Category       string `json:"category,omitempty"`
	Difficulty     string `json:"difficulty,omitempty"`
	TotalQuestions int    `json:"total_questions"`
	Resumed        bool   `json:"resumed"`
	Score          int    `json:"score"`
	Streak         int    `json:"streak"`
	ManualAdvance  bool   `json:"manual_advance"`
}

type Choice struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

type QuestionPayload struct {
	ID         int      `json:"id"`
	Category   string   `json:"category"`
	Prompt     string   `json:"prompt"`
	Choices    []Choice `json:"choices"`
	Difficulty string   `json:"difficulty"`
	PointValue int      `json:"point_value"`
	Answered   int      `json:"answered"`
	Total      int      `json:"total"`
}

type RaceStartedPayload struct {
	QuestionID int `json:"question_id"`
	Selected   int `json:"selected"`
}

type Contender struct {
	Index    int     `json:"index"`
	Label    string  `json:"label"`
	Position float64 `json:"position"`
}

type RaceTickPayload struct {
	Contenders []Contender `json:"contenders"`
}

type RaceSettledPayload struct {
	QuestionID   int         `json:"question_id"`
	Ranking      []Contender `json:"ranking"`
	Winner       int         `json:"winner"`
	Ticks        int         `json:"ticks"`
	Selected     int         `json:"selected"`
	CorrectIndex int         `json:"correct_index"`
	Correct      bool        `json:"correct"`
	Delta        int         `json:"delta"`
	Score        int         `json:"score"`
	Streak       int         `json:"streak"`
}

type SessionFinishedPayload struct {
	Score          int `json:"score"`
	CorrectAnswers int `json:"correct_answers"`
	TotalQuestions int `json:"total_questions"`
	HighestStreak  int `json:"highest_streak"`
	Accuracy       int `json:"accuracy"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
