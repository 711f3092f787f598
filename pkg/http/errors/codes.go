package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest    = "invalid_request"
	ErrCodeInvalidDifficulty = "invalid_difficulty"
	ErrCodeMethodNotAllowed  = "method_not_allowed"

	// Session errors
	ErrCodeEmptyQuestionPool = "empty_question_pool"
	ErrCodeInvalidSelection  = "invalid_selection"
	ErrCodeRaceNotStarted    = "race_not_started"
	ErrCodeNotSettled        = "not_settled"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"

	// Server errors
	ErrCodeInternalError = "internal_error"
	ErrCodeUpstreamError = "upstream_error"
)
