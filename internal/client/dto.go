package client

import (
	"encoding/json"

	"lucas/internal/types"
)

type createSessionRequest struct {
	SessionID string         `json:"session_id"`
	State     map[string]any `json:"state"`
}

type apiSessionResponse struct {
	ID    string          `json:"id"`
	State json.RawMessage `json:"state"`
}

type SessionAck struct {
	SessionID string
	State     json.RawMessage
}

type HistoryResponse struct {
	State  json.RawMessage `json:"state"`
	Events []types.Message `json:"events"`
}

type MessageRequest struct {
	SessionID string              `json:"session_id"`
	Message   string              `json:"message"`
	Image     *types.ImagePayload `json:"image,omitempty"`
}
