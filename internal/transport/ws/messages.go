package ws

import (
	"encoding/json"
	"time"
)

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgCreateRoom    MessageType = "create_room"
	MsgJoinRoom      MessageType = "join_room"
	MsgReconnectRoom MessageType = "reconnect_room"
	MsgChangeLocale  MessageType = "change_locale"
	MsgStartGame     MessageType = "start_game"
	MsgSelectPhrase  MessageType = "select_phrase"
	MsgSubmitMeme    MessageType = "submit_meme"
	MsgSelectWinner  MessageType = "select_winner"
	MsgNextRound     MessageType = "next_round"
	MsgPing          MessageType = "ping"
)

// Server → Client message types not covered by room events
const (
	MsgPong MessageType = "pong"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents a transport-level message from server to client
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType MessageType, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Client message payloads

// CreateRoomPayload is the payload for create_room message
type CreateRoomPayload struct {
	Nickname string `json:"nickname"`
	Locale   string `json:"locale,omitempty"`
}

// JoinRoomPayload is the payload for join_room message
type JoinRoomPayload struct {
	RoomCode string `json:"roomCode"`
	Nickname string `json:"nickname"`
	Locale   string `json:"locale,omitempty"`
}

// ReconnectRoomPayload is the payload for reconnect_room message
type ReconnectRoomPayload struct {
	PlayerID string `json:"playerId"`
	RoomCode string `json:"roomCode"`
	Locale   string `json:"locale,omitempty"`
}

// ChangeLocalePayload is the payload for change_locale message
type ChangeLocalePayload struct {
	Locale string `json:"locale"`
}

// SelectPhrasePayload is the payload for select_phrase message
type SelectPhrasePayload struct {
	PhraseID string `json:"phraseId"`
}

// SubmitMemePayload is the payload for submit_meme message
type SubmitMemePayload struct {
	MemeID string `json:"memeId"`
}

// SelectWinnerPayload is the payload for select_winner message. The position
// may arrive as a number or a string.
type SelectWinnerPayload struct {
	PositionIndex json.RawMessage `json:"positionIndex"`
}
