package domain

import "time"

// EventType represents the type of room event. The values double as the
// outbound wire message types.
type EventType string

const (
	EventRoomCreated       EventType = "room_created"
	EventRoomJoined        EventType = "room_joined"
	EventRoomState         EventType = "room_state"
	EventHandDealt         EventType = "hand_dealt"
	EventPlayerJoined      EventType = "player_joined"
	EventPlayerLeft        EventType = "player_left"
	EventPlayerReconnected EventType = "player_reconnected"
	EventPlayerSubmitted   EventType = "player_submitted"
	EventPhraseSelected    EventType = "phrase_selected"
	EventWinnerSelected    EventType = "winner_selected"
	EventNewRound          EventType = "new_round"
	EventLocaleChanged     EventType = "locale_changed"
	EventError             EventType = "error"
)

// GameEvent represents an event that occurred in a room. Events with a
// PlayerID go to that player only; the rest go to the whole room.
type GameEvent struct {
	Type      EventType   `json:"type"`
	RoomCode  string      `json:"-"`
	PlayerID  string      `json:"-"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a new room-wide event
func NewEvent(eventType EventType, roomCode string, payload interface{}) *GameEvent {
	return &GameEvent{
		Type:      eventType,
		RoomCode:  roomCode,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// NewPlayerEvent creates a new player-specific event
func NewPlayerEvent(eventType EventType, roomCode, playerID string, payload interface{}) *GameEvent {
	return &GameEvent{
		Type:      eventType,
		RoomCode:  roomCode,
		PlayerID:  playerID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// IsTargeted reports whether the event is addressed to a single player
func (e *GameEvent) IsTargeted() bool {
	return e.PlayerID != ""
}

// Payload types for different events

// RoomCreatedPayload is sent to the creator of a room
type RoomCreatedPayload struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

// RoomJoinedPayload is sent to a player after join or reconnect
type RoomJoinedPayload struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

// RoomStatePayload carries the full public snapshot
type RoomStatePayload struct {
	State *RoomState `json:"state"`
}

// HandDealtPayload is sent privately with the player's current hand
type HandDealtPayload struct {
	Hand []MemeCard `json:"hand"`
}

// PlayerJoinedPayload announces a new player
type PlayerJoinedPayload struct {
	Player PlayerInfo `json:"player"`
}

// PlayerPayload names the player a presence or submission event is about
type PlayerPayload struct {
	PlayerID string `json:"playerId"`
}

// PhraseSelectedPayload is sent when the judge picks a phrase
type PhraseSelectedPayload struct {
	Phrase Phrase `json:"phrase"`
}

// WinnerSelectedPayload reveals who was behind the judged position
type WinnerSelectedPayload struct {
	WinnerID      string `json:"winnerId"`
	PositionIndex int    `json:"positionIndex"`
}

// NewRoundPayload is sent when a new round starts
type NewRoundPayload struct {
	Round *RoundState `json:"round"`
}

// LocaleChangedPayload confirms a locale change
type LocaleChangedPayload struct {
	Locale string `json:"locale"`
}

// ErrorPayload is sent when an action is rejected
type ErrorPayload struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}
