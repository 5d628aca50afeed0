package domain

import (
	"math/rand/v2"
	"strings"
	"time"
)

// RoomSettings holds configurable game parameters
type RoomSettings struct {
	MinPlayers    int `json:"minPlayers"`
	MaxPlayers    int `json:"maxPlayers"`
	HandSize      int `json:"handSize"`
	PhraseOptions int `json:"phraseOptions"`
}

// DefaultRoomSettings returns the default room settings
func DefaultRoomSettings() RoomSettings {
	return RoomSettings{
		MinPlayers:    3,
		MaxPlayers:    10,
		HandSize:      10,
		PhraseOptions: 3,
	}
}

// RoomCodeChars are characters used for room codes (no ambiguous chars)
const RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NormalizeRoomCode upper-cases and trims a code so lookups are case-insensitive
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Room is the aggregate for one game. It is not safe for concurrent use;
// callers serialize access per room.
type Room struct {
	Code          string
	Phase         Phase
	Players       map[string]*Player
	HostID        string
	CurrentRound  *Round
	UsedPhraseIDs map[string]struct{}
	UsedMemeIDs   map[string]struct{}
	Settings      RoomSettings
	CreatedAt     time.Time

	order   []string // player IDs in join order
	content ContentSource
	shuffle ShuffleFunc
}

// NewRoom creates an empty room in the lobby
func NewRoom(code string, settings RoomSettings, content ContentSource) *Room {
	return &Room{
		Code:          NormalizeRoomCode(code),
		Phase:         PhaseLobby,
		Players:       make(map[string]*Player),
		UsedPhraseIDs: make(map[string]struct{}),
		UsedMemeIDs:   make(map[string]struct{}),
		Settings:      settings,
		CreatedAt:     time.Now(),
		order:         make([]string, 0, settings.MaxPlayers),
		content:       content,
		shuffle:       rand.Shuffle,
	}
}

// SetShuffle replaces the permutation used to freeze submission order
func (r *Room) SetShuffle(shuffle ShuffleFunc) {
	r.shuffle = shuffle
}

// PlayerCount returns the number of players in the room
func (r *Room) PlayerCount() int {
	return len(r.Players)
}

// IsEmpty reports whether the last player has left
func (r *Room) IsEmpty() bool {
	return len(r.Players) == 0
}

// CanJoin checks if a new player can join the room
func (r *Room) CanJoin() bool {
	return r.Phase == PhaseLobby && len(r.Players) < r.Settings.MaxPlayers
}

// OrderedPlayers returns players in join order
func (r *Room) OrderedPlayers() []*Player {
	players := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		if p, ok := r.Players[id]; ok {
			players = append(players, p)
		}
	}
	return players
}

// GetPlayer returns a player by ID
func (r *Room) GetPlayer(playerID string) (*Player, error) {
	player, ok := r.Players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return player, nil
}

// IsHost checks if the player is the host
func (r *Room) IsHost(playerID string) bool {
	return r.HostID == playerID
}

// AddPlayer adds a connected player to the lobby. The first player becomes host.
func (r *Room) AddPlayer(playerID, nickname, locale, handle string) (*Player, error) {
	if r.Phase.InGame() {
		return nil, ErrGameInProgress
	}

	if len(r.Players) >= r.Settings.MaxPlayers {
		return nil, ErrRoomFull
	}

	player := NewPlayer(playerID, nickname, locale, r.nextAvatarColor(), handle)
	r.Players[playerID] = player
	r.order = append(r.order, playerID)

	if r.HostID == "" {
		r.setHost(playerID)
	}

	return player, nil
}

// RemovePlayer removes a player. If the host left and players remain, the
// earliest joined remaining player becomes host.
func (r *Room) RemovePlayer(playerID string) error {
	if _, ok := r.Players[playerID]; !ok {
		return ErrPlayerNotFound
	}

	delete(r.Players, playerID)
	for i, id := range r.order {
		if id == playerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if r.HostID == playerID {
		r.HostID = ""
		if len(r.order) > 0 {
			r.setHost(r.order[0])
		}
	}

	return nil
}

func (r *Room) setHost(playerID string) {
	if prev, ok := r.Players[r.HostID]; ok {
		prev.IsHost = false
	}
	r.HostID = playerID
	r.Players[playerID].IsHost = true
}

// nextAvatarColor picks the first color nobody in the room wears yet,
// falling back to a random one when all are taken.
func (r *Room) nextAvatarColor() string {
	taken := make(map[string]bool, len(r.Players))
	for _, p := range r.Players {
		taken[p.AvatarColor] = true
	}
	for _, c := range AvatarColors {
		if !taken[c] {
			return c
		}
	}
	return AvatarColors[rand.IntN(len(AvatarColors))]
}
