package domain

import "time"

// ConnectionStatus represents a player's connection state
type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "CONNECTED"
	StatusDisconnected ConnectionStatus = "DISCONNECTED"
)

// AvatarColors are the high contrast colors handed out to players
var AvatarColors = []string{
	"#FF3366",
	"#33FF57",
	"#3366FF",
	"#FFCC00",
	"#FF6600",
	"#CC33FF",
	"#00CCCC",
	"#FF0099",
	"#66FF33",
	"#0099FF",
}

// Player represents a player in a room
type Player struct {
	ID          string
	Nickname    string
	AvatarColor string
	Score       int
	Status      ConnectionStatus
	IsHost      bool
	Locale      string
	Hand        []MemeCard
	Handle      string // current connection handle, empty while disconnected
	JoinedAt    time.Time
}

// NewPlayer creates a new connected player with the given ID and nickname
func NewPlayer(id, nickname, locale, avatarColor, handle string) *Player {
	return &Player{
		ID:          id,
		Nickname:    nickname,
		AvatarColor: avatarColor,
		Status:      StatusConnected,
		Locale:      locale,
		Hand:        make([]MemeCard, 0),
		Handle:      handle,
		JoinedAt:    time.Now(),
	}
}

// IsConnected returns true if the player is currently connected
func (p *Player) IsConnected() bool {
	return p.Status == StatusConnected
}

// Disconnect marks the player as disconnected and forgets its handle
func (p *Player) Disconnect() {
	p.Status = StatusDisconnected
	p.Handle = ""
}

// Reconnect marks the player as connected on a new handle
func (p *Player) Reconnect(handle string) {
	p.Status = StatusConnected
	p.Handle = handle
}

// HandIndex returns the position of a meme in the hand, or -1.
func (p *Player) HandIndex(memeID string) int {
	for i, card := range p.Hand {
		if card.ID == memeID {
			return i
		}
	}
	return -1
}

// TakeCard removes the card at index i from the hand and returns it.
func (p *Player) TakeCard(i int) MemeCard {
	card := p.Hand[i]
	p.Hand = append(p.Hand[:i:i], p.Hand[i+1:]...)
	return card
}

// HandCopy returns a copy of the hand safe to hand to other goroutines.
func (p *Player) HandCopy() []MemeCard {
	hand := make([]MemeCard, len(p.Hand))
	copy(hand, p.Hand)
	return hand
}

// PlayerInfo is the public view of a player. It never carries the hand.
type PlayerInfo struct {
	ID          string `json:"id"`
	Nickname    string `json:"nickname"`
	AvatarColor string `json:"avatarColor"`
	Score       int    `json:"score"`
	IsConnected bool   `json:"isConnected"`
	IsHost      bool   `json:"isHost"`
	Locale      string `json:"locale"`
}

// ToInfo converts a Player to PlayerInfo
func (p *Player) ToInfo() PlayerInfo {
	return PlayerInfo{
		ID:          p.ID,
		Nickname:    p.Nickname,
		AvatarColor: p.AvatarColor,
		Score:       p.Score,
		IsConnected: p.IsConnected(),
		IsHost:      p.IsHost,
		Locale:      p.Locale,
	}
}
