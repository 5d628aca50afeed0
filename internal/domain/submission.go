package domain

import "time"

// Submission represents a meme submitted by a player during the picking phase
type Submission struct {
	PlayerID    string
	Meme        MemeCard
	SubmittedAt time.Time
}

// NewSubmission creates a new submission
func NewSubmission(playerID string, meme MemeCard) *Submission {
	return &Submission{
		PlayerID:    playerID,
		Meme:        meme,
		SubmittedAt: time.Now(),
	}
}

// RevealedSubmission is a submission as shown to the room once judging starts.
// The submitter is not part of it; only the position identifies it.
type RevealedSubmission struct {
	PositionIndex int      `json:"positionIndex"`
	MemeID        string   `json:"memeId"`
	Meme          MemeCard `json:"meme"`
}
