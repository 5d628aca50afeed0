package domain

import (
	"math/rand/v2"
	"slices"
	"time"
)

// ShuffleFunc permutes n elements through swap, like rand.Shuffle.
type ShuffleFunc func(n int, swap func(i, j int))

// Round represents a single round of the game
type Round struct {
	Number         int
	JudgeID        string
	PhraseOptions  []Phrase
	SelectedPhrase *Phrase
	Submissions    map[string]*Submission // submitter ID -> submission
	// SubmissionOrder is set once, when the last submission arrives, and is
	// the only mapping from a judged position back to a player.
	SubmissionOrder []string
	WinnerID        string
	WinningMemeID   string
	StartedAt       time.Time
}

// NewRound creates a new round judged by judgeID with the given phrase options
func NewRound(number int, judgeID string, options []Phrase) *Round {
	return &Round{
		Number:        number,
		JudgeID:       judgeID,
		PhraseOptions: options,
		Submissions:   make(map[string]*Submission),
		StartedAt:     time.Now(),
	}
}

// RoleOf returns the role the player has in this round
func (r *Round) RoleOf(playerID string) Role {
	if r.JudgeID == playerID {
		return RoleJudge
	}
	return RoleSubmitter
}

// PhraseOption returns the offered phrase with the given ID
func (r *Round) PhraseOption(phraseID string) (Phrase, bool) {
	for _, p := range r.PhraseOptions {
		if p.ID == phraseID {
			return p, true
		}
	}
	return Phrase{}, false
}

// HasSubmitted checks if a player has already submitted this round
func (r *Round) HasSubmitted(playerID string) bool {
	_, ok := r.Submissions[playerID]
	return ok
}

// AddSubmission records a submission. Guards live in Room.SubmitMeme.
func (r *Round) AddSubmission(playerID string, meme MemeCard) {
	r.Submissions[playerID] = NewSubmission(playerID, meme)
}

// SubmitterIDs returns the IDs of everyone who submitted, sorted.
func (r *Round) SubmitterIDs() []string {
	ids := make([]string, 0, len(r.Submissions))
	for id := range r.Submissions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// IsOrderFrozen reports whether the submission order has been fixed.
func (r *Round) IsOrderFrozen() bool {
	return r.SubmissionOrder != nil
}

// FreezeOrder fixes the submission order by shuffling the submitters.
// Calling it again after the order is set is a no-op.
func (r *Round) FreezeOrder(shuffle ShuffleFunc) {
	if r.IsOrderFrozen() {
		return
	}
	if shuffle == nil {
		shuffle = rand.Shuffle
	}

	order := r.SubmitterIDs()
	shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	r.SubmissionOrder = order
}

// SubmitterAt maps a position in the frozen order to its submitter
func (r *Round) SubmitterAt(position int) (string, bool) {
	if position < 0 || position >= len(r.SubmissionOrder) {
		return "", false
	}
	return r.SubmissionOrder[position], true
}

// Revealed returns the submissions in frozen order without submitter IDs
func (r *Round) Revealed() []RevealedSubmission {
	revealed := make([]RevealedSubmission, 0, len(r.SubmissionOrder))
	for i, playerID := range r.SubmissionOrder {
		sub, ok := r.Submissions[playerID]
		if !ok {
			continue
		}
		revealed = append(revealed, RevealedSubmission{
			PositionIndex: i,
			MemeID:        sub.Meme.ID,
			Meme:          sub.Meme,
		})
	}
	return revealed
}
