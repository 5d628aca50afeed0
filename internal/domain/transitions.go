package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Every transition below evaluates all of its guards before the first
// mutation, so a returned error always leaves the room untouched.

// advance moves the room to the next phase. Callers have already checked
// their guards, so an illegal step is a bug and panics.
func (r *Room) advance(to Phase) {
	if !r.Phase.CanTransitionTo(to) {
		panic(fmt.Sprintf("illegal phase transition %s -> %s", r.Phase, to))
	}
	r.Phase = to
}

// Start deals hands and opens round 1 with the host as judge
func (r *Room) Start(playerID string) error {
	if r.Phase != PhaseLobby {
		return ErrIgnored
	}
	if _, ok := r.Players[playerID]; !ok {
		return ErrIgnored
	}
	if !r.IsHost(playerID) {
		return ErrNotHost
	}
	if len(r.Players) < r.Settings.MinPlayers {
		return ErrNotEnoughPlayers
	}

	r.dealHands()
	r.beginRound(r.HostID)
	return nil
}

// SelectPhrase stores the judge's phrase and opens picking
func (r *Room) SelectPhrase(playerID, phraseID string) (Phrase, error) {
	if r.Phase != PhasePhraseSelection || r.CurrentRound == nil {
		return Phrase{}, ErrIgnored
	}
	if r.CurrentRound.RoleOf(playerID) != RoleJudge {
		return Phrase{}, ErrNotJudge
	}
	phrase, ok := r.CurrentRound.PhraseOption(phraseID)
	if !ok {
		return Phrase{}, ErrInvalidPhrase
	}

	r.UsedPhraseIDs[phrase.ID] = struct{}{}
	r.CurrentRound.SelectedPhrase = &phrase
	r.advance(PhasePicking)
	return phrase, nil
}

// SubmitMeme moves a card from the player's hand into the round. It reports
// complete=true when this was the last missing submission, in which case the
// order has been frozen and the room is now judging.
func (r *Room) SubmitMeme(playerID, memeID string) (complete bool, err error) {
	if r.Phase != PhasePicking || r.CurrentRound == nil {
		return false, ErrIgnored
	}
	player, ok := r.Players[playerID]
	if !ok {
		return false, ErrIgnored
	}
	round := r.CurrentRound
	if round.RoleOf(playerID).IsJudge() {
		return false, ErrJudgeCannotSubmit
	}
	if round.HasSubmitted(playerID) {
		return false, ErrAlreadySubmitted
	}
	idx := player.HandIndex(memeID)
	if idx < 0 {
		return false, ErrInvalidMeme
	}

	round.AddSubmission(playerID, player.TakeCard(idx))

	if len(round.Submissions) == len(r.Players)-1 {
		round.FreezeOrder(r.shuffle)
		r.advance(PhaseJudging)
		return true, nil
	}
	return false, nil
}

// SelectWinner resolves a position in the frozen order to its submitter and
// awards one point. It returns the winner's ID.
func (r *Room) SelectWinner(playerID string, position int) (string, error) {
	if r.Phase != PhaseJudging || r.CurrentRound == nil {
		return "", ErrIgnored
	}
	round := r.CurrentRound
	if round.RoleOf(playerID) != RoleJudge {
		return "", ErrNotJudge
	}
	winnerID, ok := round.SubmitterAt(position)
	if !ok {
		return "", ErrInvalidSelection
	}
	winner, ok := r.Players[winnerID]
	if !ok {
		return "", ErrInvalidSelection
	}
	sub, ok := round.Submissions[winnerID]
	if !ok {
		return "", ErrInvalidSelection
	}

	winner.Score++
	round.WinnerID = winnerID
	round.WinningMemeID = sub.Meme.ID
	r.advance(PhaseResult)
	return winnerID, nil
}

// NextRound refills submitters' hands and makes the winner the next judge
func (r *Room) NextRound(playerID string) error {
	if r.Phase != PhaseResult || r.CurrentRound == nil || r.CurrentRound.WinnerID == "" {
		return ErrIgnored
	}
	if r.CurrentRound.WinnerID != playerID {
		return ErrNotWinner
	}

	r.replenishHands(r.CurrentRound.SubmitterIDs())
	r.beginRound(r.CurrentRound.WinnerID)
	return nil
}

// ParsePosition reads a judged position from a wire value. It accepts a JSON
// number, a numeric string, or the "order-N" form older clients send.
func ParsePosition(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	s = strings.TrimPrefix(strings.TrimSpace(s), "order-")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
