package domain

// Phase represents the current phase of a room
type Phase string

const (
	PhaseLobby           Phase = "lobby"            // Waiting for players to join
	PhasePhraseSelection Phase = "phrase_selection" // Judge picks one of the offered phrases
	PhasePicking         Phase = "picking"          // Everyone but the judge submits a meme
	PhaseJudging         Phase = "judging"          // Judge picks a winning position
	PhaseResult          Phase = "result"           // Winner shown, waiting for next round
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// InGame reports whether a game has been started in this phase.
func (p Phase) InGame() bool {
	return p != PhaseLobby
}

// CanTransitionTo checks if a transition from current phase to target phase is valid
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase]Phase{
		PhaseLobby:           PhasePhraseSelection,
		PhasePhraseSelection: PhasePicking,
		PhasePicking:         PhaseJudging,
		PhaseJudging:         PhaseResult,
		PhaseResult:          PhasePhraseSelection,
	}

	next, ok := validTransitions[p]
	return ok && next == target
}
