package domain

// RoundState is the public projection of a round
type RoundState struct {
	RoundNumber         int                  `json:"roundNumber"`
	JudgeID             string               `json:"judgeId"`
	PhraseOptions       []Phrase             `json:"phraseOptions"`
	Phrase              *Phrase              `json:"phrase"`
	SubmittedPlayerIDs  []string             `json:"submittedPlayerIds"`
	RevealedSubmissions []RevealedSubmission `json:"revealedSubmissions"`
	WinnerID            *string              `json:"winnerId"`
	WinningMemeID       *string              `json:"winningMemeId"`
}

// RoomState is the snapshot broadcast to every member of a room
type RoomState struct {
	RoomCode     string       `json:"roomCode"`
	Phase        Phase        `json:"phase"`
	Players      []PlayerInfo `json:"players"`
	HostID       string       `json:"hostId"`
	CurrentRound *RoundState  `json:"currentRound"`
}

// RoomInfo answers the pre-join lookup for a room code
type RoomInfo struct {
	Exists      bool  `json:"exists"`
	PlayerCount int   `json:"playerCount"`
	Phase       Phase `json:"phase,omitempty"`
	CanJoin     bool  `json:"canJoin"`
}

// Snapshot projects the room for broadcast. Submissions are only revealed
// from judging onward, in frozen order and without submitter IDs.
func (r *Room) Snapshot() *RoomState {
	players := r.OrderedPlayers()
	infos := make([]PlayerInfo, 0, len(players))
	for _, p := range players {
		infos = append(infos, p.ToInfo())
	}

	return &RoomState{
		RoomCode:     r.Code,
		Phase:        r.Phase,
		Players:      infos,
		HostID:       r.HostID,
		CurrentRound: r.roundState(),
	}
}

// Info returns the read-only room summary
func (r *Room) Info() RoomInfo {
	return RoomInfo{
		Exists:      true,
		PlayerCount: len(r.Players),
		Phase:       r.Phase,
		CanJoin:     r.CanJoin(),
	}
}

func (r *Room) roundState() *RoundState {
	round := r.CurrentRound
	if round == nil {
		return nil
	}

	state := &RoundState{
		RoundNumber:         round.Number,
		JudgeID:             round.JudgeID,
		PhraseOptions:       append([]Phrase(nil), round.PhraseOptions...),
		SubmittedPlayerIDs:  round.SubmitterIDs(),
		RevealedSubmissions: []RevealedSubmission{},
	}
	if round.SelectedPhrase != nil {
		phrase := *round.SelectedPhrase
		state.Phrase = &phrase
	}
	if r.Phase == PhaseJudging || r.Phase == PhaseResult {
		state.RevealedSubmissions = round.Revealed()
	}
	if round.WinnerID != "" {
		winnerID, memeID := round.WinnerID, round.WinningMemeID
		state.WinnerID = &winnerID
		state.WinningMemeID = &memeID
	}
	return state
}
