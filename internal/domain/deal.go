package domain

// dealHands gives every player a fresh hand. No card appears in two hands,
// and the room's used-meme set becomes exactly the dealt cards.
func (r *Room) dealHands() {
	used := make(map[string]struct{}, len(r.Players)*r.Settings.HandSize)
	for _, p := range r.OrderedPlayers() {
		hand := r.content.DrawMemes(r.Settings.HandSize, used)
		for _, card := range hand {
			used[card.ID] = struct{}{}
		}
		p.Hand = hand
	}
	r.UsedMemeIDs = used
}

// replenishHands draws one replacement card for each submitter, never
// reissuing a card the room has already dealt.
func (r *Room) replenishHands(submitterIDs []string) {
	for _, id := range submitterIDs {
		p, ok := r.Players[id]
		if !ok {
			continue
		}
		for _, card := range r.content.DrawMemes(1, r.UsedMemeIDs) {
			r.UsedMemeIDs[card.ID] = struct{}{}
			p.Hand = append(p.Hand, card)
		}
	}
}

// beginRound opens the next round for judgeID with phrases in the judge's locale
func (r *Room) beginRound(judgeID string) {
	number := 1
	if r.CurrentRound != nil {
		number = r.CurrentRound.Number + 1
	}

	locale := ""
	if judge, ok := r.Players[judgeID]; ok {
		locale = judge.Locale
	}

	options := r.content.DrawPhrases(r.Settings.PhraseOptions, r.UsedPhraseIDs, locale)
	r.CurrentRound = NewRound(number, judgeID, options)
	r.advance(PhasePhraseSelection)
}
