package domain

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

// rapidShuffle lets rapid pick every swap of a Fisher-Yates pass
func rapidShuffle(t *rapid.T) ShuffleFunc {
	return func(n int, swap func(i, j int)) {
		for i := n - 1; i > 0; i-- {
			swap(i, rapid.IntRange(0, i).Draw(t, "swap"))
		}
	}
}

func rapidRoom(t *rapid.T) *Room {
	n := rapid.IntRange(3, 10).Draw(t, "players")
	room := NewRoom("RAPIDS", DefaultRoomSettings(), newFakeContent(1000))
	room.SetShuffle(rapidShuffle(t))
	for i := 1; i <= n; i++ {
		if _, err := room.AddPlayer(fmt.Sprintf("p%02d", i), "n", "en", fmt.Sprintf("h%d", i)); err != nil {
			t.Fatalf("add player: %v", err)
		}
	}
	if err := room.Start("p01"); err != nil {
		t.Fatalf("start: %v", err)
	}
	return room
}

// playToJudging selects a phrase and has every non-judge submit a random card
func playToJudging(t *rapid.T, room *Room) map[string]string {
	round := room.CurrentRound
	if _, err := room.SelectPhrase(round.JudgeID, round.PhraseOptions[0].ID); err != nil {
		t.Fatalf("select phrase: %v", err)
	}
	played := make(map[string]string)
	for _, p := range room.OrderedPlayers() {
		if p.ID == round.JudgeID {
			continue
		}
		card := p.Hand[rapid.IntRange(0, len(p.Hand)-1).Draw(t, "card")]
		if _, err := room.SubmitMeme(p.ID, card.ID); err != nil {
			t.Fatalf("submit: %v", err)
		}
		played[p.ID] = card.ID
	}
	if room.Phase != PhaseJudging {
		t.Fatalf("phase %s after all submissions", room.Phase)
	}
	return played
}

func TestPropertyWinnerMatchesFrozenPosition(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		room := rapidRoom(t)
		played := playToJudging(t, room)

		order := append([]string(nil), room.CurrentRound.SubmissionOrder...)
		revealed := room.Snapshot().CurrentRound.RevealedSubmissions
		pos := rapid.IntRange(0, len(order)-1).Draw(t, "position")
		scoreBefore := room.Players[order[pos]].Score

		winnerID, err := room.SelectWinner(room.CurrentRound.JudgeID, pos)
		if err != nil {
			t.Fatalf("select winner: %v", err)
		}
		if winnerID != order[pos] {
			t.Fatalf("position %d resolved to %s, frozen order has %s", pos, winnerID, order[pos])
		}
		if played[winnerID] != revealed[pos].MemeID {
			t.Fatalf("revealed meme %s at %d, winner played %s", revealed[pos].MemeID, pos, played[winnerID])
		}
		if got := room.Players[winnerID].Score; got != scoreBefore+1 {
			t.Fatalf("score %d, want %d", got, scoreBefore+1)
		}
	})
}

func TestPropertyFrozenOrderNeverChanges(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		room := rapidRoom(t)
		playToJudging(t, room)

		order := append([]string(nil), room.CurrentRound.SubmissionOrder...)
		reads := rapid.IntRange(1, 5).Draw(t, "reads")
		for i := 0; i < reads; i++ {
			room.Snapshot()
			room.CurrentRound.FreezeOrder(rapidShuffle(t))
		}
		for i, id := range room.CurrentRound.SubmissionOrder {
			if order[i] != id {
				t.Fatalf("order changed at %d: %s -> %s", i, order[i], id)
			}
		}
	})
}

func TestPropertyNoCardIssuedTwice(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		room := rapidRoom(t)
		rounds := rapid.IntRange(1, 6).Draw(t, "rounds")

		var submitted []string
		for r := 0; r < rounds; r++ {
			played := playToJudging(t, room)
			for _, id := range played {
				submitted = append(submitted, id)
			}
			pos := rapid.IntRange(0, len(played)-1).Draw(t, "position")
			winnerID, err := room.SelectWinner(room.CurrentRound.JudgeID, pos)
			if err != nil {
				t.Fatalf("select winner: %v", err)
			}
			if err := room.NextRound(winnerID); err != nil {
				t.Fatalf("next round: %v", err)
			}
		}

		seen := make(map[string]bool)
		check := func(id string) {
			if seen[id] {
				t.Fatalf("card %s issued twice", id)
			}
			seen[id] = true
		}
		for _, id := range submitted {
			check(id)
		}
		for _, p := range room.Players {
			for _, card := range p.Hand {
				check(card.ID)
			}
		}
	})
}
