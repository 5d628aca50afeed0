package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeContent hands out items in pool order so tests can predict draws.
type fakeContent struct {
	memes   []MemeCard
	phrases map[string][]Phrase
}

func newFakeContent(memeCount int) *fakeContent {
	fc := &fakeContent{phrases: make(map[string][]Phrase)}
	for i := 1; i <= memeCount; i++ {
		fc.memes = append(fc.memes, MemeCard{ID: fmt.Sprintf("m%03d", i), ImageURL: fmt.Sprintf("https://img.test/%d.jpg", i)})
	}
	for _, locale := range []string{"en", "pl"} {
		for i := 1; i <= 20; i++ {
			fc.phrases[locale] = append(fc.phrases[locale], Phrase{ID: fmt.Sprintf("%s-%03d", locale, i), Text: fmt.Sprintf("%s phrase %d", locale, i)})
		}
	}
	return fc
}

func (f *fakeContent) DrawMemes(count int, exclude map[string]struct{}) []MemeCard {
	out := make([]MemeCard, 0, count)
	for _, m := range f.memes {
		if len(out) == count {
			break
		}
		if _, used := exclude[m.ID]; !used {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeContent) DrawPhrases(count int, exclude map[string]struct{}, locale string) []Phrase {
	pool, ok := f.phrases[locale]
	if !ok {
		pool = f.phrases["en"]
	}
	out := make([]Phrase, 0, count)
	for _, p := range pool {
		if len(out) == count {
			break
		}
		if _, used := exclude[p.ID]; !used {
			out = append(out, p)
		}
	}
	return out
}

// identityShuffle leaves the submitter order sorted
func identityShuffle(int, func(i, j int)) {}

// reverseShuffle reverses the sorted submitter order
func reverseShuffle(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

func newLobby(t *testing.T, players int) *Room {
	t.Helper()
	room := NewRoom("abcdef", DefaultRoomSettings(), newFakeContent(200))
	for i := 1; i <= players; i++ {
		_, err := room.AddPlayer(fmt.Sprintf("p%d", i), fmt.Sprintf("Player %d", i), "en", fmt.Sprintf("h%d", i))
		require.NoError(t, err)
	}
	return room
}

// startedRoom returns a room in phrase_selection with p1 judging
func startedRoom(t *testing.T, players int) *Room {
	t.Helper()
	room := newLobby(t, players)
	require.NoError(t, room.Start("p1"))
	return room
}

// pickingRoom returns a room in picking with the first offered phrase chosen
func pickingRoom(t *testing.T, players int) *Room {
	t.Helper()
	room := startedRoom(t, players)
	_, err := room.SelectPhrase(room.CurrentRound.JudgeID, room.CurrentRound.PhraseOptions[0].ID)
	require.NoError(t, err)
	return room
}

// submitAll has every non-judge play the first card in hand and returns
// submitter -> meme ID
func submitAll(t *testing.T, room *Room) map[string]string {
	t.Helper()
	played := make(map[string]string)
	for _, p := range room.OrderedPlayers() {
		if p.ID == room.CurrentRound.JudgeID {
			continue
		}
		memeID := p.Hand[0].ID
		_, err := room.SubmitMeme(p.ID, memeID)
		require.NoError(t, err)
		played[p.ID] = memeID
	}
	return played
}
