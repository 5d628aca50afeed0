package domain

// MemeCard is a single image card a player can hold and submit.
type MemeCard struct {
	ID       string `json:"id" yaml:"id"`
	ImageURL string `json:"imageUrl" yaml:"imageUrl"`
}

// Phrase is a caption prompt offered to the judge.
type Phrase struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// ContentSource draws unused content items. Draws never block and return
// fewer items than requested when the pool is exhausted.
type ContentSource interface {
	DrawMemes(count int, exclude map[string]struct{}) []MemeCard
	DrawPhrases(count int, exclude map[string]struct{}, locale string) []Phrase
}
