package content

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memeclash/internal/domain"
)

func TestLoad_Embedded(t *testing.T) {
	pool, err := Load("", "en")
	require.NoError(t, err)

	assert.Equal(t, 100, pool.MemeCount())
	assert.Equal(t, []string{"en", "pl", "uk"}, pool.Locales())

	for _, locale := range pool.Locales() {
		phrases := pool.DrawPhrases(3, nil, locale)
		require.Len(t, phrases, 3, locale)
		for _, p := range phrases {
			assert.True(t, strings.HasPrefix(p.ID, locale+"-"), p.ID)
		}
	}
}

func TestLoad_MissingDefaultLocale(t *testing.T) {
	_, err := Load("", "de")
	assert.ErrorContains(t, err, `no phrases for default locale "de"`)
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"memes.yaml": {Data: []byte(`
memes:
  - id: a
    imageUrl: https://img.test/a.jpg
  - id: b
    imageUrl: https://img.test/b.jpg
`)},
		"phrases/en.yaml": {Data: []byte(`
locale: en
phrases:
  - id: en-1
    text: When the build is green
`)},
		"phrases/de.yaml": {Data: []byte(`
phrases:
  - id: de-1
    text: Wenn der Build grün ist
`)},
	}

	pool, err := LoadFS(fsys, "en")
	require.NoError(t, err)

	assert.Equal(t, 2, pool.MemeCount())
	// locale falls back to the file name
	assert.Equal(t, []string{"de", "en"}, pool.Locales())
	assert.Equal(t, []domain.Phrase{{ID: "de-1", Text: "Wenn der Build grün ist"}}, pool.DrawPhrases(5, nil, "de"))
}

func TestLoadFS_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		fsys    fstest.MapFS
		wantErr string
	}{
		{
			name:    "missing memes file",
			fsys:    fstest.MapFS{},
			wantErr: "reading memes",
		},
		{
			name: "duplicate ids",
			fsys: fstest.MapFS{
				"memes.yaml":      {Data: []byte("memes:\n  - {id: x, imageUrl: u1}\n  - {id: x, imageUrl: u2}\n")},
				"phrases/en.yaml": {Data: []byte("locale: en\nphrases:\n  - {id: p, text: t}\n")},
			},
			wantErr: `duplicate meme id "x"`,
		},
		{
			name: "incomplete phrase",
			fsys: fstest.MapFS{
				"memes.yaml":      {Data: []byte("memes:\n  - {id: x, imageUrl: u1}\n")},
				"phrases/en.yaml": {Data: []byte("locale: en\nphrases:\n  - {id: p}\n")},
			},
			wantErr: `phrase "p" in en is incomplete`,
		},
		{
			name: "malformed yaml",
			fsys: fstest.MapFS{
				"memes.yaml": {Data: []byte("memes: [")},
			},
			wantErr: "parsing memes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFS(tt.fsys, "en")
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDrawMemes(t *testing.T) {
	pool := NewPool([]domain.MemeCard{
		{ID: "a", ImageURL: "u"},
		{ID: "b", ImageURL: "u"},
		{ID: "c", ImageURL: "u"},
	}, nil, "en")

	t.Run("respects exclusion", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			drawn := pool.DrawMemes(2, map[string]struct{}{"b": {}})
			require.Len(t, drawn, 2)
			for _, m := range drawn {
				assert.NotEqual(t, "b", m.ID)
			}
		}
	})

	t.Run("returns what is left", func(t *testing.T) {
		drawn := pool.DrawMemes(5, map[string]struct{}{"a": {}})
		assert.Len(t, drawn, 2)
	})

	t.Run("zero count", func(t *testing.T) {
		assert.Nil(t, pool.DrawMemes(0, nil))
	})

	t.Run("no duplicates", func(t *testing.T) {
		drawn := pool.DrawMemes(3, nil)
		ids := map[string]bool{}
		for _, m := range drawn {
			ids[m.ID] = true
		}
		assert.Len(t, ids, 3)
	})
}

func TestDrawPhrases_Fallback(t *testing.T) {
	pool := NewPool(nil, map[string][]domain.Phrase{
		"en": {{ID: "en-1", Text: "a"}, {ID: "en-2", Text: "b"}},
		"pl": {{ID: "pl-1", Text: "c"}},
	}, "en")

	t.Run("unknown locale", func(t *testing.T) {
		drawn := pool.DrawPhrases(3, nil, "fr")
		assert.Len(t, drawn, 2)
		for _, p := range drawn {
			assert.True(t, strings.HasPrefix(p.ID, "en-"))
		}
	})

	t.Run("exhausted locale", func(t *testing.T) {
		drawn := pool.DrawPhrases(3, map[string]struct{}{"pl-1": {}}, "pl")
		assert.Len(t, drawn, 2)
	})

	t.Run("exhausted default locale", func(t *testing.T) {
		drawn := pool.DrawPhrases(3, map[string]struct{}{"en-1": {}, "en-2": {}}, "en")
		assert.Empty(t, drawn)
	})

	t.Run("own locale first", func(t *testing.T) {
		assert.Equal(t, []domain.Phrase{{ID: "pl-1", Text: "c"}}, pool.DrawPhrases(3, nil, "pl"))
	})
}
