// Package content holds the static meme and phrase pools that rounds draw from.
package content

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"memeclash/internal/domain"
)

//go:embed data
var embedded embed.FS

// memeFile is the on-disk shape of memes.yaml
type memeFile struct {
	Memes []domain.MemeCard `yaml:"memes"`
}

// phraseFile is the on-disk shape of phrases/<locale>.yaml
type phraseFile struct {
	Locale  string          `yaml:"locale"`
	Phrases []domain.Phrase `yaml:"phrases"`
}

var _ domain.ContentSource = (*Pool)(nil)

// Pool is an immutable set of content items. It is safe for concurrent use.
type Pool struct {
	memes         []domain.MemeCard
	phrases       map[string][]domain.Phrase
	defaultLocale string
}

// NewPool builds a pool from in-memory items.
func NewPool(memes []domain.MemeCard, phrases map[string][]domain.Phrase, defaultLocale string) *Pool {
	return &Pool{
		memes:         memes,
		phrases:       phrases,
		defaultLocale: defaultLocale,
	}
}

// Load reads the pools from dir, or from the embedded defaults when dir is empty.
//
// The directory must contain memes.yaml and one phrases/<locale>.yaml per
// language, and must provide phrases for defaultLocale.
func Load(dir, defaultLocale string) (*Pool, error) {
	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(embedded, "data")
		if err != nil {
			return nil, fmt.Errorf("opening embedded content: %w", err)
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
	}
	return LoadFS(fsys, defaultLocale)
}

// LoadFS reads the pools from fsys.
func LoadFS(fsys fs.FS, defaultLocale string) (*Pool, error) {
	data, err := fs.ReadFile(fsys, "memes.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading memes: %w", err)
	}
	var mf memeFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parsing memes: %w", err)
	}

	files, err := fs.Glob(fsys, "phrases/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("listing phrases: %w", err)
	}

	phrases := make(map[string][]domain.Phrase, len(files))
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		var pf phraseFile
		if err := yaml.Unmarshal(data, &pf); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		locale := pf.Locale
		if locale == "" {
			locale = strings.TrimSuffix(path.Base(name), ".yaml")
		}
		phrases[locale] = append(phrases[locale], pf.Phrases...)
	}

	pool := NewPool(mf.Memes, phrases, defaultLocale)
	if err := pool.Validate(); err != nil {
		return nil, err
	}
	return pool, nil
}

// Validate checks that ids are present and unique across the whole pool.
func (p *Pool) Validate() error {
	var errs []error
	if len(p.memes) == 0 {
		errs = append(errs, errors.New("meme pool is empty"))
	}
	if len(p.phrases[p.defaultLocale]) == 0 {
		errs = append(errs, fmt.Errorf("no phrases for default locale %q", p.defaultLocale))
	}

	seen := make(map[string]bool)
	for _, m := range p.memes {
		if m.ID == "" || m.ImageURL == "" {
			errs = append(errs, fmt.Errorf("meme %q is incomplete", m.ID))
		}
		if seen[m.ID] {
			errs = append(errs, fmt.Errorf("duplicate meme id %q", m.ID))
		}
		seen[m.ID] = true
	}
	for locale, list := range p.phrases {
		for _, ph := range list {
			if ph.ID == "" || ph.Text == "" {
				errs = append(errs, fmt.Errorf("phrase %q in %s is incomplete", ph.ID, locale))
			}
			if seen[ph.ID] {
				errs = append(errs, fmt.Errorf("duplicate phrase id %q", ph.ID))
			}
			seen[ph.ID] = true
		}
	}
	return errors.Join(errs...)
}

// Locales returns the languages that have a phrase pool, sorted.
func (p *Pool) Locales() []string {
	locales := make([]string, 0, len(p.phrases))
	for l := range p.phrases {
		locales = append(locales, l)
	}
	slices.Sort(locales)
	return locales
}

// MemeCount returns the size of the meme pool.
func (p *Pool) MemeCount() int {
	return len(p.memes)
}

// DrawMemes returns up to count random memes whose ids are not in exclude.
func (p *Pool) DrawMemes(count int, exclude map[string]struct{}) []domain.MemeCard {
	return draw(p.memes, count, exclude, func(m domain.MemeCard) string { return m.ID })
}

// DrawPhrases returns up to count random unused phrases in locale. An unknown
// locale, or one with nothing left, falls back to the default locale.
func (p *Pool) DrawPhrases(count int, exclude map[string]struct{}, locale string) []domain.Phrase {
	id := func(ph domain.Phrase) string { return ph.ID }

	if list, ok := p.phrases[locale]; ok {
		if drawn := draw(list, count, exclude, id); len(drawn) > 0 || locale == p.defaultLocale {
			return drawn
		}
	}
	return draw(p.phrases[p.defaultLocale], count, exclude, id)
}

func draw[T any](pool []T, count int, exclude map[string]struct{}, id func(T) string) []T {
	if count <= 0 {
		return nil
	}

	available := make([]T, 0, len(pool))
	for _, item := range pool {
		if _, used := exclude[id(item)]; !used {
			available = append(available, item)
		}
	}

	rand.Shuffle(len(available), func(i, j int) {
		available[i], available[j] = available[j], available[i]
	})

	if count < len(available) {
		available = available[:count]
	}
	return available
}
