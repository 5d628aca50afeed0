// Package i18n translates error codes into player-facing messages.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"memeclash/internal/domain"
)

// DefaultLocale is the fallback when none is configured, and the last
// catalog consulted before giving up on a message
const DefaultLocale = "en"

//go:embed locales/*.yaml
var embedded embed.FS

type catalogFile struct {
	Locale string            `yaml:"locale"`
	Errors map[string]string `yaml:"errors"`
}

// Translator looks up error messages by code and locale. It is read-only
// after construction and safe for concurrent use.
type Translator struct {
	catalogs  map[string]map[string]string
	supported []string // supported[0] is the fallback
	matcher   language.Matcher
}

// Load builds a translator from the embedded catalogs. Unmatched locales fall
// back to fallback, or DefaultLocale when it is empty.
func Load(fallback string) (*Translator, error) {
	files, err := fs.Glob(embedded, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("listing catalogs: %w", err)
	}

	catalogs := make(map[string]map[string]string, len(files))
	for _, name := range files {
		data, err := embedded.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		var cf catalogFile
		if err := yaml.Unmarshal(data, &cf); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		catalogs[cf.Locale] = cf.Errors
	}

	return New(catalogs, fallback)
}

// New builds a translator from in-memory catalogs. A catalog for the
// fallback locale is required.
func New(catalogs map[string]map[string]string, fallback string) (*Translator, error) {
	if fallback == "" {
		fallback = DefaultLocale
	}
	if _, ok := catalogs[fallback]; !ok {
		return nil, fmt.Errorf("missing %q catalog", fallback)
	}

	supported := []string{fallback}
	for locale := range catalogs {
		if locale != fallback {
			supported = append(supported, locale)
		}
	}
	slices.Sort(supported[1:])

	tags := make([]language.Tag, 0, len(supported))
	for _, locale := range supported {
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("catalog locale %q: %w", locale, err)
		}
		tags = append(tags, tag)
	}

	return &Translator{
		catalogs:  catalogs,
		supported: supported,
		matcher:   language.NewMatcher(tags),
	}, nil
}

// Supported returns the locales with a catalog, fallback first.
func (t *Translator) Supported() []string {
	return slices.Clone(t.supported)
}

// Fallback returns the locale used when nothing better matches
func (t *Translator) Fallback() string {
	return t.supported[0]
}

// Normalize maps any client supplied language tag ("pl-PL", "UK", "de") to
// a supported locale, falling back to the configured fallback.
func (t *Translator) Normalize(locale string) string {
	if locale == "" {
		return t.Fallback()
	}
	if _, err := language.Parse(locale); err != nil {
		return t.Fallback()
	}
	_, idx := language.MatchStrings(t.matcher, locale)
	return t.supported[idx]
}

// Message translates code into locale, falling back to the configured
// fallback, then English, then the code itself.
func (t *Translator) Message(code domain.ErrorCode, locale string) string {
	for _, l := range []string{locale, t.Fallback(), DefaultLocale} {
		if msg, ok := t.catalogs[l][string(code)]; ok {
			return msg
		}
	}
	return string(code)
}
