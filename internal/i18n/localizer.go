// Package i18n holds the card's bilingual text table and language state.
package i18n

import (
	"embed"
	stderrors "errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/kapu/digital-card-go/pkg/errors"
)

//go:embed locales/*.toml
var localeFS embed.FS

// Language is a supported UI language code.
type Language string

const (
	English Language = "en"
	Kannada Language = "kn"
)

// CompanyNameKey is the message holding the company name in each script.
const CompanyNameKey = "companyName"

// LanguageNameKey is the message holding a language's own name.
const LanguageNameKey = "languageName"

// Localizer resolves message keys for the primary and secondary languages.
type Localizer struct {
	bundle     *goi18n.Bundle
	primary    Language
	secondary  Language
	localizers map[Language]*goi18n.Localizer
	keys       map[Language]map[string]struct{}
	source     map[string]string
	matcher    language.Matcher
}

// New loads the embedded locale files for primary and secondary.
func New(primary, secondary Language) (*Localizer, error) {
	return Load(localeFS, "locales", primary, secondary)
}

// Load reads messages.<lang>.toml for both languages from fsys under dir.
// The primary language's text is the source text for every key.
func Load(fsys fs.FS, dir string, primary, secondary Language) (*Localizer, error) {
	if primary == "" || secondary == "" || primary == secondary {
		return nil, errors.NewValidationError("two distinct languages are required", "languages", []Language{primary, secondary})
	}

	primaryTag, err := language.Parse(string(primary))
	if err != nil {
		return nil, fmt.Errorf("parse language %q: %w", primary, err)
	}
	secondaryTag, err := language.Parse(string(secondary))
	if err != nil {
		return nil, fmt.Errorf("parse language %q: %w", secondary, err)
	}

	bundle := goi18n.NewBundle(primaryTag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	l := &Localizer{
		bundle:     bundle,
		primary:    primary,
		secondary:  secondary,
		localizers: make(map[Language]*goi18n.Localizer, 2),
		keys:       make(map[Language]map[string]struct{}, 2),
		source:     make(map[string]string),
		matcher:    language.NewMatcher([]language.Tag{primaryTag, secondaryTag}),
	}

	for _, lang := range []Language{primary, secondary} {
		name := path.Join(dir, fmt.Sprintf("messages.%s.toml", lang))
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", name, err)
		}

		file, err := bundle.ParseMessageFileBytes(data, name)
		if err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", name, err)
		}

		keys := make(map[string]struct{}, len(file.Messages))
		for _, msg := range file.Messages {
			keys[msg.ID] = struct{}{}
			if lang == primary {
				l.source[msg.ID] = msg.Other
			}
		}
		l.keys[lang] = keys
		l.localizers[lang] = goi18n.NewLocalizer(bundle, string(lang))
	}

	return l, nil
}

func (l *Localizer) Primary() Language   { return l.primary }
func (l *Localizer) Secondary() Language { return l.secondary }

// Languages returns the supported languages, primary first.
func (l *Localizer) Languages() []Language {
	return []Language{l.primary, l.secondary}
}

// Supports reports whether lang is one of the two languages.
func (l *Localizer) Supports(lang Language) bool {
	return lang == l.primary || lang == l.secondary
}

// Keys returns every known message key, sorted.
func (l *Localizer) Keys() []string {
	seen := make(map[string]struct{})
	for _, keys := range l.keys {
		for key := range keys {
			seen[key] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for key := range seen {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Text returns key in lang.
func (l *Localizer) Text(lang Language, key string) string {
	return l.TextWith(lang, key, nil)
}

// TextWith returns key in lang with template data applied. A key missing for
// lang falls back to its source text, and an unknown key to the key itself.
func (l *Localizer) TextWith(lang Language, key string, data map[string]any) string {
	loc, ok := l.localizers[lang]
	if !ok {
		loc = l.localizers[l.primary]
	}

	if _, present := l.keys[lang][key]; present {
		msg, err := loc.Localize(&goi18n.LocalizeConfig{
			MessageID:    key,
			TemplateData: data,
		})
		if err == nil {
			return msg
		}
	}

	source, ok := l.source[key]
	if !ok {
		return key
	}

	msg, err := l.localizers[l.primary].Localize(&goi18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		return source
	}
	return msg
}

// Rendered is the complete text set for one language.
type Rendered struct {
	Lang  Language          `json:"lang"`
	Texts map[string]string `json:"texts"`
	Brand BrandLockup       `json:"brand"`
}

// Render resolves every key for lang.
func (l *Localizer) Render(lang Language, data map[string]any) Rendered {
	keys := l.Keys()
	texts := make(map[string]string, len(keys))
	for _, key := range keys {
		texts[key] = l.TextWith(lang, key, data)
	}
	return Rendered{Lang: lang, Texts: texts, Brand: l.BrandLockup(lang)}
}

// ParityError lists keys missing from a language.
type ParityError struct {
	Missing map[Language][]string
}

func (e *ParityError) Error() string {
	langs := make([]string, 0, len(e.Missing))
	for lang := range e.Missing {
		langs = append(langs, string(lang))
	}
	sort.Strings(langs)

	parts := make([]string, 0, len(langs))
	for _, lang := range langs {
		parts = append(parts, fmt.Sprintf("%s: %s", lang, strings.Join(e.Missing[Language(lang)], ", ")))
	}
	return "locale keys missing: " + strings.Join(parts, "; ")
}

// Validate checks that every key exists in both languages.
func (l *Localizer) Validate() error {
	all := l.Keys()
	missing := make(map[Language][]string)
	for _, lang := range l.Languages() {
		for _, key := range all {
			if _, ok := l.keys[lang][key]; !ok {
				missing[lang] = append(missing[lang], key)
			}
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ParityError{Missing: missing}
}

// MissingKeys returns the keys lang lacks, sorted.
func (l *Localizer) MissingKeys(lang Language) []string {
	var parity *ParityError
	if err := l.Validate(); stderrors.As(err, &parity) {
		return parity.Missing[lang]
	}
	return nil
}

// Negotiate maps a requested language onto a supported one. Regional variants
// match their base language. Anything else yields the primary language.
func (l *Localizer) Negotiate(requested string) Language {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return l.primary
	}

	tag, err := language.Parse(requested)
	if err != nil {
		return l.primary
	}

	_, index, confidence := l.matcher.Match(tag)
	if confidence < language.High {
		return l.primary
	}
	return l.Languages()[index]
}
