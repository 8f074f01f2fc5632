package domain

import (
	"sort"
	"strings"
	"time"
)

type Review struct {
	ID                string
	Title             string // optional
	Description       string
	OriginalLanguage  string // empty until detected
	Translations      Translations
	TitleTranslations Translations
	CreatedAt         time.Time
}

// Translations maps a base language code to text in that language.
type Translations map[string]string

// Get is safe on a nil map and ignores empty entries.
func (t Translations) Get(lang string) (string, bool) {
	s, ok := t[lang]
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Langs returns the populated language codes, sorted.
func (t Translations) Langs() []string {
	out := make([]string, 0, len(t))
	for l, s := range t {
		if s != "" {
			out = append(out, l)
		}
	}
	sort.Strings(out)
	return out
}

// ReviewUpdate is an additive partial update. Zero fields are left untouched
// by the store; translation keys not present are never removed.
type ReviewUpdate struct {
	OriginalLanguage  string
	Translations      Translations
	TitleTranslations Translations
}

func (u *ReviewUpdate) SetTranslation(lang, text string) {
	if u.Translations == nil {
		u.Translations = Translations{}
	}
	u.Translations[lang] = text
}

func (u *ReviewUpdate) SetTitleTranslation(lang, text string) {
	if u.TitleTranslations == nil {
		u.TitleTranslations = Translations{}
	}
	u.TitleTranslations[lang] = text
}

func (u ReviewUpdate) IsEmpty() bool {
	return u.OriginalLanguage == "" && len(u.Translations) == 0 && len(u.TitleTranslations) == 0
}

// Fields flattens the update into dotted document paths
// ("originalLanguage", "translations.hi", "titleTranslations.hi").
func (u ReviewUpdate) Fields() map[string]string {
	out := make(map[string]string, 1+len(u.Translations)+len(u.TitleTranslations))
	if u.OriginalLanguage != "" {
		out["originalLanguage"] = u.OriginalLanguage
	}
	for l, s := range u.Translations {
		out["translations."+l] = s
	}
	for l, s := range u.TitleTranslations {
		out["titleTranslations."+l] = s
	}
	return out
}

type NewReview struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (n NewReview) Normalize() NewReview {
	return NewReview{Title: strings.TrimSpace(n.Title), Description: strings.TrimSpace(n.Description)}
}

// Read models

type ReviewView struct {
	ID               string    `json:"id"`
	Title            string    `json:"title,omitempty"`
	Description      string    `json:"description"`
	OriginalLanguage string    `json:"originalLanguage,omitempty"`
	Languages        []string  `json:"languages"`
	CreatedAt        time.Time `json:"createdAt"`
}

// TranslationResult is what the read path renders for a (review, language) pair.
// Unavailable means the remote translation failed and the fields carry the original text.
type TranslationResult struct {
	TranslatedText   string `json:"translatedText"`
	TranslatedTitle  string `json:"translatedTitle,omitempty"`
	OriginalLanguage string `json:"originalLanguage,omitempty"`
	Cached           bool   `json:"cached"`
	Unavailable      bool   `json:"unavailable,omitempty"`
}
