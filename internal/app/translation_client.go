package app

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"truview/internal/adapters/observability"
	"truview/internal/domain"
)

// detectPrefixRunes bounds what is sent for language detection.
const detectPrefixRunes = 500

// TranslationClient shields the pipelines from the remote API: every failure
// is logged and reported as "unavailable" instead of an error.
// A nil remote means translation is not configured.
type TranslationClient struct {
	remote domain.Translator
}

func NewTranslationClient(remote domain.Translator) *TranslationClient {
	return &TranslationClient{remote: remote}
}

func (c *TranslationClient) Enabled() bool { return c != nil && c.remote != nil }

// DetectLanguage returns the base language code of text, or false when it
// cannot be determined right now.
func (c *TranslationClient) DetectLanguage(ctx context.Context, text string) (string, bool) {
	if !c.Enabled() || strings.TrimSpace(text) == "" {
		return "", false
	}
	code, err := c.remote.Detect(ctx, prefix(text, detectPrefixRunes))
	if err != nil {
		log.Warn().Err(err).Str("err_type", observability.LabelErr(err)).Msg("language detection failed")
		return "", false
	}
	lang := domain.NormalizeLang(code)
	if lang == "" {
		log.Warn().Str("detected", code).Msg("language detection returned no usable code")
		return "", false
	}
	return lang, true
}

// TranslateText makes a single attempt. An empty source lets the remote API
// detect it. false means "unavailable now", not "permanently failed".
func (c *TranslationClient) TranslateText(ctx context.Context, text, target, source string) (string, bool) {
	if !c.Enabled() || strings.TrimSpace(text) == "" || target == "" {
		return "", false
	}
	out, err := c.remote.Translate(ctx, text, target, source)
	if err != nil {
		log.Warn().Err(err).
			Str("err_type", observability.LabelErr(err)).
			Str("target_lang", target).
			Str("source_lang", source).
			Msg("translation failed")
		return "", false
	}
	if strings.TrimSpace(out) == "" {
		log.Warn().Str("target_lang", target).Msg("translation returned empty text")
		return "", false
	}
	return out, true
}

// prefix returns at most n runes of s.
func prefix(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
