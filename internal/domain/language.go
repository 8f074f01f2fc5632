package domain

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguages is the app language set used when none is configured.
var DefaultLanguages = []string{"en", "hi", "ta"}

// NormalizeLang reduces a BCP 47 tag to its lowercase base language
// ("en-US" -> "en", "iw" -> "he"). Unknown or undetermined input yields "".
func NormalizeLang(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No || base.String() == "und" {
		return ""
	}
	return base.String()
}

// ParseLanguages parses a comma separated list, dropping invalid codes and
// duplicates while keeping order. Falls back to DefaultLanguages when empty.
func ParseLanguages(csv string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, part := range strings.Split(csv, ",") {
		l := NormalizeLang(part)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultLanguages...)
	}
	return out
}

// MatchLanguage picks the supported language that best fits an Accept-Language
// header. The first supported language is the fallback.
func MatchLanguage(acceptLanguage string, supported []string) string {
	if len(supported) == 0 {
		return ""
	}
	tags := make([]language.Tag, 0, len(supported))
	for _, s := range supported {
		tags = append(tags, language.Make(s))
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return supported[0]
	}
	_, idx, conf := language.NewMatcher(tags).Match(prefs...)
	if conf == language.No {
		return supported[0]
	}
	return supported[idx]
}

func IsSupported(lang string, supported []string) bool {
	for _, s := range supported {
		if s == lang {
			return true
		}
	}
	return false
}
