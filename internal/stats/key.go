package stats

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letters that carry no combining mark under NFD but still need folding
var folds = strings.NewReplacer(
	"ł", "l", "Ł", "L",
	"ø", "o", "Ø", "O",
	"đ", "d", "Đ", "D",
	"ß", "ss",
	"æ", "ae", "Æ", "AE",
	"œ", "oe", "Œ", "OE",
)

// NormalizeKey lowercases s, strips diacritics and drops every character
// that is not a letter or digit
func NormalizeKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, folds.Replace(s))
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range strings.ToLower(stripped) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// pluralSuffixes are tried in order against a normalized key. The list is
// kept short on purpose: every rule added can create collisions between
// unrelated unit names.
var pluralSuffixes = []struct{ from, to string }{
	{"ies", "y"},
	{"men", "man"},
	{"ves", "f"},
	{"s", ""},
}

// Variants returns key followed by its singular guesses
func Variants(key string) []string {
	if key == "" {
		return nil
	}
	out := []string{key}
	for _, s := range pluralSuffixes {
		if len(key) > len(s.from) && strings.HasSuffix(key, s.from) {
			out = appendUnique(out, strings.TrimSuffix(key, s.from)+s.to)
		}
	}
	return out
}

// Candidates returns the lookup keys for the given sources in order
func Candidates(sources ...string) []string {
	var out []string
	for _, src := range sources {
		for _, v := range Variants(NormalizeKey(src)) {
			out = appendUnique(out, v)
		}
	}
	return out
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
