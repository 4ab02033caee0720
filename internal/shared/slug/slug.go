// Package slug turns product names into URL path segments.
package slug

import (
	"regexp"
	"strings"
)

const maxLen = 150

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	// tea names often arrive with tone marks or French accents
	folds = strings.NewReplacer(
		"à", "a", "á", "a", "â", "a", "ä", "a", "ā", "a", "ǎ", "a",
		"è", "e", "é", "e", "ê", "e", "ë", "e", "ē", "e", "ě", "e",
		"ì", "i", "í", "i", "î", "i", "ï", "i", "ī", "i", "ǐ", "i",
		"ò", "o", "ó", "o", "ô", "o", "ö", "o", "ō", "o", "ǒ", "o",
		"ù", "u", "ú", "u", "û", "u", "ü", "u", "ū", "u", "ǔ", "u",
		"ǖ", "u", "ǘ", "u", "ǚ", "u", "ǜ", "u",
		"ç", "c", "ñ", "n", "&", " and ",
	)
)

// FromName lowercases, folds accents and joins words with dashes. Empty
// input yields "tea".
func FromName(s string) string {
	s = folds.Replace(strings.ToLower(strings.TrimSpace(s)))
	s = strings.Trim(nonAlnum.ReplaceAllString(s, "-"), "-")
	if len(s) > maxLen {
		s = strings.TrimRight(s[:maxLen], "-")
	}
	if s == "" {
		return "tea"
	}
	return s
}
