package text

import (
	"strings"
	"unicode/utf8"
)

// Truncate cuts s to at most n runes. Invalid UTF-8 is replaced so the
// result always fits a utf8mb4 varchar(n) column.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "�")
	}
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
