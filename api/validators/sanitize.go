package validators

import (
	"strings"
	"unicode/utf8"
)

// SanitizeString trims s, folds runs of whitespace into one space and cuts
// the result to maxLen runes. maxLen <= 0 disables the cut.
func SanitizeString(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen])
}
