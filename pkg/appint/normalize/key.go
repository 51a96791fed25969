package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key folds a raw name into its lookup form: lowercase, compatibility
// decomposed with combining marks removed, whitespace collapsed to single
// spaces and trimmed.
//
// Examples:
//   - Key("  Google   Analytics ") -> "google analytics"
//   - Key("Café\nPro") -> "cafe pro"
func Key(s string) string {
	if s == "" {
		return ""
	}
	// transform.Chain is stateful, build one per call.
	fold := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// hasWordRune reports whether s contains at least one letter or digit.
func hasWordRune(s string) bool {
	for _, r := range s {
		if isWordRune(r) {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
