package genre

import (
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// whitespace mirrors the ECMAScript \s class, which is wider than RE2's.
const whitespace = `\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}`

var (
	// Anything that is not a lowercase letter, digit or whitespace.
	nonSlugChars = regexp.MustCompile(`[^a-z0-9` + whitespace + `]+`)
	// Runs of whitespace.
	whitespaceRuns = regexp.MustCompile(`[` + whitespace + `]+`)
	// A valid, non-empty slug.
	slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// ToSlug converts a phrase to its URL slug.
// "Dream Pop" -> "dream-pop".
// "post-rock" -> "postrock" (hyphens are filtered before spaces become hyphens).
// "" -> "".
func ToSlug(phrase string) string {
	s := cases.Lower(language.Und).String(phrase)
	s = nonSlugChars.ReplaceAllString(s, "")
	return whitespaceRuns.ReplaceAllString(s, "-")
}

// IsSlug reports whether s is a non-empty string of lowercase letters, digits and hyphens.
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}
