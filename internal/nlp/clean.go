package nlp

import (
	"regexp"
	"strings"
)

// Whitespace as understood by the collapse step. Any rune in this class
// survives punctuation stripping and is later folded into a single space.
const ws = `\t\n\v\f\r \x{1c}-\x{1f}\x{85}\p{Z}`

var (
	reURL    = regexp.MustCompile(`(?:http|www)[^` + ws + `]+`)
	rePunct  = regexp.MustCompile(`[^\p{L}\p{N}_` + ws + `]+`)
	reNumber = regexp.MustCompile(`\p{N}+`)
	reSpace  = regexp.MustCompile(`[` + ws + `]+`)
)

// Clean lowercases s and removes URLs, punctuation, symbols and numbers,
// leaving single-space separated words. Clean(Clean(s)) == Clean(s).
func Clean(s string) string {
	s = strings.ToLower(strings.ToValidUTF8(s, ""))

	// Stripping punctuation or digits can join a new "http..." token
	// ("ht!tp.x"), so strip until no URL pattern is left.
	for {
		s = reURL.ReplaceAllString(s, "")
		s = rePunct.ReplaceAllString(s, "")
		s = reNumber.ReplaceAllString(s, "")
		if !reURL.MatchString(s) {
			break
		}
	}

	s = reSpace.ReplaceAllString(s, " ")
	return strings.Trim(s, " ")
}

// CleanPtr cleans an optional value; a missing value cleans to "".
func CleanPtr(p *string) string {
	if p == nil {
		return ""
	}
	return Clean(*p)
}
