package engine

import (
	"regexp"
	"strings"
	"unicode"

	"latex-speech/internal/types"
)

var (
	runOnWhitespaceRegex  = regexp.MustCompile(`\s+`)
	spaceBeforePunctRegex = regexp.MustCompile(`\s+([.,;:])`)
)

// phraseSub is one audience-level phrase substitution. Matchers are
// word-bounded so "sometimes" never loses its "times".
type phraseSub struct {
	re   *regexp.Regexp
	repl string
}

func newPhraseSub(from, to string) phraseSub {
	return phraseSub{
		re:   regexp.MustCompile(`\b` + regexp.QuoteMeta(from) + `\b`),
		repl: to,
	}
}

// basicSubs simplify phrasing for elementary and high-school audiences.
// Each right-hand side must not re-trigger any left-hand side, so the whole
// set is idempotent.
var basicSubs = []phraseSub{
	newPhraseSub("with respect to", "by"),
	newPhraseSub("is equivalent to", "equals"),
	newPhraseSub("if and only if", "exactly when"),
	newPhraseSub("such that", "where"),
	newPhraseSub("therefore", "so"),
}

// advancedSubs formalize phrasing for graduate and research audiences, the
// inverse direction of basicSubs. Same idempotence constraint.
var advancedSubs = []phraseSub{
	newPhraseSub("times", "multiplied by"),
	newPhraseSub("over", "divided by"),
	newPhraseSub("goes to", "approaches"),
	newPhraseSub("about", "approximately"),
}

// PostProcess normalizes stabilized rewrite output into final speech text:
// run-on whitespace collapses to single spaces, audience-level phrase
// substitutions apply, the first letter is capitalized, and space before
// punctuation is removed. Running it twice on its own output changes
// nothing.
func PostProcess(text string, audience types.AudienceLevel) string {
	result := runOnWhitespaceRegex.ReplaceAllString(text, " ")
	result = strings.TrimSpace(result)

	switch {
	case audience.Basic():
		for _, sub := range basicSubs {
			result = sub.re.ReplaceAllString(result, sub.repl)
		}
	case audience.Advanced():
		for _, sub := range advancedSubs {
			result = sub.re.ReplaceAllString(result, sub.repl)
		}
	}

	result = capitalizeFirst(result)
	result = spaceBeforePunctRegex.ReplaceAllString(result, "$1")
	return result
}

// capitalizeFirst upper-cases the first letter if it is not already.
func capitalizeFirst(s string) string {
	for i, r := range s {
		if !unicode.IsLetter(r) {
			return s
		}
		if unicode.IsUpper(r) {
			return s
		}
		return s[:i] + string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}
