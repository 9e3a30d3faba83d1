package validator

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Expression is a validated, immutable LaTeX input plus the structural facts
// derived from it. Instances only come out of Validate; once constructed
// nothing mutates them.
type Expression struct {
	content    string
	commands   []string
	variables  []string
	maxDepth   int
	complexity float64
}

// Content returns the validated LaTeX source.
func (e *Expression) Content() string {
	return e.content
}

// Commands returns the sorted set of backslash-command names found in the
// expression. The returned slice is a copy.
func (e *Expression) Commands() []string {
	out := make([]string, len(e.commands))
	copy(out, e.commands)
	return out
}

// HasCommand reports whether the expression uses the named command.
func (e *Expression) HasCommand(name string) bool {
	for _, c := range e.commands {
		if c == name {
			return true
		}
	}
	return false
}

// Variables returns the sorted set of single-letter variables found in the
// expression. The returned slice is a copy.
func (e *Expression) Variables() []string {
	out := make([]string, len(e.variables))
	copy(out, e.variables)
	return out
}

// MaxNestingDepth returns the deepest brace nesting observed during
// validation.
func (e *Expression) MaxNestingDepth() int {
	return e.maxDepth
}

// Complexity returns the complexity score in [0, 10].
func (e *Expression) Complexity() float64 {
	return e.complexity
}

// commandRegex matches a backslash followed by a letter run.
var commandRegex = regexp.MustCompile(`\\([a-zA-Z]+)`)

// specialFunctionCommands weight extra in the complexity score: integrals,
// sums, products, limits and fractions dominate how hard an expression is to
// speak.
var specialFunctionCommands = map[string]struct{}{
	"int":  {},
	"sum":  {},
	"prod": {},
	"lim":  {},
	"frac": {},
}

// extractCommands returns the sorted unique command names in content.
func extractCommands(content string) []string {
	seen := map[string]struct{}{}
	for _, m := range commandRegex.FindAllStringSubmatch(content, -1) {
		seen[m[1]] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for cmd := range seen {
		out = append(out, cmd)
	}
	sort.Strings(out)
	return out
}

// extractVariables returns the sorted unique single-letter variables: letters
// that are not part of a command token and not adjacent to other letters.
func extractVariables(content string) []string {
	// Blank out command tokens so their letters are not mistaken for
	// variables.
	stripped := commandRegex.ReplaceAllStringFunc(content, func(m string) string {
		return strings.Repeat(" ", len(m))
	})

	seen := map[rune]struct{}{}
	runes := []rune(stripped)
	for i, r := range runes {
		if !unicode.IsLetter(r) {
			continue
		}
		prevLetter := i > 0 && unicode.IsLetter(runes[i-1])
		nextLetter := i < len(runes)-1 && unicode.IsLetter(runes[i+1])
		if prevLetter || nextLetter {
			continue
		}
		seen[r] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for r := range seen {
		out = append(out, string(r))
	}
	sort.Strings(out)
	return out
}

// complexityScore computes the weighted complexity of an expression, capped
// at 10.
func complexityScore(content string, commands []string, maxDepth int) float64 {
	special := 0
	for _, cmd := range commands {
		if _, ok := specialFunctionCommands[cmd]; ok {
			special++
		}
	}

	score := 0.01*float64(len(content)) +
		0.5*float64(len(commands)) +
		0.3*float64(maxDepth) +
		0.8*float64(special)
	if score > 10.0 {
		score = 10.0
	}
	return score
}
