// Package validator accepts untrusted LaTeX input and turns it into validated
// Expression values. Checks run fail-fast, ordered cheapest first; the first
// violation wins and is reported with a truncated snippet and, where it makes
// sense, a byte offset.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"latex-speech/internal/config"
	"latex-speech/internal/logger"
	"latex-speech/internal/types"
)

// dangerousCommandRegex matches commands that touch files, define or rebind
// macros, manipulate category codes, or fold case. These are rejected
// outright even though the allow-list would also catch them, so the error
// names the attack rather than a generic disallowed command.
var dangerousCommandRegex = regexp.MustCompile(`\\(input|include|write|openout|openin|read|immediate|special|def|gdef|edef|xdef|newcommand|renewcommand|providecommand|let|futurelet|csname|endcsname|expandafter|catcode|lowercase|uppercase|usepackage|RequirePackage|documentclass)\b`)

// repetitionCheckedChars are the structural characters counted against the
// per-character repetition threshold.
var repetitionCheckedChars = []byte{'{', '}', '\\', '$'}

// delimiterPair names one delimiter kind for the balance check.
type delimiterPair struct {
	open  byte
	close byte
	kind  string
}

var delimiterPairs = []delimiterPair{
	{'{', '}', "braces"},
	{'[', ']', "brackets"},
	{'(', ')', "parentheses"},
}

// Validate checks raw against limits and, on success, constructs the
// immutable Expression. Any failed check aborts immediately with a typed
// *types.ValidationError; no partial results exist.
func Validate(raw string, limits config.ValidationLimits) (*Expression, error) {
	// 1. Basic checks: cheapest first.
	if raw == "" {
		return nil, types.NewValidationError(types.ErrSyntax, "empty expression", "", -1)
	}
	if len(raw) > limits.MaxLength {
		return nil, types.NewValidationError(types.ErrLimitExceeded,
			fmt.Sprintf("expression exceeds maximum length of %d", limits.MaxLength), raw, -1)
	}
	if idx := strings.IndexByte(raw, 0); idx >= 0 {
		return nil, types.NewValidationError(types.ErrSecurity, "embedded null byte", raw, idx)
	}

	// 2. Repetition attack on structural characters. Runs before the
	// balance checks so a flood of one delimiter is reported as the attack
	// it is, not as a syntax slip.
	for _, ch := range repetitionCheckedChars {
		if n := strings.Count(raw, string(ch)); n > limits.MaxCharRepetition {
			return nil, types.NewValidationError(types.ErrSecurity,
				fmt.Sprintf("excessive repetition of %q (%d occurrences)", string(ch), n), raw, -1)
		}
	}

	// 3. Delimiter-balance counts.
	for _, pair := range delimiterPairs {
		opens := countUnescaped(raw, pair.open)
		closes := countUnescaped(raw, pair.close)
		if opens != closes {
			return nil, types.NewValidationError(types.ErrSyntax,
				fmt.Sprintf("unbalanced %s", pair.kind), raw, -1)
		}
	}

	// 4. Structural brace-nesting walk.
	maxDepth, err := walkBraces(raw, limits.MaxNestingDepth)
	if err != nil {
		return nil, err
	}

	// 5a. Dangerous commands.
	if m := dangerousCommandRegex.FindStringSubmatchIndex(raw); m != nil {
		name := raw[m[2]:m[3]]
		return nil, types.NewValidationError(types.ErrSecurity,
			fmt.Sprintf("dangerous command: %s", name), raw[m[0]:], m[0])
	}

	// 5b. Command-name length, then 5c. allow-list, over the same token set.
	for _, m := range commandRegex.FindAllStringSubmatchIndex(raw, -1) {
		name := raw[m[2]:m[3]]
		if len(name) > limits.MaxCommandNameLength {
			return nil, types.NewValidationError(types.ErrSecurity,
				fmt.Sprintf("command name exceeds %d characters", limits.MaxCommandNameLength),
				raw[m[0]:], m[0])
		}
		if !CommandAllowed(name) {
			return nil, types.NewValidationError(types.ErrSecurity,
				fmt.Sprintf("disallowed command: %s", name), raw[m[0]:], m[0])
		}
	}

	// 6. Construct the immutable Expression.
	commands := extractCommands(raw)
	variables := extractVariables(raw)
	expr := &Expression{
		content:    raw,
		commands:   commands,
		variables:  variables,
		maxDepth:   maxDepth,
		complexity: complexityScore(raw, commands, maxDepth),
	}

	logger.Debug("expression validated",
		logger.Int("length", len(raw)),
		logger.Int("commands", len(commands)),
		logger.Int("maxDepth", maxDepth),
		logger.Float64("complexity", expr.complexity))

	return expr, nil
}

// isEscaped reports whether the byte at i sits behind an odd run of
// backslashes. After \\ the backslash pair is consumed, so the next
// character is structural again; a single-byte look-behind would misread
// the brace in `\\{`.
func isEscaped(s string, i int) bool {
	run := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		run++
	}
	return run%2 == 1
}

// countUnescaped counts occurrences of ch that are not escaped by a
// backslash. Escaped delimiters like \{ are literal characters, not
// structure.
func countUnescaped(s string, ch byte) int {
	count := 0
	for i := 0; i < len(s); i++ {
		if s[i] != ch {
			continue
		}
		if ch != '\\' && isEscaped(s, i) {
			continue
		}
		count++
	}
	return count
}

// walkBraces scans left to right tracking a stack of opening-brace offsets.
// It returns the maximum concurrent depth, or a ValidationError for a
// mismatched brace or a depth beyond maxDepth.
func walkBraces(s string, maxDepth int) (int, error) {
	var stack []int
	deepest := 0

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if isEscaped(s, i) {
				continue
			}
			stack = append(stack, i)
			if len(stack) > deepest {
				deepest = len(stack)
			}
			if deepest > maxDepth {
				return 0, types.NewValidationError(types.ErrLimitExceeded,
					fmt.Sprintf("brace nesting depth %d exceeds maximum of %d", deepest, maxDepth),
					s[i:], i)
			}
		case '}':
			if isEscaped(s, i) {
				continue
			}
			if len(stack) == 0 {
				return 0, types.NewValidationError(types.ErrSyntax,
					"closing brace without matching opening", s[i:], i)
			}
			stack = stack[:len(stack)-1]
		}
	}

	if len(stack) > 0 {
		first := stack[0]
		return 0, types.NewValidationError(types.ErrSyntax,
			"opening brace without matching closing", s[first:], first)
	}

	return deepest, nil
}
