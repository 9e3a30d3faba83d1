// Package analysis derives domain hints from validated expressions. The
// rewrite engine uses the detected domain to scope which patterns are
// considered.
package analysis

import (
	"strings"

	"latex-speech/internal/logger"
	"latex-speech/internal/types"
	"latex-speech/internal/validator"
)

// domainKeywords maps each candidate domain to the command names and literal
// fragments that vote for it. A keyword starting with a backslash is matched
// against the expression text; a bare word is matched against the extracted
// command set.
var domainKeywords = map[types.Domain][]string{
	types.DomainCalculus: {
		"int", "iint", "oint", "sum", "prod", "lim", "partial", "nabla",
		"frac",
	},
	types.DomainLinearAlgebra: {
		"matrix", "pmatrix", "bmatrix", "vmatrix", "det", "vec", "cdot",
		"times", "dim", "ker",
	},
	types.DomainStatistics: {
		"Pr", "mu", "sigma", "bar", "hat", "sim", `\mathbb{E}`, `\mathbb{P}`,
	},
	types.DomainSetTheory: {
		"in", "notin", "subset", "supset", "subseteq", "supseteq", "cup",
		"cap", "emptyset", "varnothing", "setminus",
	},
	types.DomainLogic: {
		"forall", "exists", "neg", "lnot", "land", "lor", "wedge", "vee",
		"implies", "iff",
	},
	types.DomainAlgebra: {
		"sqrt", "binom", "pm", "mp", "leq", "geq", "neq",
	},
}

// domainPriority breaks score ties: earlier domains win. Calculus is
// deliberately declared before algebra.
var domainPriority = []types.Domain{
	types.DomainCalculus,
	types.DomainLinearAlgebra,
	types.DomainStatistics,
	types.DomainSetTheory,
	types.DomainLogic,
	types.DomainAlgebra,
}

// DetectDomain scores each candidate domain by keyword hits in the
// expression's content and command set. The highest non-zero score wins,
// ties broken by the fixed priority order. With no hits at all the result is
// DomainAlgebra: an intentional bias toward the most commonly needed pattern
// library rather than the catch-all "general" tag.
func DetectDomain(expr *validator.Expression) types.Domain {
	content := expr.Content()
	commands := map[string]struct{}{}
	for _, cmd := range expr.Commands() {
		commands[cmd] = struct{}{}
	}

	scores := map[types.Domain]int{}
	for domain, keywords := range domainKeywords {
		for _, kw := range keywords {
			if strings.HasPrefix(kw, `\`) || !isWord(kw) {
				if strings.Contains(content, kw) {
					scores[domain]++
				}
				continue
			}
			if _, ok := commands[kw]; ok {
				scores[domain]++
			}
		}
	}

	best := types.Domain("")
	bestScore := 0
	for _, domain := range domainPriority {
		if scores[domain] > bestScore {
			best = domain
			bestScore = scores[domain]
		}
	}

	if bestScore == 0 {
		logger.Debug("no domain keywords matched, defaulting",
			logger.String("fallback", string(types.DomainAlgebra)))
		return types.DomainAlgebra
	}

	logger.Debug("domain detected",
		logger.String("domain", string(best)),
		logger.Int("score", bestScore))
	return best
}

// isWord reports whether kw is a bare command name (letters only).
func isWord(kw string) bool {
	for _, r := range kw {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return len(kw) > 0
}
