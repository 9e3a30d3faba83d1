// Package engine implements the rewrite fixpoint algorithm: iterative
// application of prioritized, domain-scoped patterns over a validated
// expression until the text stabilizes.
package engine

import (
	"context"
	"sort"

	"latex-speech/internal/analysis"
	"latex-speech/internal/logger"
	"latex-speech/internal/pattern"
	"latex-speech/internal/types"
	"latex-speech/internal/validator"
)

// Engine orchestrates pattern retrieval and iterative application. It holds
// no mutable state across calls; concurrent Process calls are safe as long
// as the store supports concurrent reads.
type Engine struct {
	store         pattern.Store
	maxIterations int
}

// New creates an Engine over a pattern store. maxIterations bounds the
// fixpoint loop; non-positive values fall back to a sane default.
func New(store pattern.Store, maxIterations int) *Engine {
	if maxIterations <= 0 {
		maxIterations = 10
	}
	return &Engine{store: store, maxIterations: maxIterations}
}

// tier is one priority band during an iteration: all candidate patterns
// sharing a priority value, in store order.
type tier struct {
	priority int
	patterns []*pattern.Pattern
}

// Process rewrites a validated expression into speech text. domainHint, when
// valid, overrides domain detection; an empty hint means detect. The ctx
// parameter covers only the store queries; the rewrite itself never blocks.
func (e *Engine) Process(ctx context.Context, expr *validator.Expression,
	audience types.AudienceLevel, domainHint types.Domain) (*types.SpeechText, error) {

	domain := domainHint
	if domain == "" || !domain.Valid() {
		domain = analysis.DetectDomain(expr)
	}
	mctx := DetectContext(expr)

	s := newSession(expr, mctx, domain, audience)
	logger.Debug("rewrite session started",
		logger.String("session", s.id),
		logger.String("domain", string(domain)),
		logger.String("context", string(mctx)),
		logger.String("audience", string(audience)))

	candidates, err := e.candidates(ctx, domain, mctx)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, types.NewAppErrorWithDetails(types.ErrNoPatternsFound,
			"no patterns found", string(domain), nil)
	}

	tiers := groupByPriority(candidates)

	converged := false
	for i := 1; i <= e.maxIterations; i++ {
		s.iterations = i
		before := s.current

		for _, t := range tiers {
			e.applyTier(s, t)
		}

		if s.current == before {
			converged = true
			break
		}
	}

	if !converged {
		logger.Warn("rewrite did not converge within iteration budget",
			logger.String("session", s.id),
			logger.Int("iterations", s.iterations),
			logger.Int("applied", len(s.applied)))
	}

	result := &types.SpeechText{
		Text:              PostProcess(s.current, audience),
		AppliedPatternIDs: append([]string(nil), s.applied...),
		IterationsUsed:    s.iterations,
		Converged:         converged,
	}
	if len(s.errorTally) > 0 {
		result.ErrorTally = s.errorTally
	}

	logger.Info("rewrite completed",
		logger.String("session", s.id),
		logger.Int("patternsApplied", len(s.applied)),
		logger.Int("iterations", s.iterations),
		logger.Bool("converged", converged))

	return result, nil
}

// candidates fetches the union of domain-tagged and general patterns,
// de-duplicated by ID and filtered to the expression's context, sorted by
// priority descending. The sort is stable so patterns of equal priority keep
// store order; that order is the engine's deterministic tie-break.
func (e *Engine) candidates(ctx context.Context, domain types.Domain,
	mctx types.MathContext) ([]*pattern.Pattern, error) {

	domainPatterns, err := e.store.FindByDomain(ctx, domain)
	if err != nil {
		return nil, types.NewAppError(types.ErrStore, "pattern store query failed", err)
	}

	merged := domainPatterns
	if domain != types.DomainGeneral {
		general, err := e.store.FindByDomain(ctx, types.DomainGeneral)
		if err != nil {
			return nil, types.NewAppError(types.ErrStore, "pattern store query failed", err)
		}
		merged = append(merged, general...)
	}

	seen := map[string]struct{}{}
	var out []*pattern.Pattern
	for _, p := range merged {
		if _, dup := seen[p.ID()]; dup {
			continue
		}
		seen[p.ID()] = struct{}{}
		if !p.AppliesToContext(mctx) {
			continue
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority() > out[j].Priority()
	})
	return out, nil
}

// groupByPriority splits a priority-sorted candidate list into descending
// tiers of equal priority.
func groupByPriority(sorted []*pattern.Pattern) []tier {
	var tiers []tier
	for _, p := range sorted {
		if n := len(tiers); n > 0 && tiers[n-1].priority == p.Priority() {
			tiers[n-1].patterns = append(tiers[n-1].patterns, p)
			continue
		}
		tiers = append(tiers, tier{priority: p.Priority(), patterns: []*pattern.Pattern{p}})
	}
	return tiers
}

// applyTier attempts every not-yet-applied pattern in one tier against the
// session's current text. A pattern that fails during apply is tallied and
// skipped; one bad rule never aborts the expression.
func (e *Engine) applyTier(s *session, t tier) {
	for _, p := range t.patterns {
		if s.wasApplied(p.ID()) {
			continue
		}

		newText, applied, err := safeApply(p, s.current, s.context)
		if err != nil {
			s.recordError(p.ID())
			logger.Warn("pattern apply failed",
				logger.String("session", s.id),
				logger.String("pattern", p.ID()),
				logger.Err(err))
			continue
		}
		if !applied {
			continue
		}

		s.markApplied(p.ID(), newText)
		logger.Debug("pattern applied",
			logger.String("session", s.id),
			logger.String("pattern", p.ID()),
			logger.Int("priority", p.Priority()))
	}
}

// safeApply isolates one pattern application, converting a panic from
// malformed rule data into an error.
func safeApply(p *pattern.Pattern, text string, ctx map[string]string) (out string, applied bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = text
			applied = false
			err = types.NewAppErrorWithDetails(types.ErrPattern,
				"pattern apply panicked", p.ID(), nil)
		}
	}()
	out, applied = p.Apply(text, ctx)
	return out, applied, nil
}
