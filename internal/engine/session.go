package engine

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"latex-speech/internal/types"
	"latex-speech/internal/validator"
)

// Context map keys consulted by pattern preconditions.
const (
	CtxKeyContext      = "context"
	CtxKeyDomain       = "domain"
	CtxKeyAudience     = "audience"
	CtxKeyOriginalText = "original_text"
	CtxKeyCurrentText  = "current_text"
	CtxKeyVariables    = "variables"
	CtxKeyComplexity   = "complexity"
)

// session tracks the state of one expression's rewrite. It lives for a
// single Process call and is never shared or persisted.
type session struct {
	id         string
	current    string
	applied    []string
	appliedSet map[string]struct{}
	iterations int
	errorTally map[string]int
	context    map[string]string
}

// newSession seeds a session from a validated expression.
func newSession(expr *validator.Expression, mctx types.MathContext,
	domain types.Domain, audience types.AudienceLevel) *session {

	content := expr.Content()
	return &session{
		id:         uuid.NewString(),
		current:    content,
		appliedSet: map[string]struct{}{},
		errorTally: map[string]int{},
		context: map[string]string{
			CtxKeyContext:      string(mctx),
			CtxKeyDomain:       string(domain),
			CtxKeyAudience:     string(audience),
			CtxKeyOriginalText: content,
			CtxKeyCurrentText:  content,
			CtxKeyVariables:    strings.Join(expr.Variables(), ","),
			CtxKeyComplexity:   fmt.Sprintf("%.2f", expr.Complexity()),
		},
	}
}

// markApplied records a pattern application and refreshes the context map.
func (s *session) markApplied(id, newText string) {
	s.current = newText
	s.applied = append(s.applied, id)
	s.appliedSet[id] = struct{}{}
	s.context[CtxKeyCurrentText] = newText
}

// wasApplied reports whether the pattern already fired this session.
func (s *session) wasApplied(id string) bool {
	_, ok := s.appliedSet[id]
	return ok
}

// recordError tallies an apply failure for one pattern.
func (s *session) recordError(id string) {
	s.errorTally[id]++
}

// DetectContext classifies the syntactic setting of an expression from its
// delimiters: explicit environments win, then display math markers, then
// inline as the default.
func DetectContext(expr *validator.Expression) types.MathContext {
	content := expr.Content()
	switch {
	case strings.Contains(content, `\begin{equation}`):
		return types.ContextEquation
	case strings.Contains(content, `\begin{theorem}`):
		return types.ContextTheorem
	case strings.Contains(content, `\begin{proof}`):
		return types.ContextProof
	case strings.Contains(content, `\[`) || strings.Contains(content, "$$"):
		return types.ContextDisplay
	default:
		return types.ContextInline
	}
}
