// Package types defines core data types and enums for the LaTeX speech engine.
package types

import (
	"fmt"
	"unicode/utf8"
)

// Domain is a mathematical subject tag used to scope pattern selection.
type Domain string

const (
	DomainGeneral       Domain = "general"
	DomainCalculus      Domain = "calculus"
	DomainAlgebra       Domain = "algebra"
	DomainLinearAlgebra Domain = "linear_algebra"
	DomainStatistics    Domain = "statistics"
	DomainSetTheory     Domain = "set_theory"
	DomainLogic         Domain = "logic"
)

// KnownDomains lists every valid domain tag. DomainGeneral matches any
// expression; the rest scope patterns to one subject.
func KnownDomains() []Domain {
	return []Domain{
		DomainGeneral,
		DomainCalculus,
		DomainAlgebra,
		DomainLinearAlgebra,
		DomainStatistics,
		DomainSetTheory,
		DomainLogic,
	}
}

// Valid reports whether d is a known domain tag.
func (d Domain) Valid() bool {
	for _, known := range KnownDomains() {
		if d == known {
			return true
		}
	}
	return false
}

// MathContext is the syntactic setting of an expression, used as a pattern
// precondition.
type MathContext string

const (
	ContextAny      MathContext = "any"
	ContextInline   MathContext = "inline"
	ContextDisplay  MathContext = "display"
	ContextEquation MathContext = "equation"
	ContextTheorem  MathContext = "theorem"
	ContextProof    MathContext = "proof"
)

// Valid reports whether c is a known context tag.
func (c MathContext) Valid() bool {
	switch c {
	case ContextAny, ContextInline, ContextDisplay, ContextEquation, ContextTheorem, ContextProof:
		return true
	}
	return false
}

// AudienceLevel is a coarse complexity/formality target controlling
// post-processing phrasing.
type AudienceLevel string

const (
	AudienceElementary    AudienceLevel = "elementary"
	AudienceHighSchool    AudienceLevel = "high_school"
	AudienceUndergraduate AudienceLevel = "undergraduate"
	AudienceGraduate      AudienceLevel = "graduate"
	AudienceResearch      AudienceLevel = "research"
)

// Valid reports whether a is a known audience level.
func (a AudienceLevel) Valid() bool {
	switch a {
	case AudienceElementary, AudienceHighSchool, AudienceUndergraduate, AudienceGraduate, AudienceResearch:
		return true
	}
	return false
}

// Basic reports whether the audience gets simplified phrasing.
func (a AudienceLevel) Basic() bool {
	return a == AudienceElementary || a == AudienceHighSchool
}

// Advanced reports whether the audience gets formal phrasing.
func (a AudienceLevel) Advanced() bool {
	return a == AudienceGraduate || a == AudienceResearch
}

// PriorityTier is a named band of integer priority values controlling
// pattern application order.
type PriorityTier string

const (
	TierLow      PriorityTier = "low"
	TierMedium   PriorityTier = "medium"
	TierHigh     PriorityTier = "high"
	TierCritical PriorityTier = "critical"
)

// Priority band boundaries. A priority belongs to the highest tier whose
// lower bound it reaches.
const (
	PriorityMin       = 0
	TierMediumFloor   = 250
	TierHighFloor     = 500
	TierCriticalFloor = 1000
	PriorityMax       = 2000
)

// TierFor maps an integer priority to its named tier.
func TierFor(priority int) PriorityTier {
	switch {
	case priority >= TierCriticalFloor:
		return TierCritical
	case priority >= TierHighFloor:
		return TierHigh
	case priority >= TierMediumFloor:
		return TierMedium
	default:
		return TierLow
	}
}

// SpeechText is the final result of one rewrite call: the spoken-language
// text plus the metadata callers need to reason about how it was produced.
type SpeechText struct {
	Text              string         `json:"text"`
	AppliedPatternIDs []string       `json:"applied_pattern_ids"`
	IterationsUsed    int            `json:"iterations_used"`
	Converged         bool           `json:"converged"`
	ErrorTally        map[string]int `json:"error_tally,omitempty"` // pattern ID -> apply failures
}

// ErrorCode classifies application errors.
type ErrorCode string

const (
	ErrSyntax          ErrorCode = "SYNTAX_ERROR"
	ErrLimitExceeded   ErrorCode = "LIMIT_EXCEEDED"
	ErrSecurity        ErrorCode = "SECURITY_ERROR"
	ErrPattern         ErrorCode = "PATTERN_ERROR"
	ErrNoPatternsFound ErrorCode = "NO_PATTERNS_FOUND"
	ErrConfig          ErrorCode = "CONFIG_ERROR"
	ErrStore           ErrorCode = "STORE_ERROR"
	ErrCache           ErrorCode = "CACHE_ERROR"
	ErrInternal        ErrorCode = "INTERNAL_ERROR"
)

// AppError is the application error type carrying a code, message and
// optional cause.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError.
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause.
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details.
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// ValidationError is a terminal rejection of untrusted input. It pinpoints
// the first violated check; validation never accumulates further findings.
type ValidationError struct {
	Code    ErrorCode `json:"code"` // ErrSyntax, ErrLimitExceeded or ErrSecurity
	Message string    `json:"message"`
	Snippet string    `json:"snippet,omitempty"` // offending input, truncated
	Offset  int       `json:"offset"`            // byte offset of the violation, -1 if not positional
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s (at offset %d)", e.Message, e.Offset)
	}
	return e.Message
}

// snippetMaxLen bounds how much offending input a ValidationError carries.
const snippetMaxLen = 40

// NewValidationError creates a ValidationError, truncating the snippet so
// rejected input never travels whole inside error values.
func NewValidationError(code ErrorCode, message, snippet string, offset int) *ValidationError {
	return &ValidationError{
		Code:    code,
		Message: message,
		Snippet: Truncate(snippet, snippetMaxLen),
		Offset:  offset,
	}
}

// Truncate shortens s to at most maxLen bytes, backing up so the cut never
// splits a multi-byte rune.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
