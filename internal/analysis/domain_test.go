package analysis

import (
	"testing"

	"latex-speech/internal/config"
	"latex-speech/internal/types"
	"latex-speech/internal/validator"
)

func mustExpr(t *testing.T, input string) *validator.Expression {
	t.Helper()
	expr, err := validator.Validate(input, config.DefaultLimits())
	if err != nil {
		t.Fatalf("Validate(%q) failed: %v", input, err)
	}
	return expr
}

func TestDetectDomain(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  types.Domain
	}{
		{
			name:  "integral is calculus",
			input: `\int_{0}^{1} x dx`,
			want:  types.DomainCalculus,
		},
		{
			name:  "limit is calculus",
			input: `\lim_{x \to 0} \frac{\sin{x}}{x}`,
			want:  types.DomainCalculus,
		},
		{
			name:  "matrix is linear algebra",
			input: `\det \begin{pmatrix} a & b \end{pmatrix}`,
			want:  types.DomainLinearAlgebra,
		},
		{
			name:  "quantifiers are logic",
			input: `\forall x \exists y`,
			want:  types.DomainLogic,
		},
		{
			name:  "set operations are set theory",
			input: `A \cup B \cap C`,
			want:  types.DomainSetTheory,
		},
		{
			name:  "expectation is statistics",
			input: `\mathbb{E} \sim \mu`,
			want:  types.DomainStatistics,
		},
		{
			name:  "square root is algebra",
			input: `\sqrt{x} \pm 1`,
			want:  types.DomainAlgebra,
		},
		{
			name:  "no keywords falls back to algebra",
			input: `x + y`,
			want:  types.DomainAlgebra,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectDomain(mustExpr(t, tt.input))
			if got != tt.want {
				t.Errorf("DetectDomain(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestDetectDomainTieBreak(t *testing.T) {
	// frac votes calculus, sqrt votes algebra; the fixed priority order
	// declares calculus first, so it wins the tie.
	expr := mustExpr(t, `\frac{\sqrt{x}}{2}`)
	if got := DetectDomain(expr); got != types.DomainCalculus {
		t.Errorf("DetectDomain = %s, want %s", got, types.DomainCalculus)
	}
}
