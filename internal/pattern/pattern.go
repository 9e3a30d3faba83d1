// Package pattern defines the immutable rewrite rules the engine applies and
// the read-only store interface it queries them from. A Pattern's matcher is
// compiled at construction; a rule that cannot compile never becomes a
// Pattern, so Matches and Apply cannot fail for regex reasons.
package pattern

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"latex-speech/internal/types"
)

// Pronunciation carries optional hints attached to a pattern's output. The
// core never evaluates them; they ride along for downstream synthesis.
type Pronunciation struct {
	Emphasis      string `yaml:"emphasis,omitempty" json:"emphasis,omitempty"`
	PauseBeforeMs int    `yaml:"pause_before_ms,omitempty" json:"pause_before_ms,omitempty"`
	PauseAfterMs  int    `yaml:"pause_after_ms,omitempty" json:"pause_after_ms,omitempty"`
}

// Match is one textual occurrence of a pattern's matcher.
type Match struct {
	Start int
	End   int
	Text  string
}

// Pattern is an immutable rewrite rule. All fields are set at construction;
// the With* methods return new values with a bumped version tag.
type Pattern struct {
	id            string
	name          string
	description   string
	matcher       string
	literal       bool
	re            *regexp.Regexp // nil for literal patterns
	template      string
	priority      int
	domain        types.Domain
	contexts      []types.MathContext
	preconditions []Precondition
	hints         Pronunciation
	version       string
}

// Definition is the deserialized form of a pattern, as found in YAML files
// or store rows. New turns a Definition into a usable Pattern.
type Definition struct {
	ID            string              `yaml:"id" json:"id" validate:"required"`
	Name          string              `yaml:"name" json:"name"`
	Description   string              `yaml:"description,omitempty" json:"description,omitempty"`
	Matcher       string              `yaml:"matcher" json:"matcher" validate:"required"`
	Literal       bool                `yaml:"literal,omitempty" json:"literal,omitempty"`
	Template      string              `yaml:"template" json:"template" validate:"required"`
	Priority      int                 `yaml:"priority" json:"priority" validate:"gte=0,lte=2000"`
	Domain        types.Domain        `yaml:"domain" json:"domain"`
	Contexts      []types.MathContext `yaml:"contexts,omitempty" json:"contexts,omitempty"`
	Preconditions []Precondition      `yaml:"preconditions,omitempty" json:"preconditions,omitempty"`
	Hints         Pronunciation       `yaml:"hints,omitempty" json:"hints,omitempty"`
}

// templateGroupRegex finds $1 and ${1} style capture-group references.
var templateGroupRegex = regexp.MustCompile(`\$(\d+)|\$\{(\d+)\}`)

// bareGroupRegex finds the unbraced $1 form only.
var bareGroupRegex = regexp.MustCompile(`\$(\d+)`)

// normalizeTemplate braces every bare group reference. Go's expansion rules
// read $1x as one reference to the undefined group "1x", which expands to
// nothing; ${1}x pins the reference to the group the author wrote, so the
// construction-time group check and ReplaceAllString agree on every input.
func normalizeTemplate(template string) string {
	return bareGroupRegex.ReplaceAllStringFunc(template, func(m string) string {
		return "${" + m[1:] + "}"
	})
}

// New constructs a Pattern from a Definition, enforcing every invariant:
// non-empty matcher and template, priority in bounds, a matcher that
// compiles, and no template reference to a capture group the matcher does
// not produce. Malformed definitions fail loud here, never at apply time.
func New(def Definition) (*Pattern, error) {
	if def.ID == "" {
		return nil, types.NewAppError(types.ErrPattern, "pattern id must not be empty", nil)
	}
	if def.Matcher == "" {
		return nil, types.NewAppErrorWithDetails(types.ErrPattern,
			"pattern matcher must not be empty", def.ID, nil)
	}
	if def.Template == "" {
		return nil, types.NewAppErrorWithDetails(types.ErrPattern,
			"pattern template must not be empty", def.ID, nil)
	}
	if def.Priority < types.PriorityMin || def.Priority > types.PriorityMax {
		return nil, types.NewAppErrorWithDetails(types.ErrPattern,
			fmt.Sprintf("pattern priority %d out of range [%d, %d]",
				def.Priority, types.PriorityMin, types.PriorityMax), def.ID, nil)
	}

	domain := def.Domain
	if domain == "" {
		domain = types.DomainGeneral
	}
	if !domain.Valid() {
		return nil, types.NewAppErrorWithDetails(types.ErrPattern,
			fmt.Sprintf("unknown domain %q", domain), def.ID, nil)
	}

	contexts := def.Contexts
	if len(contexts) == 0 {
		contexts = []types.MathContext{types.ContextAny}
	}
	for _, c := range contexts {
		if !c.Valid() {
			return nil, types.NewAppErrorWithDetails(types.ErrPattern,
				fmt.Sprintf("unknown context %q", c), def.ID, nil)
		}
	}

	p := &Pattern{
		id:            def.ID,
		name:          def.Name,
		description:   def.Description,
		matcher:       def.Matcher,
		literal:       def.Literal,
		template:      def.Template,
		priority:      def.Priority,
		domain:        domain,
		contexts:      contexts,
		preconditions: append([]Precondition(nil), def.Preconditions...),
		hints:         def.Hints,
		version:       uuid.NewString(),
	}

	maxGroup := maxTemplateGroup(def.Template)
	if def.Literal {
		if maxGroup > 0 {
			return nil, types.NewAppErrorWithDetails(types.ErrPattern,
				"literal pattern template references capture groups", def.ID, nil)
		}
	} else {
		re, err := regexp.Compile(def.Matcher)
		if err != nil {
			return nil, types.NewAppErrorWithDetails(types.ErrPattern,
				"pattern matcher does not compile", def.ID, err)
		}
		if maxGroup > re.NumSubexp() {
			return nil, types.NewAppErrorWithDetails(types.ErrPattern,
				fmt.Sprintf("template references capture group %d but matcher has %d",
					maxGroup, re.NumSubexp()), def.ID, nil)
		}
		p.re = re
		p.template = normalizeTemplate(def.Template)
	}

	return p, nil
}

// MustNew is New for tests and static pattern tables; it panics on a
// malformed definition.
func MustNew(def Definition) *Pattern {
	p, err := New(def)
	if err != nil {
		panic(err)
	}
	return p
}

// maxTemplateGroup returns the highest capture-group number referenced by a
// template, 0 when it references none.
func maxTemplateGroup(template string) int {
	max := 0
	for _, m := range templateGroupRegex.FindAllStringSubmatch(template, -1) {
		num := m[1]
		if num == "" {
			num = m[2]
		}
		if n, err := strconv.Atoi(num); err == nil && n > max {
			max = n
		}
	}
	return max
}

// ID returns the pattern's unique identifier.
func (p *Pattern) ID() string { return p.id }

// Name returns the pattern's human-readable name.
func (p *Pattern) Name() string { return p.name }

// Description returns the pattern's description.
func (p *Pattern) Description() string { return p.description }

// Matcher returns the matcher source text.
func (p *Pattern) Matcher() string { return p.matcher }

// Literal reports whether the matcher is a literal substring rather than a
// regex.
func (p *Pattern) Literal() bool { return p.literal }

// Template returns the output template.
func (p *Pattern) Template() string { return p.template }

// Priority returns the integer priority.
func (p *Pattern) Priority() int { return p.priority }

// Tier returns the named priority tier the priority falls in.
func (p *Pattern) Tier() types.PriorityTier { return types.TierFor(p.priority) }

// Domain returns the pattern's domain tag.
func (p *Pattern) Domain() types.Domain { return p.domain }

// Contexts returns a copy of the applicability contexts.
func (p *Pattern) Contexts() []types.MathContext {
	out := make([]types.MathContext, len(p.contexts))
	copy(out, p.contexts)
	return out
}

// Preconditions returns a copy of the preconditions.
func (p *Pattern) Preconditions() []Precondition {
	out := make([]Precondition, len(p.preconditions))
	copy(out, p.preconditions)
	return out
}

// Hints returns the pronunciation hints.
func (p *Pattern) Hints() Pronunciation { return p.hints }

// Version returns the version tag; every With* derivation bumps it.
func (p *Pattern) Version() string { return p.version }

// AppliesToContext reports whether the pattern applies in the given context.
// ContextAny on either side matches everything.
func (p *Pattern) AppliesToContext(ctx types.MathContext) bool {
	if ctx == types.ContextAny {
		return true
	}
	for _, c := range p.contexts {
		if c == types.ContextAny || c == ctx {
			return true
		}
	}
	return false
}

// Matches reports whether the pattern applies to text under the given
// context map. Preconditions are ANDed and gate the textual test.
func (p *Pattern) Matches(text string, ctx map[string]string) bool {
	for _, pre := range p.preconditions {
		if !pre.Eval(ctx) {
			return false
		}
	}
	if p.literal {
		return strings.Contains(text, p.matcher)
	}
	return p.re.MatchString(text)
}

// Apply returns text with every non-overlapping occurrence of the matcher
// replaced by the template, and whether the pattern matched. It is pure:
// the Pattern is never mutated and identical inputs give identical outputs.
func (p *Pattern) Apply(text string, ctx map[string]string) (string, bool) {
	if !p.Matches(text, ctx) {
		return text, false
	}
	if p.literal {
		return strings.ReplaceAll(text, p.matcher, p.template), true
	}
	return p.re.ReplaceAllString(text, p.template), true
}

// FindAllMatches returns every non-overlapping occurrence of the matcher in
// text, in order.
func (p *Pattern) FindAllMatches(text string) []Match {
	var out []Match
	if p.literal {
		for start := 0; ; {
			idx := strings.Index(text[start:], p.matcher)
			if idx < 0 {
				break
			}
			abs := start + idx
			out = append(out, Match{Start: abs, End: abs + len(p.matcher), Text: p.matcher})
			start = abs + len(p.matcher)
		}
		return out
	}
	for _, loc := range p.re.FindAllStringIndex(text, -1) {
		out = append(out, Match{Start: loc[0], End: loc[1], Text: text[loc[0]:loc[1]]})
	}
	return out
}

// clone copies the pattern with a fresh version tag.
func (p *Pattern) clone() *Pattern {
	c := *p
	c.contexts = append([]types.MathContext(nil), p.contexts...)
	c.preconditions = append([]Precondition(nil), p.preconditions...)
	c.version = uuid.NewString()
	return &c
}

// WithTemplate returns a new Pattern with a replaced output template and a
// bumped version. The new template is validated against the matcher.
func (p *Pattern) WithTemplate(template string) (*Pattern, error) {
	if template == "" {
		return nil, types.NewAppErrorWithDetails(types.ErrPattern,
			"pattern template must not be empty", p.id, nil)
	}
	maxGroup := maxTemplateGroup(template)
	if p.literal && maxGroup > 0 {
		return nil, types.NewAppErrorWithDetails(types.ErrPattern,
			"literal pattern template references capture groups", p.id, nil)
	}
	if !p.literal && maxGroup > p.re.NumSubexp() {
		return nil, types.NewAppErrorWithDetails(types.ErrPattern,
			fmt.Sprintf("template references capture group %d but matcher has %d",
				maxGroup, p.re.NumSubexp()), p.id, nil)
	}
	c := p.clone()
	c.template = template
	if !p.literal {
		c.template = normalizeTemplate(template)
	}
	return c, nil
}

// WithPriority returns a new Pattern with a replaced priority and a bumped
// version.
func (p *Pattern) WithPriority(priority int) (*Pattern, error) {
	if priority < types.PriorityMin || priority > types.PriorityMax {
		return nil, types.NewAppErrorWithDetails(types.ErrPattern,
			fmt.Sprintf("pattern priority %d out of range [%d, %d]",
				priority, types.PriorityMin, types.PriorityMax), p.id, nil)
	}
	c := p.clone()
	c.priority = priority
	return c, nil
}
