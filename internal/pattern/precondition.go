package pattern

import "strings"

// Precondition is one condition on the rewrite context a pattern requires
// before its textual test runs. Conditions check a context key for equality
// or containment; Negate inverts the result. A precondition with neither
// Equals nor Contains just requires the key to be present and non-empty.
type Precondition struct {
	Key      string `yaml:"key" json:"key"`
	Equals   string `yaml:"equals,omitempty" json:"equals,omitempty"`
	Contains string `yaml:"contains,omitempty" json:"contains,omitempty"`
	Negate   bool   `yaml:"negate,omitempty" json:"negate,omitempty"`
}

// Eval evaluates the precondition against a context map.
func (c Precondition) Eval(ctx map[string]string) bool {
	value, present := ctx[c.Key]

	var ok bool
	switch {
	case c.Equals != "":
		ok = present && value == c.Equals
	case c.Contains != "":
		ok = present && strings.Contains(value, c.Contains)
	default:
		ok = present && value != ""
	}

	if c.Negate {
		return !ok
	}
	return ok
}
