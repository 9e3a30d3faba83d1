package validator

// commandAllowList is the fixed set of backslash-commands accepted in input
// expressions. Anything outside this set is rejected before rewriting; the
// list covers the math commands the pattern library speaks, nothing that can
// touch files, define macros or change category codes.
var commandAllowList = map[string]struct{}{}

func init() {
	allowed := []string{
		// structure
		"begin", "end", "left", "right", "quad", "qquad", "text",
		// fractions, roots, accents
		"frac", "dfrac", "tfrac", "sqrt", "binom", "overline", "underline",
		"vec", "hat", "bar", "dot", "ddot", "tilde", "widehat", "widetilde",
		// big operators
		"int", "iint", "iiint", "oint", "sum", "prod", "coprod", "lim",
		"limits", "bigcup", "bigcap", "bigoplus", "bigotimes",
		// named functions
		"sin", "cos", "tan", "sec", "csc", "cot", "sinh", "cosh", "tanh",
		"arcsin", "arccos", "arctan", "log", "ln", "lg", "exp", "det", "dim",
		"ker", "deg", "gcd", "max", "min", "sup", "inf", "arg", "Pr", "mod",
		"pmod", "bmod",
		// relations and operators
		"cdot", "times", "div", "pm", "mp", "ast", "star", "circ", "bullet",
		"leq", "le", "geq", "ge", "neq", "ne", "approx", "equiv", "sim",
		"simeq", "cong", "propto", "prec", "succ", "ll", "gg",
		// arrows
		"to", "rightarrow", "leftarrow", "Rightarrow", "Leftarrow",
		"leftrightarrow", "Leftrightarrow", "mapsto", "longrightarrow",
		"implies", "iff",
		// sets and logic
		"in", "notin", "ni", "subset", "supset", "subseteq", "supseteq",
		"cup", "cap", "setminus", "emptyset", "varnothing", "forall",
		"exists", "nexists", "neg", "lnot", "land", "wedge", "lor", "vee",
		"mid", "nmid",
		// misc symbols
		"infty", "partial", "nabla", "prime", "angle", "perp", "parallel",
		"cdots", "ldots", "dots", "ddots", "vdots", "aleph", "hbar", "ell",
		// fonts
		"mathbb", "mathcal", "mathbf", "mathrm", "mathit", "mathsf",
		"mathfrak", "boldsymbol", "operatorname",
		// matrices
		"matrix", "pmatrix", "bmatrix", "vmatrix", "Vmatrix", "smallmatrix",
		// greek, lowercase
		"alpha", "beta", "gamma", "delta", "epsilon", "varepsilon", "zeta",
		"eta", "theta", "vartheta", "iota", "kappa", "lambda", "mu", "nu",
		"xi", "pi", "varpi", "rho", "varrho", "sigma", "varsigma", "tau",
		"upsilon", "phi", "varphi", "chi", "psi", "omega",
		// greek, uppercase
		"Gamma", "Delta", "Theta", "Lambda", "Xi", "Pi", "Sigma", "Upsilon",
		"Phi", "Psi", "Omega",
	}
	for _, cmd := range allowed {
		commandAllowList[cmd] = struct{}{}
	}
}

// CommandAllowed reports whether a backslash-command name is on the fixed
// allow-list.
func CommandAllowed(name string) bool {
	_, ok := commandAllowList[name]
	return ok
}
