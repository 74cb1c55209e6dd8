package check

// Builtins is the fixed sequence applied to every scan, in order, whatever
// the "checks" option contains.
var Builtins = []string{
	"header-length",
	"snake-case-header",
	"header-first-char",
	"forbidden-markers",
}

func init() {
	Register("header-length", stateless(HeaderLength{}))
	Register("snake-case-header", stateless(SnakeCaseHeader{}))
	Register("header-first-char", stateless(HeaderFirstChar{}))
	Register("forbidden-markers", stateless(ForbiddenMarkers{}))
	Register("bare-number", stateless(BareNumber{}))
	Register("truncated-value", stateless(TruncatedValue{}))
	Register("duplicate-row", func(Params) (Check, error) { return NewDuplicateRow(), nil })
	Register("forbidden-value", newForbiddenValue)
}

// stateless wraps a parameterless check value as a Factory.
func stateless(c Check) Factory {
	return func(Params) (Check, error) { return c, nil }
}

// ResolveBuiltins resolves the Builtins sequence from r.
func ResolveBuiltins(r *Registry) ([]Check, error) {
	checks := make([]Check, 0, len(Builtins))
	for _, id := range Builtins {
		c, err := r.Resolve(id, nil)
		if err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	return checks, nil
}
