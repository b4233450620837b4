package joinplan

import "github.com/flowgraph/joinopt/relexpr"

// Env is the arrangement environment: a mapping from collection
// identifier (global catalog id or locally-bound name) to the list of
// keys under which that collection is known to be arranged. It is
// threaded through the recursive tree walk and scoped by balanced
// Bind/Unbind calls at Let boundaries.
type Env struct {
	arranged map[relexpr.Id][][]relexpr.ScalarExpr
}

// NewEnv builds an Env seeded from a catalog of pre-existing
// arrangements, keyed by global collection identifier.
func NewEnv(catalog map[string][][]relexpr.ScalarExpr) *Env {
	arranged := make(map[relexpr.Id][][]relexpr.ScalarExpr, len(catalog))
	for name, keys := range catalog {
		arranged[relexpr.Global(name)] = keys
	}
	return &Env{arranged: arranged}
}

// Lookup returns the arrangement keys known for id, if any.
func (e *Env) Lookup(id relexpr.Id) ([][]relexpr.ScalarExpr, bool) {
	keys, ok := e.arranged[id]
	return keys, ok
}

// Bind records that the local name is arranged under keys. Must be
// paired with a later Unbind of the same name so sibling subtrees never
// observe another's locals (scope hygiene, invariant 2 of the data
// model).
func (e *Env) Bind(name string, keys [][]relexpr.ScalarExpr) {
	e.arranged[relexpr.Local(name)] = keys
}

// Unbind removes a binding previously installed by Bind.
func (e *Env) Unbind(name string) {
	delete(e.arranged, relexpr.Local(name))
}
