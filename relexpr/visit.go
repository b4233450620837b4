package relexpr

// Visit1Mut calls fn once per immediate child of e, passing a pointer to
// the slot holding that child so the caller can replace it in place.
// Get and Constant are leaves and call fn zero times.
func Visit1Mut(e RelationExpr, fn func(*RelationExpr)) {
	switch v := e.(type) {
	case *Get, *Constant:
		// leaves
	case *Let:
		fn(&v.Value)
		fn(&v.Body)
	case *Filter:
		fn(&v.Input)
	case *ArrangeBy:
		fn(&v.Input)
	case *Reduce:
		fn(&v.Input)
	case *Join:
		for i := range v.Inputs {
			fn(&v.Inputs[i])
		}
	case *Project:
		fn(&v.Input)
	default:
		panic("relexpr: Visit1Mut on unknown RelationExpr variant")
	}
}

// Visit1 calls fn once per immediate child of e, for read-only
// traversal (e.g. rendering or validation) where no in-place
// replacement is needed.
func Visit1(e RelationExpr, fn func(RelationExpr)) {
	Visit1Mut(e, func(slot *RelationExpr) { fn(*slot) })
}

// sentinel is swapped into a slot by Take; it stands in for a
// sub-expression that has been moved out, and is cheap to construct and
// discard.
var sentinel RelationExpr = &Constant{}

// Take removes the expression at *slot, replacing it with a cheap
// sentinel, and returns the original. Used while peeling Filter and
// ArrangeBy wrappers off an input: the wrapper is discarded and the
// wrapped expression is handed back to be reinstalled (possibly under a
// new wrapper) by the caller.
func Take(slot *RelationExpr) RelationExpr {
	old := *slot
	*slot = sentinel
	return old
}
