package main

import "github.com/flowgraph/joinopt/relexpr"

// twoInputsOneArranged builds scenario 2 from the testable-properties
// section: A is arranged on column 0, B is not, and the two are joined
// on column 0. Delta must fail (B has no usable arrangement); the
// differential planner drives from B.
func twoInputsOneArranged() (relexpr.RelationExpr, map[string][][]relexpr.ScalarExpr) {
	a := &relexpr.Get{ID: relexpr.Global("a"), Typ: relexpr.Type{Arity: 2}}
	b := &relexpr.Get{ID: relexpr.Global("b"), Typ: relexpr.Type{Arity: 2}}

	join := relexpr.NewJoin(
		[]relexpr.RelationExpr{a, b},
		[][]relexpr.InputCol{{{Input: 0, Col: 0}, {Input: 1, Col: 0}}},
		nil,
	)

	seed := map[string][][]relexpr.ScalarExpr{
		"a": {relexpr.ColumnsUpTo(1)},
	}
	return join, seed
}

// bothArranged builds scenario 3: both A and B already carry a catalog
// arrangement on column 0, so delta succeeds with no new arrangements.
func bothArranged() (relexpr.RelationExpr, map[string][][]relexpr.ScalarExpr) {
	a := &relexpr.Get{ID: relexpr.Global("a"), Typ: relexpr.Type{Arity: 2}}
	b := &relexpr.Get{ID: relexpr.Global("b"), Typ: relexpr.Type{Arity: 2}}

	join := relexpr.NewJoin(
		[]relexpr.RelationExpr{a, b},
		[][]relexpr.InputCol{{{Input: 0, Col: 0}, {Input: 1, Col: 0}}},
		nil,
	)

	seed := map[string][][]relexpr.ScalarExpr{
		"a": {relexpr.ColumnsUpTo(1)},
		"b": {relexpr.ColumnsUpTo(1)},
	}
	return join, seed
}

// filterAboveArrangedInput builds scenario 4: a filter sits directly
// above an arranged A; discovery tunnels through it, and the installer
// lifts the predicate once the differential planner decides to use A's
// arrangement.
func filterAboveArrangedInput() (relexpr.RelationExpr, map[string][][]relexpr.ScalarExpr) {
	a := &relexpr.Get{ID: relexpr.Global("a"), Typ: relexpr.Type{Arity: 2}}
	filteredA := &relexpr.Filter{
		Input: a,
		Predicates: []relexpr.ScalarExpr{
			relexpr.Binary{Op: ">", Left: relexpr.Column{Index: 1}, Right: relexpr.Literal{Value: int64(0)}},
		},
	}
	b := &relexpr.Get{ID: relexpr.Global("b"), Typ: relexpr.Type{Arity: 2}}

	join := relexpr.NewJoin(
		[]relexpr.RelationExpr{filteredA, b},
		[][]relexpr.InputCol{{{Input: 0, Col: 0}, {Input: 1, Col: 0}}},
		nil,
	)

	seed := map[string][][]relexpr.ScalarExpr{
		"a": {relexpr.ColumnsUpTo(1)},
	}
	return join, seed
}

// letBindingVisibility builds scenario 6: x is let-bound to an
// ArrangeBy over a, and the body joins x against b. The arrangement
// installed by the Let must be visible inside body but must not leak
// once the pass returns.
func letBindingVisibility() (relexpr.RelationExpr, map[string][][]relexpr.ScalarExpr) {
	a := &relexpr.Get{ID: relexpr.Global("a"), Typ: relexpr.Type{Arity: 2}}
	arrangedA := &relexpr.ArrangeBy{Input: a, Keys: [][]relexpr.ScalarExpr{relexpr.ColumnsUpTo(1)}}

	x := &relexpr.Get{ID: relexpr.Local("x"), Typ: relexpr.Type{Arity: 2}}
	b := &relexpr.Get{ID: relexpr.Global("b"), Typ: relexpr.Type{Arity: 2}}

	body := relexpr.NewJoin(
		[]relexpr.RelationExpr{x, b},
		[][]relexpr.InputCol{{{Input: 0, Col: 0}, {Input: 1, Col: 0}}},
		nil,
	)

	let := &relexpr.Let{Name: "x", Value: arrangedA, Body: body}

	seed := map[string][][]relexpr.ScalarExpr{
		"b": {relexpr.ColumnsUpTo(1)},
	}
	return let, seed
}
