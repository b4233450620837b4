// Package joinplan selects a physical join implementation (delta query
// or linear differential join) for every Join node in a relexpr tree,
// choosing input order, arrangement keys, and predicate lifting as it
// goes.
//
// File organization:
//   - joinplan.go: Plan() entry point and the pre-order traversal that
//     threads the arrangement environment through Let bindings.
//   - env.go: the arrangement environment itself.
//   - discovery.go: per-input arrangement discovery.
//   - characteristics.go: the candidate ranking used by the order
//     optimizer.
//   - order.go: the order optimizer and candidate picker.
//   - delta.go: the delta-query planner.
//   - differential.go: the differential (linear) planner.
//   - install.go: the arrangement installer and predicate lifter.
//   - permute.go: the permute-join helper used by the differential
//     planner.
//
// Plan mutates its input in place and is not safe to call concurrently
// on overlapping trees.
package joinplan

import "github.com/flowgraph/joinopt/relexpr"

// Plan runs the join-implementation pass over relation, given a catalog
// of pre-existing global arrangements. It mutates relation in place and
// also returns it for convenience.
//
// Every Join reachable from relation ends up with a non-Unimplemented
// Implementation (invariant 1). Planning failure for one join does not
// affect its siblings; if both the delta and differential strategies
// decline for some join, Plan panics: that signals corrupt input (e.g.
// a zero-input join reaching this pass), not a recoverable condition.
func Plan(relation relexpr.RelationExpr, catalog map[string][][]relexpr.ScalarExpr) relexpr.RelationExpr {
	env := NewEnv(catalog)
	slot := relation
	actionRecursive(&slot, env)
	return slot
}

// actionRecursive is the pre-order visitor described in spec §4.1. Let
// is special-cased: it must recurse into its value, inspect the
// (possibly now-transformed) value's shape to decide whether to extend
// the environment, recurse into its body, and then remove the binding on
// every exit path. Every other node runs the per-node action (a no-op
// unless it is a Join) before descending into its children.
func actionRecursive(slot *relexpr.RelationExpr, env *Env) {
	if let, ok := (*slot).(*relexpr.Let); ok {
		actionRecursive(&let.Value, env)

		bound := false
		switch value := let.Value.(type) {
		case *relexpr.ArrangeBy:
			env.Bind(let.Name, value.Keys)
			bound = true
		case *relexpr.Reduce:
			env.Bind(let.Name, [][]relexpr.ScalarExpr{relexpr.ColumnsUpTo(len(value.GroupKey))})
			bound = true
		}

		if bound {
			defer env.Unbind(let.Name)
		}
		actionRecursive(&let.Body, env)
		return
	}

	action(slot, env)
	relexpr.Visit1Mut(*slot, func(child *relexpr.RelationExpr) {
		actionRecursive(child, env)
	})
}

// action runs the core join-planning algorithm when slot holds a Join,
// and does nothing otherwise.
func action(slot *relexpr.RelationExpr, env *Env) {
	join, ok := (*slot).(*relexpr.Join)
	if !ok {
		return
	}

	arities := relexpr.Arities(join.Inputs)
	priorArities := relexpr.PriorArities(arities)
	uniqueKeys := relexpr.UniqueKeys(join.Inputs)
	available := discoverArrangements(join.Inputs, env)

	if planned, ok := planDelta(join, arities, priorArities, available, uniqueKeys); ok {
		*slot = planned
		return
	}
	if planned, ok := planDifferential(join, arities, priorArities, available, uniqueKeys); ok {
		*slot = planned
		return
	}
	panic("joinplan: failed to produce a join plan (both delta and differential declined)")
}
