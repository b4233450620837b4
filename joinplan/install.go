package joinplan

import "github.com/flowgraph/joinopt/relexpr"

// installArrangements mutates inputs in place so that every (input, key)
// pair named in needed is backed by an ArrangeBy wrapper, and returns the
// predicates lifted in the process.
//
// For an input with a non-empty needed set that is already fully
// covered by available (every needed key is already an available
// arrangement), any enclosing Filter chain is peeled off and its
// predicates are collected into lifted, rewritten to the join's output
// column numbering by adding priorArities[index]. This is the only case
// in which predicates are lifted: lifting is never attempted when it
// would force building a new arrangement, so it can never make a plan
// worse.
//
// Any existing ArrangeBy wrapper is peeled unconditionally whenever the
// needed set is non-empty, and a fresh one over the needed keys is
// wrapped around what remains. This prevents stale arrangements from
// accumulating across repeated passes.
func installArrangements(inputs []relexpr.RelationExpr, available [][][]relexpr.ScalarExpr, priorArities []int, needed []relexpr.StepKey) []relexpr.ScalarExpr {
	perInput := make([][][]relexpr.ScalarExpr, len(inputs))
	for _, step := range needed {
		perInput[step.Input] = append(perInput[step.Input], step.Key)
	}

	var lifted []relexpr.ScalarExpr
	for index := range inputs {
		keys := relexpr.SortDedupKeys(perInput[index])
		if len(keys) == 0 {
			continue
		}

		if allAvailable(keys, available[index]) {
			for {
				f, ok := inputs[index].(*relexpr.Filter)
				if !ok {
					break
				}
				for _, predicate := range f.Predicates {
					lifted = append(lifted, relexpr.RewriteColumns(predicate, func(c int) int {
						return c + priorArities[index]
					}))
				}
				inputs[index] = relexpr.Take(&f.Input)
			}
		}

		for {
			a, ok := inputs[index].(*relexpr.ArrangeBy)
			if !ok {
				break
			}
			inputs[index] = relexpr.Take(&a.Input)
		}

		inputs[index] = relexpr.ArrangeByKeys(inputs[index], keys)
	}

	return lifted
}

func allAvailable(needed, available [][]relexpr.ScalarExpr) bool {
	for _, key := range needed {
		if !relexpr.ContainsKey(available, key) {
			return false
		}
	}
	return true
}

// updateDemand adds the columns referenced by lifted to demand, mapping
// each join-output column back to its owning input via arities. demand
// may be nil (no downstream pruning information tracked), in which case
// nothing is done.
func updateDemand(demand [][]int, arities []int, lifted []relexpr.ScalarExpr) {
	if demand == nil || len(lifted) == 0 {
		return
	}

	var relOf, colOf []int
	for input, arity := range arities {
		for c := 0; c < arity; c++ {
			relOf = append(relOf, input)
			colOf = append(colOf, c)
		}
	}

	for _, expr := range lifted {
		for _, column := range expr.Support() {
			rel := relOf[column]
			col := colOf[column]
			demand[rel] = append(demand[rel], col)
		}
	}
	for i := range demand {
		demand[i] = relexpr.SortDedupInts(demand[i])
	}
}
