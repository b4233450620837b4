package joinplan

import "github.com/flowgraph/joinopt/relexpr"

// planDelta attempts to plan join as a delta query. It succeeds only if
// every step of every starting order is already arranged: a delta
// query is the one strategy that requires no new arrangement to be
// built anywhere, since every input streams updates against every other
// input's arrangement. Until that condition holds the planner declines
// (ok == false) and leaves join untouched, so the caller can fall back
// to planDifferential.
func planDelta(join *relexpr.Join, arities, priorArities []int, available [][][]relexpr.ScalarExpr, uniqueKeys [][][]int) (relexpr.RelationExpr, bool) {
	orders := optimizeOrders(len(join.Inputs), join.Variables, available, uniqueKeys)
	if len(orders) == 0 {
		// A join with no inputs has no orders and gets no plan.
		return nil, false
	}

	for _, order := range orders {
		for _, step := range order[1:] {
			if !step.Characteristics.Arranged {
				return nil, false
			}
		}
	}

	perStart := make([][]relexpr.StepKey, len(orders))
	var allSteps []relexpr.StepKey
	for i, order := range orders {
		steps := make([]relexpr.StepKey, 0, len(order)-1)
		for _, entry := range order[1:] {
			step := relexpr.StepKey{Input: entry.Input, Key: entry.Key}
			steps = append(steps, step)
			allSteps = append(allSteps, step)
		}
		perStart[i] = steps
	}

	inputs := join.Inputs
	lifted := installArrangements(inputs, available, priorArities, allSteps)
	updateDemand(join.Demand, arities, lifted)

	join.Implementation = &relexpr.DeltaQuery{Orders: perStart}

	var result relexpr.RelationExpr = join
	if len(lifted) > 0 {
		result = relexpr.FilterBy(result, lifted)
	}
	return result, true
}
