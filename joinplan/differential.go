package joinplan

import "github.com/flowgraph/joinopt/relexpr"

// planDifferential plans join as a single-driver linear join. Unlike
// planDelta it always succeeds as long as at least one order exists
// (true whenever the join has at least one input), since a differential
// plan is always buildable: in the worst case every step builds a
// fresh arrangement.
//
// The starting input is chosen to maximize the worst (minimum)
// characteristics among its continuation steps, preferring the
// lowest-indexed order on ties (see order.go's comment on stability
// under permutation).
func planDifferential(join *relexpr.Join, arities, priorArities []int, available [][][]relexpr.ScalarExpr, uniqueKeys [][][]int) (relexpr.RelationExpr, bool) {
	orders := optimizeOrders(len(join.Inputs), join.Variables, available, uniqueKeys)
	if len(orders) == 0 {
		return nil, false
	}

	var maxMin Characteristics
	haveMaxMin := false
	minOf := make([]Characteristics, len(orders))
	for i, order := range orders {
		min := order[0].Characteristics
		for _, entry := range order {
			if entry.Characteristics.Less(min) {
				min = entry.Characteristics
			}
		}
		minOf[i] = min
		if !haveMaxMin || maxMin.Less(min) {
			maxMin = min
			haveMaxMin = true
		}
	}

	chosenIndex := -1
	for i, min := range minOf {
		if min.Equal(maxMin) {
			chosenIndex = i
			break
		}
	}
	if chosenIndex < 0 {
		return nil, false
	}

	order := orders[chosenIndex]
	start := order[0].Input
	steps := make([]relexpr.StepKey, 0, len(order)-1)
	for _, entry := range order[1:] {
		steps = append(steps, relexpr.StepKey{Input: entry.Input, Key: entry.Key})
	}

	inputs := join.Inputs
	lifted := installArrangements(inputs, available, priorArities, steps)
	updateDemand(join.Demand, arities, lifted)

	join.Implementation = &relexpr.Differential{Start: start, Order: steps}

	permutation := make([]int, 0, len(inputs))
	permutation = append(permutation, start)
	for _, step := range steps {
		permutation = append(permutation, step.Input)
	}
	permuteJoin(join, permutation)

	var result relexpr.RelationExpr = join
	if !isIdentityPermutation(permutation) {
		result = relexpr.ProjectTo(result, restoreProjection(permutation, arities))
	}
	if len(lifted) > 0 {
		result = relexpr.FilterBy(result, lifted)
	}
	return result, true
}

// isIdentityPermutation reports whether permutation is [0, 1, 2, ...].
func isIdentityPermutation(permutation []int) bool {
	for i, p := range permutation {
		if p != i {
			return false
		}
	}
	return true
}

// restoreProjection computes the column list that restores the
// pre-permutation column layout above a physically-permuted join:
// for each original relation (in original order), the block of columns
// it now occupies in the permuted output.
func restoreProjection(permutation []int, arities []int) []int {
	offsets := make([]int, len(permutation))
	offset := 0
	for _, input := range permutation {
		offsets[input] = offset
		offset += arities[input]
	}

	var project []int
	for rel := range arities {
		for col := 0; col < arities[rel]; col++ {
			project = append(project, offsets[rel]+col)
		}
	}
	return project
}
