package joinplan

import (
	"sort"

	"github.com/flowgraph/joinopt/relexpr"
)

// permuteJoin reshuffles join's inputs, variables, demand and
// implementation so that physical position k holds what used to be
// input permutation[k]. Used by planDifferential to move the chosen
// driving input into physical position 0.
func permuteJoin(join *relexpr.Join, permutation []int) {
	newInputs := make([]relexpr.RelationExpr, len(permutation))
	for k, i := range permutation {
		newInputs[k] = join.Inputs[i]
	}
	join.Inputs = newInputs

	remap := make([]int, len(permutation))
	for newPos, oldPos := range permutation {
		remap[oldPos] = newPos
	}

	for _, class := range join.Variables {
		for i := range class {
			class[i].Input = remap[class[i].Input]
		}
		sortInputCols(class)
	}
	sortClasses(join.Variables)

	if join.Demand != nil {
		newDemand := make([][]int, len(permutation))
		for k, i := range permutation {
			newDemand[k] = join.Demand[i]
		}
		join.Demand = newDemand
	}

	switch impl := join.Implementation.(type) {
	case *relexpr.Differential:
		impl.Start = 0
		for i := range impl.Order {
			impl.Order[i].Input = i + 1
		}
	case *relexpr.DeltaQuery:
		newOrders := make([][]relexpr.StepKey, len(permutation))
		for k, i := range permutation {
			newOrders[k] = impl.Orders[i]
		}
		for _, order := range newOrders {
			for i := range order {
				order[i].Input = remap[order[i].Input]
			}
		}
		impl.Orders = newOrders
	case relexpr.Unimplemented, nil:
		// nothing to rewrite
	}
}

func sortInputCols(class []relexpr.InputCol) {
	sort.Slice(class, func(i, j int) bool {
		if class[i].Input != class[j].Input {
			return class[i].Input < class[j].Input
		}
		return class[i].Col < class[j].Col
	})
}

func sortClasses(classes [][]relexpr.InputCol) {
	sort.Slice(classes, func(i, j int) bool {
		return classLess(classes[i], classes[j])
	})
}

func classLess(a, b []relexpr.InputCol) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].Input != b[i].Input {
			return a[i].Input < b[i].Input
		}
		if a[i].Col != b[i].Col {
			return a[i].Col < b[i].Col
		}
	}
	return len(a) < len(b)
}
