package relexpr

// FilterBy wraps input in a Filter over predicates. If predicates is
// empty, input is returned unwrapped.
func FilterBy(input RelationExpr, predicates []ScalarExpr) RelationExpr {
	if len(predicates) == 0 {
		return input
	}
	return &Filter{Input: input, Predicates: predicates}
}

// ArrangeByKeys wraps input in an ArrangeBy over keys. If keys is empty,
// input is returned unwrapped.
func ArrangeByKeys(input RelationExpr, keys [][]ScalarExpr) RelationExpr {
	if len(keys) == 0 {
		return input
	}
	return &ArrangeBy{Input: input, Keys: keys}
}

// ProjectTo wraps input in a Project over the listed output columns.
func ProjectTo(input RelationExpr, outputs []int) RelationExpr {
	return &Project{Input: input, Outputs: outputs}
}
