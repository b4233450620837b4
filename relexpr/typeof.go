package relexpr

// Type describes the arity and declared unique keys of a relational
// expression's output, as would be produced by a separate type-inference
// pass in a full optimizer. The join planner's "relational expression"
// collaborator contract requires this information to be available per
// node; TypeOf computes it structurally so the planner has something
// concrete to call.
type Type struct {
	Arity int
	// Keys lists sets of column positions, each of which uniquely
	// identifies a row (a declared or inferred unique key).
	Keys [][]int
}

// TypeOf computes the Type of a relational expression. Get and Constant
// carry their type explicitly; Reduce computes it from its own group
// key and aggregate counts; every other variant derives it from its
// children.
func TypeOf(e RelationExpr) Type {
	switch v := e.(type) {
	case *Get:
		return v.Typ
	case *Constant:
		return v.Typ
	case *Let:
		return TypeOf(v.Body)
	case *Filter:
		// A filter narrows rows, not columns or uniqueness.
		return TypeOf(v.Input)
	case *ArrangeBy:
		return TypeOf(v.Input)
	case *Reduce:
		keyLen := len(v.GroupKey)
		keys := [][]int{make([]int, keyLen)}
		for i := 0; i < keyLen; i++ {
			keys[0][i] = i
		}
		return Type{Arity: keyLen + len(v.Aggregates), Keys: keys}
	case *Join:
		arity := 0
		for _, input := range v.Inputs {
			arity += TypeOf(input).Arity
		}
		// A join's output has no declared unique key of its own in
		// this model, so a join used as an input to an outer join
		// contributes no unique key to that join's candidate ranking.
		return Type{Arity: arity}
	case *Project:
		return Type{Arity: len(v.Outputs)}
	default:
		panic("relexpr: TypeOf called on unknown RelationExpr variant")
	}
}

// Arities returns TypeOf(input).Arity for each input, in order.
func Arities(inputs []RelationExpr) []int {
	arities := make([]int, len(inputs))
	for i, input := range inputs {
		arities[i] = TypeOf(input).Arity
	}
	return arities
}

// PriorArities returns, for each input, the sum of the arities of the
// inputs to its left: the column offset at which that input's columns
// land in the joined output.
func PriorArities(arities []int) []int {
	prior := make([]int, len(arities))
	offset := 0
	for i, a := range arities {
		prior[i] = offset
		offset += a
	}
	return prior
}

// UniqueKeys returns TypeOf(input).Keys for each input, in order.
func UniqueKeys(inputs []RelationExpr) [][][]int {
	keys := make([][][]int, len(inputs))
	for i, input := range inputs {
		keys[i] = TypeOf(input).Keys
	}
	return keys
}
