package joinplan

import "github.com/flowgraph/joinopt/relexpr"

// discoverArrangements computes, for each input, the set of arrangement
// keys already available beneath it. The walk tunnels through a chain of
// Filter nodes: predicates do not destroy the arrangement of the thing
// they filter, and may later be lifted past the join (see install.go).
func discoverArrangements(inputs []relexpr.RelationExpr, env *Env) [][][]relexpr.ScalarExpr {
	available := make([][][]relexpr.ScalarExpr, len(inputs))
	for i, input := range inputs {
		available[i] = discoverOne(input, env)
	}
	return available
}

func discoverOne(input relexpr.RelationExpr, env *Env) [][]relexpr.ScalarExpr {
	for {
		if f, ok := input.(*relexpr.Filter); ok {
			input = f.Input
			continue
		}
		break
	}

	var keys [][]relexpr.ScalarExpr
	switch v := input.(type) {
	case *relexpr.Get:
		if bound, ok := env.Lookup(v.ID); ok {
			keys = append(keys, bound...)
		}
	case *relexpr.ArrangeBy:
		keys = append(keys, v.Keys...)
		if get, ok := v.Input.(*relexpr.Get); ok {
			if bound, ok := env.Lookup(get.ID); ok {
				keys = append(keys, bound...)
			}
		}
	case *relexpr.Reduce:
		keys = append(keys, relexpr.ColumnsUpTo(len(v.GroupKey)))
	}

	return relexpr.SortDedupKeys(keys)
}
