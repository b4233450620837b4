package joinplan

import (
	"sort"

	"github.com/flowgraph/joinopt/relexpr"
)

// orderEntry is one step of a candidate join order: the characteristics
// that earned this step its place, the arrangement key chosen (nil for
// the seed), and which input it refers to.
type orderEntry struct {
	Characteristics Characteristics
	Key             []relexpr.ScalarExpr
	Input           int
}

// optimizeOrders produces one candidate order per possible starting
// input. Order k starts with a seed entry for input k (see
// seedCharacteristics) and is extended greedily, one input at a time,
// by the candidate picker.
func optimizeOrders(numInputs int, variables [][]relexpr.InputCol, available [][][]relexpr.ScalarExpr, uniqueKeys [][][]int) [][]orderEntry {
	orders := make([][]orderEntry, numInputs)
	for start := 0; start < numInputs; start++ {
		order := []orderEntry{{Characteristics: seedCharacteristics, Input: start}}
		for len(order) < numInputs {
			placed := make([]int, len(order))
			for i, e := range order {
				placed[i] = e.Input
			}
			next, ok := optimizeCandidate(numInputs, placed, variables, available, uniqueKeys)
			if !ok {
				panic("joinplan: optimizeCandidate found no candidate for a non-empty remaining set")
			}
			order = append(order, next)
		}
		orders[start] = order
	}
	return orders
}

// optimizeCandidate picks the next input to add to a partial order. For
// each remaining input it computes the best candidate key available to
// it (an existing arrangement it can probe with the columns already
// bound by order, or a freshly-arranged key over exactly those
// columns), then returns the first (lowest-indexed) remaining input
// whose best candidate matches the overall best characteristics found.
//
// Picking the first input at the maximum, rather than e.g. the lowest
// original index among all ties regardless of value, keeps selection
// stable when inputs are later permuted, which is required for the pass to
// converge to a fixed point under repeated invocation.
func optimizeCandidate(numInputs int, order []int, variables [][]relexpr.InputCol, available [][][]relexpr.ScalarExpr, uniqueKeys [][][]int) (orderEntry, bool) {
	placed := make(map[int]bool, len(order))
	for _, i := range order {
		placed[i] = true
	}

	type indexed struct {
		entry orderEntry
		index int
	}
	var candidates []indexed

	for i := 0; i < numInputs; i++ {
		if placed[i] {
			continue
		}
		constrained := constrainedColumns(i, order, variables)
		best, ok := bestCandidateFor(i, constrained, available[i], uniqueKeys[i])
		if !ok {
			continue
		}
		candidates = append(candidates, indexed{entry: best, index: i})
	}

	if len(candidates) == 0 {
		return orderEntry{}, false
	}

	max := candidates[0].entry.Characteristics
	for _, c := range candidates[1:] {
		max = Max(max, c.entry.Characteristics)
	}
	for _, c := range candidates {
		if c.entry.Characteristics.Equal(max) {
			return c.entry, true
		}
	}
	// Unreachable: max was computed from candidates themselves.
	return orderEntry{}, false
}

// bestCandidateFor computes the lexicographic maximum over input i's own
// candidates: every existing arrangement key usable given the
// already-constrained columns, plus a synthetic "build a new
// arrangement over exactly the constrained columns" candidate.
func bestCandidateFor(i int, constrained []int, available [][]relexpr.ScalarExpr, uniqueKeys [][]int) (orderEntry, bool) {
	constrainedSet := make(map[int]bool, len(constrained))
	for _, c := range constrained {
		constrainedSet[c] = true
	}

	// The candidate picker's max is over the full (characteristics, key)
	// pair, not characteristics alone: candidates with equal
	// characteristics are broken by the structurally greater key.
	var best orderEntry
	haveBest := false
	consider := func(candidate orderEntry) {
		if !haveBest {
			best = candidate
			haveBest = true
			return
		}
		switch {
		case best.Characteristics.Less(candidate.Characteristics):
			best = candidate
		case candidate.Characteristics.Less(best.Characteristics):
			// candidate ranks lower, keep best
		case relexpr.KeyString(best.Key) < relexpr.KeyString(candidate.Key):
			best = candidate
		}
	}

	for _, key := range available {
		if !keyFormableFrom(key, constrainedSet) {
			continue
		}
		consider(orderEntry{
			Characteristics: Characteristics{
				UniqueKey: keyCoversUnique(key, uniqueKeys),
				ExactKey:  len(key) == len(constrained),
				Arranged:  true,
			},
			Key:   key,
			Input: i,
		})
	}

	var newKey []relexpr.ScalarExpr
	if len(constrained) > 0 {
		newKey = make([]relexpr.ScalarExpr, len(constrained))
		for idx, col := range constrained {
			newKey[idx] = relexpr.Column{Index: col}
		}
	}
	consider(orderEntry{
		Characteristics: Characteristics{
			UniqueKey: columnsCoverUnique(constrained, uniqueKeys),
			ExactKey:  true,
			Arranged:  false,
		},
		Key:   newKey,
		Input: i,
	})

	return best, haveBest
}

// keyFormableFrom reports whether every column referenced anywhere in
// key is already bound (present in constrained), i.e. whether the
// lookup value for key can actually be formed from the columns the join
// has already placed.
func keyFormableFrom(key []relexpr.ScalarExpr, constrained map[int]bool) bool {
	for _, expr := range key {
		for _, col := range expr.Support() {
			if !constrained[col] {
				return false
			}
		}
	}
	return true
}

// keyCoversUnique reports whether some declared unique key of the input
// is fully covered by the columns referenced in key.
func keyCoversUnique(key []relexpr.ScalarExpr, uniqueKeys [][]int) bool {
	have := make(map[int]bool)
	for _, expr := range key {
		if col, ok := expr.(relexpr.Column); ok {
			have[col.Index] = true
		}
	}
	return columnSetCoveredBy(uniqueKeys, have)
}

// columnsCoverUnique reports whether some declared unique key of the
// input is fully covered by the columns in constrained.
func columnsCoverUnique(constrained []int, uniqueKeys [][]int) bool {
	have := make(map[int]bool, len(constrained))
	for _, c := range constrained {
		have[c] = true
	}
	return columnSetCoveredBy(uniqueKeys, have)
}

func columnSetCoveredBy(uniqueKeys [][]int, have map[int]bool) bool {
	for _, uniq := range uniqueKeys {
		covered := true
		for _, col := range uniq {
			if !have[col] {
				covered = false
				break
			}
		}
		if covered {
			return true
		}
	}
	return false
}

// constrainedColumns lists the columns of input index that are
// constrained to equal a column of some already-placed input: the
// columns whose value is already known once order has been joined.
func constrainedColumns(index int, order []int, variables [][]relexpr.InputCol) []int {
	placed := make(map[int]bool, len(order))
	for _, i := range order {
		placed[i] = true
	}

	seen := make(map[int]bool)
	var results []int
	for _, class := range variables {
		touchesPlaced := false
		for _, member := range class {
			if placed[member.Input] {
				touchesPlaced = true
				break
			}
		}
		if !touchesPlaced {
			continue
		}
		for _, member := range class {
			if member.Input == index && !seen[member.Col] {
				seen[member.Col] = true
				results = append(results, member.Col)
			}
		}
	}
	sort.Ints(results)
	return results
}
