package relexpr

import "sort"

// SortDedupInts sorts a slice of column indices and removes duplicates,
// used to normalize demand lists.
func SortDedupInts(xs []int) []int {
	if len(xs) == 0 {
		return xs
	}
	sorted := make([]int, len(xs))
	copy(sorted, xs)
	sort.Ints(sorted)
	out := sorted[:1]
	for _, x := range sorted[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}
