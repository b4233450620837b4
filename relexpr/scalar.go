package relexpr

import (
	"fmt"
	"sort"
)

// ScalarExpr is the sum type over scalar expressions used as join keys
// and filter predicates. All variants are value types: they carry no
// mutable state, so rewriting (see RewriteColumns) returns a new
// expression rather than mutating in place.
type ScalarExpr interface {
	scalarExpr()
	// Support returns the set of column indices this expression reads.
	Support() []int
	// Key returns a canonical string used for structural comparison,
	// sorting, and deduplication of keys and predicates.
	Key() string
}

// Column references a single column of the enclosing expression by
// index.
type Column struct {
	Index int
}

func (Column) scalarExpr()      {}
func (c Column) Support() []int { return []int{c.Index} }
func (c Column) Key() string    { return fmt.Sprintf("#%d", c.Index) }

// Literal is a constant scalar value. Literal values are compared by
// their formatted representation, which is sufficient for sort/dedup of
// keys (literals never appear as join key columns produced by the
// planner itself, but predicates may carry them).
type Literal struct {
	Value interface{}
}

func (Literal) scalarExpr()      {}
func (Literal) Support() []int   { return nil }
func (l Literal) Key() string    { return fmt.Sprintf("=%v", l.Value) }

// Unary applies a named scalar function to a single argument, e.g. a
// cast or an IS NULL test.
type Unary struct {
	Op  string
	Arg ScalarExpr
}

func (Unary) scalarExpr() {}
func (u Unary) Support() []int {
	return u.Arg.Support()
}
func (u Unary) Key() string { return u.Op + "(" + u.Arg.Key() + ")" }

// Binary applies a named scalar function to two arguments, e.g. an
// equality test (used in lifted filter predicates).
type Binary struct {
	Op          string
	Left, Right ScalarExpr
}

func (Binary) scalarExpr() {}
func (b Binary) Support() []int {
	return append(append([]int{}, b.Left.Support()...), b.Right.Support()...)
}
func (b Binary) Key() string { return b.Op + "(" + b.Left.Key() + "," + b.Right.Key() + ")" }

// RewriteColumns returns a copy of e with every Column reference
// rewritten by f. This is the "mutable visitor" the scalar-expression
// collaborator contract calls for; since ScalarExpr nodes are immutable
// value types, rewriting produces a new tree rather than mutating the
// old one in place.
func RewriteColumns(e ScalarExpr, f func(int) int) ScalarExpr {
	switch v := e.(type) {
	case Column:
		return Column{Index: f(v.Index)}
	case Literal:
		return v
	case Unary:
		return Unary{Op: v.Op, Arg: RewriteColumns(v.Arg, f)}
	case Binary:
		return Binary{Op: v.Op, Left: RewriteColumns(v.Left, f), Right: RewriteColumns(v.Right, f)}
	default:
		panic(fmt.Sprintf("relexpr: unknown ScalarExpr variant %T", e))
	}
}

// ColumnsUpTo returns the key [column(0), column(1), ..., column(n-1)],
// used for a Reduce's implicit group-key arrangement.
func ColumnsUpTo(n int) []ScalarExpr {
	key := make([]ScalarExpr, n)
	for i := 0; i < n; i++ {
		key[i] = Column{Index: i}
	}
	return key
}

// KeyEqual reports whether two arrangement keys are structurally equal,
// in order.
func KeyEqual(a, b []ScalarExpr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key() != b[i].Key() {
			return false
		}
	}
	return true
}

// KeyString returns a canonical string for a whole arrangement key,
// used for sorting, deduplication, and structural tie-breaking between
// otherwise-equal candidates.
func KeyString(key []ScalarExpr) string {
	s := ""
	for i, e := range key {
		if i > 0 {
			s += "|"
		}
		s += e.Key()
	}
	return s
}

// SortDedupKeys sorts a list of arrangement keys into a canonical order
// and removes structural duplicates, matching the "sorted and
// deduplicated" requirement on per-input arrangement lists and on
// needed-arrangement lists.
func SortDedupKeys(keys [][]ScalarExpr) [][]ScalarExpr {
	if len(keys) == 0 {
		return keys
	}
	sorted := make([][]ScalarExpr, len(keys))
	copy(sorted, keys)
	sort.Slice(sorted, func(i, j int) bool { return KeyString(sorted[i]) < KeyString(sorted[j]) })
	out := sorted[:1]
	for _, k := range sorted[1:] {
		if KeyString(k) != KeyString(out[len(out)-1]) {
			out = append(out, k)
		}
	}
	return out
}

// ContainsKey reports whether keys contains key (structural equality).
func ContainsKey(keys [][]ScalarExpr, key []ScalarExpr) bool {
	target := KeyString(key)
	for _, k := range keys {
		if KeyString(k) == target {
			return true
		}
	}
	return false
}
