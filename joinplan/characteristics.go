package joinplan

// Characteristics ranks a candidate (input, key) pair for the order
// optimizer. Comparison is lexicographic over the three fields in the
// order written, with true outranking false in each:
//
//  1. UniqueKey: the key functionally determines the row.
//  2. ExactKey: the key has no columns beyond what the join needs yet.
//  3. Arranged: the key is already materialized; no new arrangement
//     would need to be built.
type Characteristics struct {
	UniqueKey bool
	ExactKey  bool
	Arranged  bool
}

// Less reports whether c ranks strictly below other.
func (c Characteristics) Less(other Characteristics) bool {
	if c.UniqueKey != other.UniqueKey {
		return !c.UniqueKey
	}
	if c.ExactKey != other.ExactKey {
		return !c.ExactKey
	}
	if c.Arranged != other.Arranged {
		return !c.Arranged
	}
	return false
}

// Equal reports whether c and other rank identically.
func (c Characteristics) Equal(other Characteristics) bool {
	return c == other
}

// Max returns the higher-ranked of a and b, a on ties.
func Max(a, b Characteristics) Characteristics {
	if a.Less(b) {
		return b
	}
	return a
}

// seedCharacteristics is installed at index 0 of every order produced by
// optimizeOrders (see order.go). It is a sentinel: the starting input is
// the driver, not a lookup target, so its own characteristics are never
// used to form the driver's key. It is only safe because both the delta
// and the differential planner unconditionally skip index 0 when they
// read orders back out (see SPEC_FULL.md's open-question notes).
var seedCharacteristics = Characteristics{UniqueKey: true, ExactKey: true, Arranged: true}
