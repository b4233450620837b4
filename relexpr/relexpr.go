// Package relexpr implements the relational expression tree that the join
// planner in package joinplan operates over.
//
// File organization:
//   - relexpr.go: RelationExpr sum type and the Id used by Get/Let.
//   - scalar.go: ScalarExpr sum type (column references, literals, calls).
//   - typeof.go: arity / unique-key inference (the "type inference"
//     collaborator capability named by the join planner's contract).
//   - visit.go: child visitor and the sentinel-take peeling helper.
//   - build.go: constructors/combinators (Filter, Project, ArrangeBy).
package relexpr

// Id names a collection: either a catalog-global identifier or a name
// bound by an enclosing Let. Two Ids are equal iff both fields match, so
// Id is safe to use as a map key.
type Id struct {
	Name    string
	IsLocal bool
}

func Global(name string) Id { return Id{Name: name} }
func Local(name string) Id  { return Id{Name: name, IsLocal: true} }

func (id Id) String() string {
	if id.IsLocal {
		return "%" + id.Name
	}
	return id.Name
}

// RelationExpr is the sum type over relational expression nodes. Variants
// are pointer types so that child fields reached through Visit1Mut remain
// addressable and shared with the tree they were read from.
type RelationExpr interface {
	relationExpr()
}

// Get references a named collection. Typ carries the arity and declared
// unique keys of the collection; in a real optimizer this would come from
// a catalog or a prior type-inference pass, so we carry it inline here.
type Get struct {
	ID  Id
	Typ Type
}

func (*Get) relationExpr() {}

// Let introduces a local binding visible only within Body.
type Let struct {
	Name  string
	Value RelationExpr
	Body  RelationExpr
}

func (*Let) relationExpr() {}

// Filter retains rows for which every predicate holds.
type Filter struct {
	Input      RelationExpr
	Predicates []ScalarExpr
}

func (*Filter) relationExpr() {}

// ArrangeBy materializes Input keyed by each sequence of scalar
// expressions in Keys. A single ArrangeBy node may request more than one
// key at once.
type ArrangeBy struct {
	Input RelationExpr
	Keys  [][]ScalarExpr
}

func (*ArrangeBy) relationExpr() {}

// Reduce groups Input by GroupKey and computes Aggregates per group.
// Aggregation planning itself is out of scope for the join planner; we
// keep just enough shape here (group key arity, aggregate count) to
// compute Reduce's output arity and implicit arrangement.
type Reduce struct {
	Input      RelationExpr
	GroupKey   []ScalarExpr
	Aggregates []ScalarExpr
}

func (*Reduce) relationExpr() {}

// InputCol names a column of one input to a Join: Input is the input's
// position in Join.Inputs, Col is the column's position within that
// input's own output.
type InputCol struct {
	Input int
	Col   int
}

// StepKey is a single (input, arrangement key) instruction: "look up
// this input's rows using this key".
type StepKey struct {
	Input int
	Key   []ScalarExpr
}

// Implementation records how a Join has been (or has not yet been)
// planned.
type Implementation interface {
	implementation()
}

// Unimplemented marks a Join the planner has not yet visited.
type Unimplemented struct{}

func (Unimplemented) implementation() {}

// Differential is a linear join: Start drives, and each entry of Order
// is probed against Start's accumulating result in turn.
type Differential struct {
	Start int
	Order []StepKey
}

func (*Differential) implementation() {}

// DeltaQuery is a delta-query join: Orders holds one full instruction
// list per possible starting input (Orders[k] is driven by input k).
type DeltaQuery struct {
	Orders [][]StepKey
}

func (*DeltaQuery) implementation() {}

// Join is a multi-way equi-join. Demand is nil when no downstream column
// pruning information is available (the optional per-input column list
// described in the data model).
type Join struct {
	Inputs         []RelationExpr
	Variables      [][]InputCol
	Demand         [][]int
	Implementation Implementation
}

func (*Join) relationExpr() {}

// NewJoin builds an unplanned Join over inputs. demand may be nil.
func NewJoin(inputs []RelationExpr, variables [][]InputCol, demand [][]int) *Join {
	return &Join{
		Inputs:         inputs,
		Variables:      variables,
		Demand:         demand,
		Implementation: Unimplemented{},
	}
}

// Project retains only the listed output columns, in the given order.
type Project struct {
	Input   RelationExpr
	Outputs []int
}

func (*Project) relationExpr() {}

// Constant is a literal, fully-materialized relation. The planner never
// produces these as part of a plan; it uses an empty Constant purely as
// a cheap sentinel when peeling a wrapper off an input (see Take in
// visit.go).
type Constant struct {
	Typ Type
}

func (*Constant) relationExpr() {}
