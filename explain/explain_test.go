package explain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowgraph/joinopt/joinplan"
	"github.com/flowgraph/joinopt/relexpr"
)

func TestRenderDeltaQueryIncludesOrdersTable(t *testing.T) {
	a := &relexpr.Get{ID: relexpr.Global("a"), Typ: relexpr.Type{Arity: 2}}
	b := &relexpr.Get{ID: relexpr.Global("b"), Typ: relexpr.Type{Arity: 2}}
	join := relexpr.NewJoin(
		[]relexpr.RelationExpr{a, b},
		[][]relexpr.InputCol{{{Input: 0, Col: 0}, {Input: 1, Col: 0}}},
		nil,
	)
	catalog := map[string][][]relexpr.ScalarExpr{
		"a": {relexpr.ColumnsUpTo(1)},
		"b": {relexpr.ColumnsUpTo(1)},
	}

	planned := joinplan.Plan(join, catalog)
	out := Render(planned, Options{})

	require.Contains(t, out, "DeltaQuery")
	require.Contains(t, out, "| order")
	require.Contains(t, out, "input 0:")
	require.Contains(t, out, "input 1:")
}

func TestRenderDifferentialShowsStart(t *testing.T) {
	a := &relexpr.Get{ID: relexpr.Global("a"), Typ: relexpr.Type{Arity: 2}}
	b := &relexpr.Get{ID: relexpr.Global("b"), Typ: relexpr.Type{Arity: 2}}
	join := relexpr.NewJoin(
		[]relexpr.RelationExpr{a, b},
		[][]relexpr.InputCol{{{Input: 0, Col: 0}, {Input: 1, Col: 0}}},
		nil,
	)
	catalog := map[string][][]relexpr.ScalarExpr{
		"a": {relexpr.ColumnsUpTo(1)},
	}

	planned := joinplan.Plan(join, catalog)
	out := Render(planned, Options{})

	require.Contains(t, out, "Differential")
	require.Contains(t, out, "start=")
}

func TestRenderWithColorWrapsANSICodes(t *testing.T) {
	uncolored := label("DeltaQuery", 0, Options{Color: false})
	colored := label("DeltaQuery", 0, Options{Color: true})
	require.Equal(t, "DeltaQuery", uncolored)
	require.True(t, strings.Contains(colored, "DeltaQuery"))
	require.NotEqual(t, uncolored, colored)
}
