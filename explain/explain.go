// Package explain renders a planned relexpr tree as human-readable
// output: which joins were planned as delta queries versus differential
// joins, what order and keys were chosen, and which predicates were
// lifted. Grounded on the teacher's own plan-explain tooling
// (datalog/executor/table_formatter.go for tablewriter usage,
// datalog/annotations/output.go for color conventions).
package explain

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/flowgraph/joinopt/relexpr"
)

// Options controls rendering.
type Options struct {
	// Color enables ANSI colorization of implementation labels. Off by
	// default so output is stable in non-terminal contexts (tests, CI
	// logs).
	Color bool
}

// Render walks root and prints one section per Join node found,
// preceded by a note for any Filter/Project wrapper the planner added
// above it.
func Render(root relexpr.RelationExpr, opts Options) string {
	var b strings.Builder
	renderNode(&b, root, opts)
	return b.String()
}

func renderNode(b *strings.Builder, e relexpr.RelationExpr, opts Options) {
	switch v := e.(type) {
	case *relexpr.Filter:
		fmt.Fprintf(b, "%s lifted predicates: %s\n", label("Filter", color.FgYellow, opts), formatPredicates(v.Predicates))
		renderNode(b, v.Input, opts)
		return
	case *relexpr.Project:
		fmt.Fprintf(b, "%s restores column order: %v\n", label("Project", color.FgYellow, opts), v.Outputs)
		renderNode(b, v.Input, opts)
		return
	case *relexpr.Join:
		renderJoin(b, v, opts)
		return
	}
	relexpr.Visit1(e, func(child relexpr.RelationExpr) { renderNode(b, child, opts) })
}

func renderJoin(b *strings.Builder, join *relexpr.Join, opts Options) {
	switch impl := join.Implementation.(type) {
	case *relexpr.DeltaQuery:
		fmt.Fprintf(b, "%s over %d inputs\n", label("DeltaQuery", color.FgGreen, opts), len(join.Inputs))
		renderOrdersTable(b, impl.Orders)
	case *relexpr.Differential:
		fmt.Fprintf(b, "%s start=%d\n", label("Differential", color.FgCyan, opts), impl.Start)
		renderOrdersTable(b, [][]relexpr.StepKey{impl.Order})
	case relexpr.Unimplemented:
		fmt.Fprintf(b, "%s\n", label("Unimplemented", color.FgRed, opts))
	default:
		fmt.Fprintf(b, "%s\n", label(fmt.Sprintf("%T", impl), color.FgRed, opts))
	}

	for i, input := range join.Inputs {
		fmt.Fprintf(b, "  input %d:\n", i)
		var nested strings.Builder
		renderNode(&nested, input, opts)
		for _, line := range strings.Split(strings.TrimRight(nested.String(), "\n"), "\n") {
			if line == "" {
				continue
			}
			fmt.Fprintf(b, "    %s\n", line)
		}
	}
}

func renderOrdersTable(b *strings.Builder, orders [][]relexpr.StepKey) {
	table := tablewriter.NewTable(b,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header([]string{"order", "step", "input", "key"})
	for o, order := range orders {
		for s, step := range order {
			table.Append([]string{
				fmt.Sprintf("%d", o),
				fmt.Sprintf("%d", s),
				fmt.Sprintf("%d", step.Input),
				formatKey(step.Key),
			})
		}
	}
	table.Render()
}

func formatKey(key []relexpr.ScalarExpr) string {
	parts := make([]string, len(key))
	for i, e := range key {
		parts[i] = e.Key()
	}
	return strings.Join(parts, ", ")
}

func formatPredicates(predicates []relexpr.ScalarExpr) string {
	parts := make([]string, len(predicates))
	for i, p := range predicates {
		parts[i] = p.Key()
	}
	return strings.Join(parts, "; ")
}

func label(text string, attr color.Attribute, opts Options) string {
	if !opts.Color {
		return text
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(text)
}
