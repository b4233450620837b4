// Command joinplan demonstrates the join-implementation planner on a
// handful of canned relational expressions, built the way the teacher's
// demo commands are: a flag-driven entry point (see cmd/datalog/main.go)
// that narrates what it's doing with fmt.Println and reports hard
// failures with log.Fatalf.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/flowgraph/joinopt/catalog"
	"github.com/flowgraph/joinopt/explain"
	"github.com/flowgraph/joinopt/joinplan"
	"github.com/flowgraph/joinopt/relexpr"
)

func main() {
	var scenario string
	var useColor bool
	var badgerPath string

	flag.StringVar(&scenario, "scenario", "all", "which scenario to plan: two-inputs, both-arranged, filter-lift, let-binding, or all")
	flag.BoolVar(&useColor, "color", false, "colorize plan output")
	flag.StringVar(&badgerPath, "catalog-db", "", "persist the arrangement catalog to this BadgerDB path instead of using an in-memory catalog")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Plans a handful of sample joins and prints the chosen implementation.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	scenarios := map[string]func() (relexpr.RelationExpr, map[string][][]relexpr.ScalarExpr){
		"two-inputs":    twoInputsOneArranged,
		"both-arranged": bothArranged,
		"filter-lift":   filterAboveArrangedInput,
		"let-binding":   letBindingVisibility,
	}

	names := []string{"two-inputs", "both-arranged", "filter-lift", "let-binding"}
	if scenario != "all" {
		if _, ok := scenarios[scenario]; !ok {
			log.Fatalf("unknown scenario %q", scenario)
		}
		names = []string{scenario}
	}

	for _, name := range names {
		fmt.Printf("=== %s ===\n", name)
		relation, seedCatalog := scenarios[name]()

		cat, snapshot := buildCatalog(badgerPath, seedCatalog)
		if cat != nil {
			defer cat.Close()
		}

		planned := joinplan.Plan(relation, snapshot)
		fmt.Println(explain.Render(planned, explain.Options{Color: useColor}))
	}
}

func buildCatalog(badgerPath string, seed map[string][][]relexpr.ScalarExpr) (*catalog.BadgerCatalog, map[string][][]relexpr.ScalarExpr) {
	if badgerPath == "" {
		snapshot, err := catalog.NewMapCatalog(seed).Snapshot()
		if err != nil {
			log.Fatalf("failed to snapshot catalog: %v", err)
		}
		return nil, snapshot
	}

	cat, err := catalog.OpenBadgerCatalog(badgerPath)
	if err != nil {
		log.Fatalf("failed to open catalog db: %v", err)
	}
	for id, keys := range seed {
		for _, key := range keys {
			if err := cat.Install(id, key); err != nil {
				log.Fatalf("failed to seed catalog: %v", err)
			}
		}
	}
	snapshot, err := cat.Snapshot()
	if err != nil {
		log.Fatalf("failed to snapshot catalog: %v", err)
	}
	return cat, snapshot
}
