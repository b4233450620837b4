// Package catalog supplies the "persistent-index catalog" collaborator
// named by the join planner's contract: a mapping from global collection
// identifier to the list of arrangement keys already materialized for
// it. The join planner (package joinplan) only ever consumes this as a
// plain map; this package exists to give that map a couple of concrete,
// corpus-grounded sources.
package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/flowgraph/joinopt/relexpr"
)

// Catalog supplies the arrangement keys known for each global collection
// identifier.
type Catalog interface {
	// Keys returns the arrangement keys recorded for id, or nil if none
	// are recorded.
	Keys(id string) [][]relexpr.ScalarExpr
	// Install records that id now has an arrangement under key, in
	// addition to whatever was previously recorded.
	Install(id string, key []relexpr.ScalarExpr) error
	// Snapshot returns the full catalog as a plain map, the shape
	// joinplan.Plan expects as its catalog argument.
	Snapshot() (map[string][][]relexpr.ScalarExpr, error)
}

// MapCatalog is an in-memory Catalog, the simplest concrete
// implementation of the collaborator.
type MapCatalog struct {
	arrangements map[string][][]relexpr.ScalarExpr
}

// NewMapCatalog builds a MapCatalog from a fixed set of arrangements.
func NewMapCatalog(initial map[string][][]relexpr.ScalarExpr) *MapCatalog {
	arrangements := make(map[string][][]relexpr.ScalarExpr, len(initial))
	for id, keys := range initial {
		arrangements[id] = relexpr.SortDedupKeys(keys)
	}
	return &MapCatalog{arrangements: arrangements}
}

func (c *MapCatalog) Keys(id string) [][]relexpr.ScalarExpr {
	return c.arrangements[id]
}

func (c *MapCatalog) Install(id string, key []relexpr.ScalarExpr) error {
	c.arrangements[id] = relexpr.SortDedupKeys(append(c.arrangements[id], key))
	return nil
}

func (c *MapCatalog) Snapshot() (map[string][][]relexpr.ScalarExpr, error) {
	out := make(map[string][][]relexpr.ScalarExpr, len(c.arrangements))
	for id, keys := range c.arrangements {
		out[id] = keys
	}
	return out, nil
}

// encodedKey is the JSON-friendly representation of a single arrangement
// key used by BadgerCatalog, since relexpr.ScalarExpr is an interface
// and can't round-trip through encoding/json directly.
type encodedKey struct {
	Columns []int `json:"columns"`
}

func encodeKey(key []relexpr.ScalarExpr) (encodedKey, error) {
	enc := encodedKey{Columns: make([]int, len(key))}
	for i, expr := range key {
		col, ok := expr.(relexpr.Column)
		if !ok {
			return encodedKey{}, fmt.Errorf("catalog: key expression %q is not a plain column reference, cannot persist", expr.Key())
		}
		enc.Columns[i] = col.Index
	}
	return enc, nil
}

func decodeKey(enc encodedKey) []relexpr.ScalarExpr {
	key := make([]relexpr.ScalarExpr, len(enc.Columns))
	for i, col := range enc.Columns {
		key[i] = relexpr.Column{Index: col}
	}
	return key
}

func marshalKeys(keys [][]relexpr.ScalarExpr) ([]byte, error) {
	encoded := make([]encodedKey, len(keys))
	for i, key := range keys {
		enc, err := encodeKey(key)
		if err != nil {
			return nil, err
		}
		encoded[i] = enc
	}
	return json.Marshal(encoded)
}

func unmarshalKeys(data []byte) ([][]relexpr.ScalarExpr, error) {
	var encoded []encodedKey
	if err := json.Unmarshal(data, &encoded); err != nil {
		return nil, err
	}
	keys := make([][]relexpr.ScalarExpr, len(encoded))
	for i, enc := range encoded {
		keys[i] = decodeKey(enc)
	}
	return keys, nil
}
