package catalog

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/flowgraph/joinopt/relexpr"
)

// BadgerCatalog is a Catalog backed by a BadgerDB instance, so that
// arrangements discovered in one process (e.g. by a materialization
// layer this package doesn't itself implement) survive a restart. Keys
// are stored under a fixed prefix so the catalog can share a database
// with other subsystems.
type BadgerCatalog struct {
	db *badger.DB
}

const badgerKeyPrefix = "joinopt/arrangements/"

// OpenBadgerCatalog opens (creating if necessary) a BadgerDB-backed
// catalog at path.
func OpenBadgerCatalog(path string) (*BadgerCatalog, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to open badger: %w", err)
	}
	return &BadgerCatalog{db: db}, nil
}

// Close releases the underlying database.
func (c *BadgerCatalog) Close() error {
	return c.db.Close()
}

func (c *BadgerCatalog) Keys(id string) [][]relexpr.ScalarExpr {
	var keys [][]relexpr.ScalarExpr
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			decoded, err := unmarshalKeys(val)
			if err != nil {
				return err
			}
			keys = decoded
			return nil
		})
	})
	if err != nil {
		return nil
	}
	return keys
}

func (c *BadgerCatalog) Install(id string, key []relexpr.ScalarExpr) error {
	return c.db.Update(func(txn *badger.Txn) error {
		var existing [][]relexpr.ScalarExpr
		item, err := txn.Get([]byte(badgerKeyPrefix + id))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			// no prior arrangements for id
		case err != nil:
			return err
		default:
			if err := item.Value(func(val []byte) error {
				decoded, err := unmarshalKeys(val)
				if err != nil {
					return err
				}
				existing = decoded
				return nil
			}); err != nil {
				return err
			}
		}

		merged := relexpr.SortDedupKeys(append(existing, key))
		data, err := marshalKeys(merged)
		if err != nil {
			return err
		}
		return txn.Set([]byte(badgerKeyPrefix+id), data)
	})
}

func (c *BadgerCatalog) Snapshot() (map[string][][]relexpr.ScalarExpr, error) {
	out := make(map[string][][]relexpr.ScalarExpr)
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			id := string(item.Key())[len(badgerKeyPrefix):]
			err := item.Value(func(val []byte) error {
				keys, err := unmarshalKeys(val)
				if err != nil {
					return err
				}
				out[id] = keys
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: snapshot failed: %w", err)
	}
	return out, nil
}
