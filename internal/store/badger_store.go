package store

import (
	"fmt"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"

	"etlgen/internal/model"
)

// BadgerStore implements Store using BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(filepath.Clean(dir)).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger open: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (b *BadgerStore) Close() error { return b.db.Close() }

// Put drops any previous rows of dataset, then streams records through a
// write batch so large datasets do not hit the transaction size limit.
func (b *BadgerStore) Put(dataset string, records []model.Record) error {
	if err := b.db.DropPrefix(prefix(dataset)); err != nil {
		return fmt.Errorf("drop prefix: %w", err)
	}
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for i, r := range records {
		val, err := encodeRecord(r)
		if err != nil {
			return fmt.Errorf("encode row %d: %w", i, err)
		}
		if err := wb.Set(rowKey(dataset, i), val); err != nil {
			return fmt.Errorf("set row %d: %w", i, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func (b *BadgerStore) Load(dataset string) ([]model.Record, error) {
	pfx := prefix(dataset)
	var out []model.Record
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = pfx
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(pfx); it.ValidForPrefix(pfx); it.Next() {
			item := it.Item()
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			r, err := decodeRecord(v)
			if err != nil {
				return fmt.Errorf("decode %s: %w", item.Key(), err)
			}
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, dataset)
	}
	return out, nil
}
