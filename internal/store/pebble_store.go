package store

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/cockroachdb/pebble"

	"etlgen/internal/model"
)

// PebbleStore implements Store using PebbleDB.
type PebbleStore struct {
	db *pebble.DB
}

func NewPebbleStore(dir string) (*PebbleStore, error) {
	opts := &pebble.Options{
		MemTableSize:             64 << 20,
		MaxConcurrentCompactions: func() int { return 2 },
		L0CompactionThreshold:    4,
		L0StopWritesThreshold:    8,
		WALBytesPerSync:          1 << 20,
		WALMinSyncInterval:       func() time.Duration { return 0 },
	}
	d, err := pebble.Open(filepath.Clean(dir), opts)
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleStore{db: d}, nil
}

func (p *PebbleStore) Close() error { return p.db.Close() }

// Put drops any previous rows of dataset and writes records in one batch.
func (p *PebbleStore) Put(dataset string, records []model.Record) error {
	pfx := prefix(dataset)
	wb := p.db.NewBatch()
	defer wb.Close()

	if err := wb.DeleteRange(pfx, upperBound(pfx), nil); err != nil {
		return fmt.Errorf("delete range: %w", err)
	}
	for i, r := range records {
		val, err := encodeRecord(r)
		if err != nil {
			return fmt.Errorf("encode row %d: %w", i, err)
		}
		if err := wb.Set(rowKey(dataset, i), val, nil); err != nil {
			return fmt.Errorf("set row %d: %w", i, err)
		}
	}
	if err := wb.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (p *PebbleStore) Load(dataset string) ([]model.Record, error) {
	pfx := prefix(dataset)
	it, err := p.db.NewIter(&pebble.IterOptions{LowerBound: pfx, UpperBound: upperBound(pfx)})
	if err != nil {
		return nil, fmt.Errorf("iter: %w", err)
	}
	defer it.Close()

	var out []model.Record
	for it.First(); it.Valid(); it.Next() {
		r, err := decodeRecord(it.Value())
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", it.Key(), err)
		}
		out = append(out, r)
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, dataset)
	}
	return out, nil
}
