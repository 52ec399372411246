package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"etlgen/internal/model"
)

// Store keeps whole datasets addressed by name. Row order is preserved:
// Load returns records in the order they were Put.
type Store interface {
	Put(dataset string, records []model.Record) error
	Load(dataset string) ([]model.Record, error)
	Close() error
}

// ErrNotFound is returned by Load when a dataset has never been stored.
var ErrNotFound = errors.New("dataset not found")

// Open returns the store named by backend. "none" yields (nil, nil).
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "", "none":
		return nil, nil
	case "memory":
		return NewInMemoryStore(), nil
	case "pebble":
		s, err := NewPebbleStore(dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "badger":
		s, err := NewBadgerStore(dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// rowKey is dataset/<zero-padded index> so byte order equals row order.
func rowKey(dataset string, i int) []byte {
	return []byte(fmt.Sprintf("%s/%010d", dataset, i))
}

func prefix(dataset string) []byte {
	return []byte(dataset + "/")
}

// upperBound is the smallest key greater than every key with p as prefix.
func upperBound(p []byte) []byte {
	end := append([]byte(nil), p...)
	end[len(end)-1]++
	return end
}

func encodeRecord(r model.Record) ([]byte, error) { return json.Marshal(r) }
func decodeRecord(val []byte) (model.Record, error) {
	var r model.Record
	if err := json.Unmarshal(val, &r); err != nil {
		return model.Record{}, err
	}
	return r, nil
}

// InMemoryStore is a simple thread-safe map store.
type InMemoryStore struct {
	mu   sync.RWMutex
	data map[string][]model.Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: make(map[string][]model.Record)}
}

// Put replaces the dataset with a private copy of records.
func (s *InMemoryStore) Put(dataset string, records []model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[dataset] = model.CloneAll(records)
	return nil
}

func (s *InMemoryStore) Load(dataset string) ([]model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs, ok := s.data[dataset]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, dataset)
	}
	return model.CloneAll(recs), nil
}

func (s *InMemoryStore) Close() error { return nil }
