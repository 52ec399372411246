package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"etlgen/internal/model"
)

func sampleRecords(n int) []model.Record {
	out := make([]model.Record, n)
	for i := range out {
		out[i] = model.Record{
			CustomerID:    fmt.Sprintf("CUST_%d", 1000+i),
			Product:       "Tea",
			Category:      model.Str("Food & Beverages"),
			Quantity:      1 + i%10,
			UnitPrice:     12.34,
			OrderDate:     time.Date(2025, 1, 1+i%28, 0, 0, 0, 0, time.UTC),
			Region:        model.Str("Europe"),
			PaymentMethod: model.Str("Cash"),
		}
	}
	out[0].Region = nil
	return out
}

// exerciseStore checks the contract every backend must satisfy.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	if _, err := s.Load("raw_data"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound before Put, got %v", err)
	}

	recs := sampleRecords(25)
	if err := s.Put("raw_data", recs); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put("raw_data_other", sampleRecords(3)); err != nil {
		t.Fatalf("put other: %v", err)
	}

	got, err := s.Load("raw_data")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(recs) {
		t.Fatalf("len=%d want %d", len(got), len(recs))
	}
	for i := range recs {
		if got[i].CustomerID != recs[i].CustomerID || !got[i].OrderDate.Equal(recs[i].OrderDate) {
			t.Fatalf("row %d mismatch: %+v vs %+v", i, got[i], recs[i])
		}
	}
	if got[0].Region != nil {
		t.Fatalf("null region should survive storage, got %q", *got[0].Region)
	}

	// Put replaces rather than merges
	if err := s.Put("raw_data", sampleRecords(4)); err != nil {
		t.Fatalf("re-put: %v", err)
	}
	got, err = s.Load("raw_data")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("after replace len=%d want 4", len(got))
	}
	other, err := s.Load("raw_data_other")
	if err != nil || len(other) != 3 {
		t.Fatalf("sibling dataset disturbed: len=%d err=%v", len(other), err)
	}
}

func TestInMemoryStore_Contract(t *testing.T) {
	exerciseStore(t, NewInMemoryStore())
}

func TestPebbleStore_Contract(t *testing.T) {
	st, err := NewPebbleStore(t.TempDir())
	if err != nil {
		t.Fatalf("pebble open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	exerciseStore(t, st)
}

func TestBadgerStore_Contract(t *testing.T) {
	st, err := NewBadgerStore(t.TempDir())
	if err != nil {
		t.Fatalf("badger open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	exerciseStore(t, st)
}

func TestPebbleStore_ReopenKeepsRows(t *testing.T) {
	dir := t.TempDir()
	st, err := NewPebbleStore(dir)
	if err != nil {
		t.Fatalf("pebble open: %v", err)
	}
	if err := st.Put("raw_data", sampleRecords(12)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	st, err = NewPebbleStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	got, err := st.Load("raw_data")
	if err != nil || len(got) != 12 {
		t.Fatalf("after reopen len=%d err=%v", len(got), err)
	}
}

func TestInMemoryStore_IsolatedCopies(t *testing.T) {
	s := NewInMemoryStore()
	recs := sampleRecords(2)
	_ = s.Put("d", recs)
	*recs[1].Category = "Books"

	got, _ := s.Load("d")
	if *got[1].Category != "Food & Beverages" {
		t.Fatalf("store aliased caller slice: %q", *got[1].Category)
	}
}

func TestInMemoryStore_ConcurrentPuts(t *testing.T) {
	s := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("d%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Put(name, sampleRecords(10)); err != nil {
				t.Errorf("put: %v", err)
			}
		}()
	}
	wg.Wait()
	for i := 0; i < 8; i++ {
		if got, err := s.Load(fmt.Sprintf("d%d", i)); err != nil || len(got) != 10 {
			t.Fatalf("d%d: len=%d err=%v", i, len(got), err)
		}
	}
}

func TestOpen(t *testing.T) {
	s, err := Open("none", "")
	if err != nil || s != nil {
		t.Fatalf("none: store=%v err=%v", s, err)
	}
	if _, err := Open("redis", ""); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	s, err = Open("memory", "")
	if err != nil || s == nil {
		t.Fatalf("memory: store=%v err=%v", s, err)
	}
}
