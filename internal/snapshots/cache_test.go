package snapshots

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type memBackend struct {
	mu      sync.Mutex
	entries map[string]Entry
	gets    int
	failPut bool
}

func newMemBackend() *memBackend {
	return &memBackend{entries: make(map[string]Entry)}
}

func (m *memBackend) Get(_ context.Context, id string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	e, ok := m.entries[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (m *memBackend) Put(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut {
		return errors.New("disk full")
	}
	m.entries[e.AttachmentID] = e
	return nil
}

func (m *memBackend) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

type lookupRecorder struct {
	mu      sync.Mutex
	lookups map[string]int
	writes  int
	errors  int
}

func (r *lookupRecorder) ObserveLookup(tier string, hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := tier + "-miss"
	if hit {
		key = tier + "-hit"
	}
	r.lookups[key]++
}

func (r *lookupRecorder) ObserveWrite(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.errors++
	} else {
		r.writes++
	}
}

func TestCacheReadsThroughBackend(t *testing.T) {
	backend := newMemBackend()
	backend.entries["a1"] = Entry{AttachmentID: "a1", Ratio: 0.75}
	rec := &lookupRecorder{lookups: map[string]int{}}
	c := NewCache(backend, time.Minute, rec)

	snap, ok := c.Snapshot("a1")
	if !ok || snap.Ratio != 0.75 || snap.AttachmentID != "a1" {
		t.Fatalf("Snapshot() = %+v, %v", snap, ok)
	}
	if _, ok := c.Snapshot("a1"); !ok {
		t.Fatal("second Snapshot() should hit memory")
	}
	if backend.gets != 1 {
		t.Errorf("backend gets = %d, want 1", backend.gets)
	}
	if rec.lookups["database-hit"] != 1 || rec.lookups["memory-hit"] != 1 {
		t.Errorf("lookups = %v", rec.lookups)
	}
}

func TestCacheRemembersMisses(t *testing.T) {
	backend := newMemBackend()
	c := NewCache(backend, time.Minute, nil)

	for i := 0; i < 3; i++ {
		if _, ok := c.Snapshot("missing"); ok {
			t.Fatal("Snapshot() should miss")
		}
	}
	if backend.gets != 1 {
		t.Errorf("backend gets = %d, want 1", backend.gets)
	}
}

func TestCacheRecordOverridesRememberedMiss(t *testing.T) {
	backend := newMemBackend()
	rec := &lookupRecorder{lookups: map[string]int{}}
	c := NewCache(backend, time.Minute, rec)

	if _, ok := c.Snapshot("a1"); ok {
		t.Fatal("expected miss")
	}
	if err := c.Record(context.Background(), Entry{AttachmentID: "a1", Ratio: 2, Source: "probe"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	snap, ok := c.Snapshot("a1")
	if !ok || snap.Ratio != 2 {
		t.Errorf("Snapshot() = %+v, %v; want ratio 2", snap, ok)
	}
	if _, ok := backend.entries["a1"]; !ok {
		t.Error("Record() should write through to the backend")
	}
	if rec.writes != 1 {
		t.Errorf("writes = %d, want 1", rec.writes)
	}
}

func TestCacheRecordErrors(t *testing.T) {
	backend := newMemBackend()
	backend.failPut = true
	rec := &lookupRecorder{lookups: map[string]int{}}
	c := NewCache(backend, time.Minute, rec)

	if err := c.Record(context.Background(), Entry{AttachmentID: "a1", Ratio: 1}); err == nil {
		t.Error("Record() should surface backend errors")
	}
	if _, ok := c.Snapshot("a1"); ok {
		t.Error("failed write must not populate memory")
	}
	if err := c.Record(context.Background(), Entry{AttachmentID: "a2", Ratio: -1}); !errors.Is(err, ErrInvalidRatio) {
		t.Errorf("Record() with invalid ratio = %v, want ErrInvalidRatio", err)
	}
	if rec.errors != 2 {
		t.Errorf("errors = %d, want 2", rec.errors)
	}
}

func TestCacheMemoryOnly(t *testing.T) {
	c := NewCache(nil, 0, nil)
	if _, ok := c.Snapshot("a1"); ok {
		t.Fatal("empty cache should miss")
	}
	if err := c.Record(context.Background(), Entry{AttachmentID: "a1", Ratio: 1.25}); err != nil {
		t.Fatal(err)
	}
	entry, err := c.Get(context.Background(), "a1")
	if err != nil || entry.Ratio != 1.25 {
		t.Errorf("Get() = %+v, %v", entry, err)
	}
	if err := c.Forget(context.Background(), "a1"); err != nil {
		t.Errorf("Forget() error = %v", err)
	}
	if _, err := c.Get(context.Background(), "a1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Forget error = %v, want ErrNotFound", err)
	}
}

func TestCacheOverSQLite(t *testing.T) {
	store := openTestStore(t)
	c := NewCache(store, time.Minute, nil)
	ctx := context.Background()

	if err := c.Record(ctx, Entry{AttachmentID: "a1", Ratio: 1.6, Width: 1600, Height: 1000}); err != nil {
		t.Fatal(err)
	}

	// A fresh cache over the same database sees the persisted snapshot.
	fresh := NewCache(store, time.Minute, nil)
	snap, ok := fresh.Snapshot("a1")
	if !ok || snap.Ratio != 1.6 {
		t.Errorf("Snapshot() = %+v, %v", snap, ok)
	}
}
