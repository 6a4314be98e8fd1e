package snapshots

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return store
}

func TestSQLiteStorePutGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	entry := Entry{AttachmentID: "a1", Ratio: 1.5, Width: 1500, Height: 1000, Source: "probe"}
	if err := store.Put(ctx, entry); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Ratio != 1.5 || got.Width != 1500 || got.Height != 1000 || got.Source != "probe" {
		t.Errorf("Get() = %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}

	entry.Ratio = 2
	if err := store.Put(ctx, entry); err != nil {
		t.Fatalf("Put() overwrite error = %v", err)
	}
	got, _ = store.Get(ctx, "a1")
	if got.Ratio != 2 {
		t.Errorf("Ratio after overwrite = %v, want 2", got.Ratio)
	}
}

func TestSQLiteStoreGetMissing(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStoreRejectsInvalidEntries(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, Entry{AttachmentID: "a1", Ratio: 0}); err == nil {
		t.Error("Put() with zero ratio should fail")
	}
	if err := store.Put(ctx, Entry{Ratio: 1}); err == nil {
		t.Error("Put() without id should fail")
	}
}

func TestSQLiteStoreListCountDeletePurge(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Unix(1700000000, 0)
	for i, id := range []string{"a1", "a2", "a3"} {
		entry := Entry{AttachmentID: id, Ratio: 1, UpdatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := store.Put(ctx, entry); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 || entries[0].AttachmentID != "a3" || entries[1].AttachmentID != "a2" {
		t.Errorf("List(2) = %+v, want newest first", entries)
	}

	if n, _ := store.Count(ctx); n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}

	if err := store.Delete(ctx, "a2"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, "a2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}

	purged, err := store.Purge(ctx)
	if err != nil || purged != 2 {
		t.Errorf("Purge() = %d, %v; want 2, nil", purged, err)
	}
	if all, _ := store.List(ctx, 0); len(all) != 0 {
		t.Errorf("List() after purge = %+v", all)
	}
}
