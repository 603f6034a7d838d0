package scores

import (
	"context"
	"errors"
	"testing"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	submissions := []Score{
		{BoardID: "animals", PlayID: "a", ElapsedMs: 42000, CardCount: 16},
		{BoardID: "animals", PlayID: "b", ElapsedMs: 31000, CardCount: 16},
		{BoardID: "capitals", PlayID: "c", ElapsedMs: 10000, CardCount: 24},
		{BoardID: "animals", PlayID: "d", ElapsedMs: 55000, CardCount: 16},
	}
	for i := range submissions {
		if err := store.Submit(ctx, &submissions[i]); err != nil {
			t.Fatalf("Submit(%d): %v", i, err)
		}
		if submissions[i].ID == 0 {
			t.Errorf("Submit(%d) did not assign an ID", i)
		}
	}

	top, err := store.Top(ctx, "animals", 2)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("Top returned %d rows, want 2", len(top))
	}
	if top[0].PlayID != "b" || top[1].PlayID != "a" {
		t.Errorf("Top order = %s,%s, want b,a", top[0].PlayID, top[1].PlayID)
	}

	all, err := store.Top(ctx, "animals", 0)
	if err != nil || len(all) != 3 {
		t.Errorf("Top without limit = %d rows (err %v), want 3", len(all), err)
	}

	none, err := store.Top(ctx, "unknown", 10)
	if err != nil || len(none) != 0 {
		t.Errorf("Top(unknown) = %v, %v", none, err)
	}

	n, err := store.Count(ctx)
	if err != nil || n != 4 {
		t.Errorf("Count = %d (err %v), want 4", n, err)
	}

	for _, bad := range []*Score{nil, {BoardID: ""}, {BoardID: "x", ElapsedMs: -1}} {
		if err := store.Submit(ctx, bad); !errors.Is(err, ErrInvalidScore) {
			t.Errorf("Submit(%+v) err = %v, want ErrInvalidScore", bad, err)
		}
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestGormStoreSQLite(t *testing.T) {
	store, err := Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()
	exerciseStore(t, store)
}

func TestOpen(t *testing.T) {
	for _, driver := range []string{"", "memory", "MEMORY"} {
		store, err := Open(driver, "")
		if err != nil {
			t.Errorf("Open(%q): %v", driver, err)
			continue
		}
		if _, ok := store.(*MemoryStore); !ok {
			t.Errorf("Open(%q) = %T, want *MemoryStore", driver, store)
		}
	}
	if _, err := Open("mongo", ""); err == nil {
		t.Error("expected error for unknown driver")
	}
}
