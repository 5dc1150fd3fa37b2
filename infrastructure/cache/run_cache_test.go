package cache

import (
	"testing"
	"time"
)

func TestRunCache_AddFindDelete(t *testing.T) {
	c := NewRunCache(time.Hour, 4)
	c.AddRun(Run{ID: "a", Files: []string{"export.xlsx"}, Workbook: []byte("xlsx")})

	r, ok := c.FindRunByID("a")
	if !ok {
		t.Fatalf("expected run a")
	}
	if string(r.Workbook) != "xlsx" || r.CreatedAt.IsZero() {
		t.Fatalf("unexpected run %+v", r)
	}

	c.DeleteRunByID("a")
	if _, ok := c.FindRunByID("a"); ok {
		t.Fatalf("expected run a deleted")
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Len())
	}
}

func TestRunCache_Expiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	c := NewRunCache(10*time.Minute, 4)
	c.now = func() time.Time { return now }

	c.AddRun(Run{ID: "old"})
	now = now.Add(11 * time.Minute)
	if _, ok := c.FindRunByID("old"); ok {
		t.Fatalf("expected expired run to be hidden")
	}

	c.AddRun(Run{ID: "new"})
	if c.Len() != 1 {
		t.Fatalf("expected expired run purged on add, len=%d", c.Len())
	}
	if _, ok := c.FindRunByID("new"); !ok {
		t.Fatalf("expected run new")
	}
}

func TestRunCache_EvictsOldestAtCapacity(t *testing.T) {
	c := NewRunCache(time.Hour, 2)
	c.AddRun(Run{ID: "1"})
	c.AddRun(Run{ID: "2"})
	c.AddRun(Run{ID: "3"})

	if _, ok := c.FindRunByID("1"); ok {
		t.Fatalf("expected oldest run evicted")
	}
	for _, id := range []string{"2", "3"} {
		if _, ok := c.FindRunByID(id); !ok {
			t.Fatalf("expected run %s kept", id)
		}
	}
}
