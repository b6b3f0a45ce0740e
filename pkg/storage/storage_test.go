package storage

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sw33tLie/biliguard/pkg/enrich"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func changeTypes(changes []Change) []string {
	var out []string
	for _, c := range changes {
		out = append(out, c.ChangeType+":"+c.UID)
	}
	return out
}

func TestSyncBlacklist(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := EntriesFromBlacklist("me", enrich.Blacklist{Entries: []enrich.BlacklistEntry{
		{Name: "X", ID: "1"}, {Name: "Y", ID: "2"}, {Name: "Y", ID: "2"},
	}})
	changes, err := db.SyncBlacklist(ctx, "me", first)
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if got, want := changeTypes(changes), []string{"added:1", "added:2"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}

	// Same snapshot again is a no-op.
	changes, err = db.SyncBlacklist(ctx, "me", first)
	if err != nil || len(changes) != 0 {
		t.Fatalf("expected no changes, got %v (%v)", changes, err)
	}

	second := []Entry{{Account: "me", UID: "2", Name: "Y2"}, {Account: "me", UID: "3", Name: "Z"}}
	changes, err = db.SyncBlacklist(ctx, "me", second)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if got, want := changeTypes(changes), []string{"renamed:2", "added:3", "removed:1"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}

	entries, err := db.ListEntries(ctx, "me")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !reflect.DeepEqual(entries, second) {
		t.Fatalf("want %v, got %v", second, entries)
	}

	recent, err := db.ListRecentChanges(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if got, want := changeTypes(recent), []string{"removed:1", "added:3"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	if recent[0].Name != "X" || recent[0].OccurredAt.IsZero() {
		t.Fatalf("unexpected change %+v", recent[0])
	}
}

func TestSyncBlacklistKeepsAccountsApart(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.SyncBlacklist(ctx, "a", []Entry{{UID: "1", Name: "X"}}); err != nil {
		t.Fatalf("sync a: %v", err)
	}
	if _, err := db.SyncBlacklist(ctx, "b", nil); err != nil {
		t.Fatalf("sync b: %v", err)
	}
	if _, err := db.SyncBlacklist(ctx, "", nil); err == nil {
		t.Fatalf("expected error for empty account")
	}

	stats, err := db.GetStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := []AccountStats{{Account: "a", BlockedCount: 1, AddedCount: 1}}
	if !reflect.DeepEqual(stats, want) {
		t.Fatalf("want %+v, got %+v", want, stats)
	}
}
