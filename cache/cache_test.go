package cache

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("OpenPath() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestListRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	countries := []string{"Germany", "Albania", "United_States"}
	if err := store.PutList(ctx, KindCountries, countries); err != nil {
		t.Fatalf("PutList() error = %v", err)
	}

	got, err := store.GetList(ctx, KindCountries)
	if err != nil {
		t.Fatalf("GetList() error = %v", err)
	}

	want := []string{"Albania", "Germany", "United_States"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetList() = %v, want %v", got, want)
	}
}

func TestPutListReplaces(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.PutList(ctx, KindGroups, []string{"P2P", "Onion_Over_VPN"}); err != nil {
		t.Fatalf("PutList() error = %v", err)
	}
	if err := store.PutList(ctx, KindGroups, []string{"P2P"}); err != nil {
		t.Fatalf("PutList() error = %v", err)
	}

	got, err := store.GetList(ctx, KindGroups)
	if err != nil {
		t.Fatalf("GetList() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"P2P"}) {
		t.Errorf("GetList() = %v, want [P2P]", got)
	}
}

func TestListKindsIsolated(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.PutList(ctx, KindCountries, []string{"Germany"}); err != nil {
		t.Fatalf("PutList() error = %v", err)
	}

	groups, err := store.GetList(ctx, KindGroups)
	if err != nil {
		t.Fatalf("GetList() error = %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("GetList(groups) = %v, want empty", groups)
	}
}

func TestCityListsPerCountry(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.PutList(ctx, KindCities("Germany"), []string{"Berlin", "Frankfurt"}); err != nil {
		t.Fatalf("PutList() error = %v", err)
	}
	if err := store.PutList(ctx, KindCities("Poland"), []string{"Warsaw"}); err != nil {
		t.Fatalf("PutList() error = %v", err)
	}

	got, err := store.GetList(ctx, KindCities("germany"))
	if err != nil {
		t.Fatalf("GetList() error = %v", err)
	}
	want := []string{"Berlin", "Frankfurt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetList() = %v, want %v", got, want)
	}
}

func TestGetListEmpty(t *testing.T) {
	store := openTestStore(t)

	got, err := store.GetList(context.Background(), KindCountries)
	if err != nil {
		t.Fatalf("GetList() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("GetList() = %v, want empty", got)
	}
}

func TestConnectionHistory(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.RecordConnection(ctx, "United_States", "us1234", "United States"); err != nil {
		t.Fatalf("RecordConnection() error = %v", err)
	}
	if err := store.RecordConnection(ctx, "Germany", "de42", "Germany"); err != nil {
		t.Fatalf("RecordConnection() error = %v", err)
	}

	entries, err := store.RecentConnections(ctx, 10)
	if err != nil {
		t.Fatalf("RecentConnections() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	// Newest first.
	if entries[0].Target != "Germany" {
		t.Errorf("entries[0].Target = %q, want Germany", entries[0].Target)
	}
	if entries[1].ServerID != "us1234" {
		t.Errorf("entries[1].ServerID = %q, want us1234", entries[1].ServerID)
	}
}

func TestRecentConnectionsLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.RecordConnection(ctx, "Germany", "de42", "Germany"); err != nil {
			t.Fatalf("RecordConnection() error = %v", err)
		}
	}

	entries, err := store.RecentConnections(ctx, 3)
	if err != nil {
		t.Fatalf("RecentConnections() error = %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("got %d entries, want 3", len(entries))
	}
}

func TestRecentTargets(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	records := []struct{ target, serverID, country string }{
		{"United_States", "us1234", "United States"},
		{"", "ca55", "Canada"}, // quick connect
		{"Germany", "de42", "Germany"},
		{"United_States", "us9", "United States"},
	}
	for _, r := range records {
		if err := store.RecordConnection(ctx, r.target, r.serverID, r.country); err != nil {
			t.Fatalf("RecordConnection() error = %v", err)
		}
	}

	targets, err := store.RecentTargets(ctx, 5)
	if err != nil {
		t.Fatalf("RecentTargets() error = %v", err)
	}

	// Deduplicated, most recent first, quick connects skipped.
	want := []string{"United_States", "Germany"}
	if !reflect.DeepEqual(targets, want) {
		t.Errorf("RecentTargets() = %v, want %v", targets, want)
	}
}

func TestRecentTargetsLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, target := range []string{"Albania", "Germany", "Poland"} {
		if err := store.RecordConnection(ctx, target, "", target); err != nil {
			t.Fatalf("RecordConnection() error = %v", err)
		}
	}

	targets, err := store.RecentTargets(ctx, 2)
	if err != nil {
		t.Fatalf("RecentTargets() error = %v", err)
	}
	if len(targets) != 2 {
		t.Errorf("got %d targets, want 2", len(targets))
	}
}

func TestPruneHistory(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.RecordConnection(ctx, "Germany", "de42", "Germany"); err != nil {
		t.Fatalf("RecordConnection() error = %v", err)
	}

	// Everything is newer than the cutoff, nothing is removed.
	if err := store.PruneHistory(ctx, 24*time.Hour); err != nil {
		t.Fatalf("PruneHistory() error = %v", err)
	}
	entries, err := store.RecentConnections(ctx, 10)
	if err != nil {
		t.Fatalf("RecentConnections() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d entries, want 1", len(entries))
	}

	// A cutoff in the future removes everything.
	if err := store.PruneHistory(ctx, -time.Minute); err != nil {
		t.Fatalf("PruneHistory() error = %v", err)
	}
	entries, err = store.RecentConnections(ctx, 10)
	if err != nil {
		t.Fatalf("RecentConnections() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries after prune, want 0", len(entries))
	}
}
