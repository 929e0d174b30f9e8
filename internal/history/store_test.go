package history_test

import (
	"context"
	"path/filepath"
	"testing"

	"depotkit/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	runID, err := store.BeginRun(ctx, "script", "mirror", "github")
	if err != nil {
		t.Fatal(err)
	}
	if runID == "" {
		t.Fatal("empty run id")
	}

	items := []history.Item{
		{AppID: "480", Status: history.StatusOK, KeyCount: 2, ManifestCount: 3},
		{AppID: "999", Status: history.StatusFailed, Detail: "no branch found"},
	}
	for _, it := range items {
		if err := store.RecordItem(ctx, runID, it); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.FinishRun(ctx, runID); err != nil {
		t.Fatal(err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	if runs[0].ID != runID || runs[0].Mode != "script" || runs[0].FinishedAt.IsZero() {
		t.Fatalf("unexpected run: %+v", runs[0])
	}

	got, err := store.Items(ctx, runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("items = %d, want 2", len(got))
	}
	if got[0].AppID != "480" || got[0].Status != history.StatusOK || got[0].ManifestCount != 3 {
		t.Fatalf("first item: %+v", got[0])
	}
	if got[1].Status != history.StatusFailed || got[1].Detail != "no branch found" {
		t.Fatalf("second item: %+v", got[1])
	}
}

func TestItemsAcceptsIDPrefix(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	runID, err := store.BeginRun(ctx, "filedrop", "direct", "archive:cysaw")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.RecordItem(ctx, runID, history.Item{AppID: "480", Status: history.StatusOK}); err != nil {
		t.Fatal(err)
	}

	short := history.ShortID(runID)
	items, err := store.Items(ctx, short)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("items by prefix = %d, want 1", len(items))
	}
}

func TestReopenExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	runID, err := store.BeginRun(context.Background(), "script", "mirror", "github")
	if err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = history.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	runs, err := store.RecentRuns(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != runID {
		t.Fatalf("reopened runs = %+v", runs)
	}
}
