package github_test

import (
	"context"
	"testing"
	"time"

	"depotkit/internal/github"
)

func TestBestPicksMostRecent(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t2.Add(time.Hour)
	results := []*github.RepoResult{
		{Repo: "a", UpdatedAt: t2},
		{Repo: "b", UpdatedAt: t3},
		{Repo: "c", UpdatedAt: t1},
	}
	if best := github.Best(results); best.Repo != "b" {
		t.Fatalf("Best = %q, want b", best.Repo)
	}
}

func TestBestTieKeepsInputOrder(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	results := []*github.RepoResult{
		{Repo: "first", UpdatedAt: ts},
		{Repo: "second", UpdatedAt: ts},
	}
	if best := github.Best(results); best.Repo != "first" {
		t.Fatalf("Best = %q, want first", best.Repo)
	}
}

func TestBestEmpty(t *testing.T) {
	if github.Best(nil) != nil {
		t.Fatal("expected nil for empty input")
	}
}

func TestSearchAllSkipsMissingRepos(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/repos/o/r2/branches/480": "2024-05-01T10:00:00Z",
	})
	defer srv.Close()

	client := github.New(srv.URL, "", testLogger(), github.WithHTTPClient(srv.Client()))
	results := client.SearchAll(context.Background(), "480", []string{"o/r1", "o/r2"})
	if len(results) != 1 || results[0].Repo != "o/r2" {
		t.Fatalf("unexpected results: %+v", results)
	}
}
