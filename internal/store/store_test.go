package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/dimitarvdimitrov/ws/internal/snapshot"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ws.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSnapshot() *snapshot.Snapshot {
	now := time.Unix(1756600000, 0)
	return &snapshot.Snapshot{
		Repos: []snapshot.Repo{
			{
				Path:      "/home/u/proj",
				Name:      "proj",
				ScannedAt: now,
				Worktrees: []snapshot.Worktree{
					{Path: "/home/u/proj", Branch: "main"},
					{Path: "/home/u/proj-feat", Branch: "feat", Dirty: true},
				},
			},
		},
		Sessions: []snapshot.Session{
			{ID: "s1", ProjectPath: "/home/u/proj", Branch: "main", Summary: "login", Modified: now, Provider: snapshot.ProviderClaude},
			{ID: "s2", ProjectPath: "/home/u/proj", Branch: "feat", FirstPrompt: "fix tests", Modified: now.Add(-time.Hour), Provider: snapshot.ProviderCodex},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	if err := s.Save(sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Repos) != 1 {
		t.Fatalf("expected 1 repo, got %d", len(got.Repos))
	}
	repo := got.Repos[0]
	if repo.Name != "proj" || len(repo.Worktrees) != 2 {
		t.Fatalf("repo loaded wrong: %+v", repo)
	}
	var feat snapshot.Worktree
	for _, wt := range repo.Worktrees {
		if wt.Branch == "feat" {
			feat = wt
		}
	}
	if !feat.Dirty || feat.Paused {
		t.Errorf("feat worktree flags lost: %+v", feat)
	}
	if len(got.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(got.Sessions))
	}
	if got.Sessions[0].ID != "s1" {
		t.Errorf("sessions should load newest first, got %s", got.Sessions[0].ID)
	}
	if got.Sessions[0].Provider != snapshot.ProviderClaude || got.Sessions[1].Provider != snapshot.ProviderCodex {
		t.Errorf("providers lost in round trip: %s, %s", got.Sessions[0].Provider, got.Sessions[1].Provider)
	}
}

func TestSaveSweepsStaleEntries(t *testing.T) {
	s := openTestStore(t)
	if err := s.Save(sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}

	next := &snapshot.Snapshot{
		Repos: []snapshot.Repo{
			{
				Path: "/home/u/other", Name: "other", ScannedAt: time.Now(),
				Worktrees: []snapshot.Worktree{{Path: "/home/u/other", Branch: "main"}},
			},
		},
		Sessions: []snapshot.Session{
			{ID: "s2", ProjectPath: "/home/u/proj", Branch: "feat", Modified: time.Now()},
		},
	}
	if err := s.Save(next); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Repos) != 1 || got.Repos[0].Path != "/home/u/other" {
		t.Fatalf("stale repo not swept: %+v", got.Repos)
	}
	if len(got.Sessions) != 1 || got.Sessions[0].ID != "s2" {
		t.Fatalf("stale session not swept: %+v", got.Sessions)
	}
}

func TestSaveEmptySnapshotClearsStore(t *testing.T) {
	s := openTestStore(t)
	if err := s.Save(sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(&snapshot.Snapshot{}); err != nil {
		t.Fatalf("empty save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Repos) != 0 || len(got.Sessions) != 0 {
		t.Fatalf("store not cleared: %d repos, %d sessions", len(got.Repos), len(got.Sessions))
	}
}

func TestLoadEmptyStore(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Repos) != 0 || len(got.Sessions) != 0 {
		t.Fatal("fresh store should be empty")
	}
}
