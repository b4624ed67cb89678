package claude

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeIndex(t *testing.T, dir string, idx migrateIndex) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	data, err := json.Marshal(idx)
	if err != nil {
		t.Fatalf("marshal index: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sessions-index.json"), data, 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
}

func readIndex(t *testing.T, dir string) migrateIndex {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "sessions-index.json"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	var idx migrateIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		t.Fatalf("parse index: %v", err)
	}
	return idx
}

func TestMigrateSession(t *testing.T) {
	projects := t.TempDir()
	sourcePath := "/home/u/proj"
	targetPath := "/home/u/proj-feat"
	sourceDir := filepath.Join(projects, ProjectDirName(sourcePath))
	targetDir := filepath.Join(projects, ProjectDirName(targetPath))

	writeIndex(t, sourceDir, migrateIndex{Entries: []migrateEntry{
		{
			SessionID:   "abc-123",
			FullPath:    filepath.Join(sourceDir, "abc-123.jsonl"),
			ProjectPath: sourcePath,
			GitBranch:   "feat",
			Summary:     "login flow",
			Modified:    "2026-08-30T10:00:00Z",
		},
		{SessionID: "keep-me", ProjectPath: sourcePath, Modified: "2026-08-30T09:00:00Z"},
	}})
	if err := os.WriteFile(filepath.Join(sourceDir, "abc-123.jsonl"), []byte("transcript\n"), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}

	if err := MigrateSession(projects, "abc-123", sourcePath, targetPath); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if _, err := os.Stat(filepath.Join(sourceDir, "abc-123.jsonl")); !os.IsNotExist(err) {
		t.Error("transcript left behind in source dir")
	}
	if _, err := os.Stat(filepath.Join(targetDir, "abc-123.jsonl")); err != nil {
		t.Errorf("transcript not moved: %v", err)
	}

	source := readIndex(t, sourceDir)
	if len(source.Entries) != 1 || source.Entries[0].SessionID != "keep-me" {
		t.Errorf("source index wrong after migrate: %+v", source.Entries)
	}

	target := readIndex(t, targetDir)
	if len(target.Entries) != 1 {
		t.Fatalf("target index wrong: %+v", target.Entries)
	}
	e := target.Entries[0]
	if e.SessionID != "abc-123" || e.ProjectPath != targetPath {
		t.Errorf("entry not rewritten for the target: %+v", e)
	}
	if e.FullPath != filepath.Join(targetDir, "abc-123.jsonl") {
		t.Errorf("fullPath not rewritten: %s", e.FullPath)
	}
	if e.Summary != "login flow" || e.GitBranch != "feat" {
		t.Errorf("entry fields lost in migration: %+v", e)
	}
}

func TestMigrateSessionMissingTranscript(t *testing.T) {
	projects := t.TempDir()
	if err := MigrateSession(projects, "nope", "/home/u/a", "/home/u/b"); err == nil {
		t.Fatal("expected error for missing transcript")
	}
}

func TestMigrateSessionNotInIndex(t *testing.T) {
	projects := t.TempDir()
	sourceDir := filepath.Join(projects, ProjectDirName("/home/u/a"))
	writeIndex(t, sourceDir, migrateIndex{})
	if err := os.WriteFile(filepath.Join(sourceDir, "abc.jsonl"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}

	err := MigrateSession(projects, "abc", "/home/u/a", "/home/u/b")
	if err == nil {
		t.Fatal("expected error for unindexed session")
	}
	// The transcript must not move when the index has no entry to carry over.
	if _, statErr := os.Stat(filepath.Join(sourceDir, "abc.jsonl")); statErr != nil {
		t.Errorf("transcript moved despite failed migration: %v", statErr)
	}
}
