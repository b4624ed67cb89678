package codex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dimitarvdimitrov/ws/internal/snapshot"
)

const sampleMeta = `{"type":"session_meta","payload":{"id":"abc-123","cwd":"/home/u/proj","git":{"branch":"main"}}}`

func writeSessionLog(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestScanSessions(t *testing.T) {
	dir := t.TempDir()
	day := filepath.Join(dir, "2026", "08", "30")
	writeSessionLog(t, day, "rollout-abc.jsonl", sampleMeta+"\n"+`{"type":"message"}`+"\n")
	// Logs that do not start with session metadata are skipped.
	writeSessionLog(t, day, "rollout-bad.jsonl", `{"type":"message"}`+"\n")
	writeSessionLog(t, day, "rollout-empty.jsonl", "")

	history := filepath.Join(dir, "history.jsonl")
	lines := `{"session_id":"abc-123","text":"first prompt"}` + "\n" +
		`{"session_id":"abc-123","text":"second prompt"}` + "\n" +
		"not json\n"
	if err := os.WriteFile(history, []byte(lines), 0o644); err != nil {
		t.Fatalf("write history: %v", err)
	}

	sessions, err := ScanSessions(dir, history)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}

	s := sessions[0]
	if s.ID != "abc-123" || s.ProjectPath != "/home/u/proj" || s.Branch != "main" {
		t.Errorf("session parsed wrong: %+v", s)
	}
	if s.Provider != snapshot.ProviderCodex {
		t.Errorf("provider wrong: %q", s.Provider)
	}
	if s.Modified.IsZero() {
		t.Error("modified should come from the log's mtime")
	}
	// Codex has no summaries; the earliest history line titles the session.
	if s.Title() != "first prompt" {
		t.Errorf("title wrong: %q", s.Title())
	}
}

func TestScanSessionsMissingHistory(t *testing.T) {
	dir := t.TempDir()
	writeSessionLog(t, filepath.Join(dir, "2026", "08", "30"), "rollout-abc.jsonl", sampleMeta+"\n")

	sessions, err := ScanSessions(dir, filepath.Join(dir, "no-history.jsonl"))
	if err != nil {
		t.Fatalf("scan without history should not fail: %v", err)
	}
	if len(sessions) != 1 || sessions[0].FirstPrompt != "" {
		t.Fatalf("expected 1 untitled session, got %+v", sessions)
	}
}

func TestScanSessionsMissingDir(t *testing.T) {
	sessions, err := ScanSessions(filepath.Join(t.TempDir(), "nope"), "")
	if err != nil {
		t.Fatalf("scan of missing dir should not fail: %v", err)
	}
	if sessions != nil {
		t.Fatalf("expected no sessions, got %d", len(sessions))
	}
}
