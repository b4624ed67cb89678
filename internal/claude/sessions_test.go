package claude

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleIndex = `{
  "entries": [
    {
      "sessionId": "abc-123",
      "projectPath": "/home/u/proj",
      "gitBranch": "main",
      "summary": "Add login flow",
      "firstPrompt": "implement login",
      "modified": "2026-08-30T10:00:00Z",
      "messageCount": 42
    },
    {
      "sessionId": "def-456",
      "projectPath": "/home/u/proj",
      "gitBranch": "",
      "firstPrompt": "fix the tests",
      "modified": "not-a-date"
    },
    {
      "sessionId": "",
      "projectPath": "/home/u/proj"
    }
  ]
}`

func TestParseIndex(t *testing.T) {
	sessions, err := parseIndex([]byte(sampleIndex))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions (empty id dropped), got %d", len(sessions))
	}

	s := sessions[0]
	if s.ID != "abc-123" || s.Branch != "main" || s.Messages != 42 {
		t.Errorf("first session parsed wrong: %+v", s)
	}
	if s.Modified.IsZero() {
		t.Error("modified timestamp not parsed")
	}
	if s.Title() != "Add login flow" {
		t.Errorf("title should prefer summary: %q", s.Title())
	}

	if !sessions[1].Modified.IsZero() {
		t.Error("unparseable timestamp should be zero")
	}
	if sessions[1].Title() != "fix the tests" {
		t.Errorf("title should fall back to first prompt: %q", sessions[1].Title())
	}
}

func TestScanSessions(t *testing.T) {
	dir := t.TempDir()
	proj := filepath.Join(dir, "-home-u-proj")
	if err := os.MkdirAll(proj, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(proj, "sessions-index.json"), []byte(sampleIndex), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	// A broken index in a second project must not fail the scan.
	broken := filepath.Join(dir, "-home-u-other")
	if err := os.MkdirAll(broken, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(broken, "sessions-index.json"), []byte("{"), 0o644); err != nil {
		t.Fatalf("write broken index: %v", err)
	}

	sessions, err := ScanSessions(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
}

func TestScanSessionsMissingDir(t *testing.T) {
	sessions, err := ScanSessions(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("scan of missing dir should not fail: %v", err)
	}
	if sessions != nil {
		t.Fatalf("expected no sessions, got %d", len(sessions))
	}
}
