// Package codex reads the session logs the Codex CLI keeps under ~/.codex
// into session records. Each log is a jsonl file whose first line carries
// the session metadata; first prompts live separately in history.jsonl.
package codex

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dimitarvdimitrov/ws/internal/snapshot"
)

type sessionMeta struct {
	Type    string `json:"type"`
	Payload struct {
		ID  string `json:"id"`
		CWD string `json:"cwd"`
		Git struct {
			Branch string `json:"branch"`
		} `json:"git"`
	} `json:"payload"`
}

type historyEntry struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// DefaultDir returns the Codex sessions directory for the current user.
func DefaultDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".codex", "sessions")
}

// DefaultHistory returns the Codex prompt history file for the current user.
func DefaultHistory() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".codex", "history.jsonl")
}

// ScanSessions parses every session log under dir, which is laid out as
// year/month/day subdirectories. A missing dir is not an error; logs that
// fail to parse are skipped.
func ScanSessions(dir, historyPath string) ([]snapshot.Session, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*", "*", "*", "*.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("glob session logs: %w", err)
	}

	firstPrompts, err := loadHistory(historyPath)
	if err != nil {
		return nil, err
	}

	var sessions []snapshot.Session
	for _, path := range matches {
		sess, err := parseSessionFile(path)
		if err != nil {
			continue
		}
		sess.FirstPrompt = firstPrompts[sess.ID]
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// loadHistory maps session ids to their first recorded prompt. The history
// file appends one json object per prompt; only the earliest line per
// session counts.
func loadHistory(path string) (map[string]string, error) {
	prompts := make(map[string]string)

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return prompts, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var entry historyEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		if entry.SessionID == "" {
			continue
		}
		if _, ok := prompts[entry.SessionID]; !ok {
			prompts[entry.SessionID] = entry.Text
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return prompts, nil
}

func parseSessionFile(path string) (snapshot.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return snapshot.Session{}, err
	}
	defer f.Close()

	// Only the first line matters; the rest of the log is the transcript.
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		return snapshot.Session{}, fmt.Errorf("empty session log %s", path)
	}

	var meta sessionMeta
	if err := json.Unmarshal(scanner.Bytes(), &meta); err != nil {
		return snapshot.Session{}, fmt.Errorf("parse session log %s: %w", path, err)
	}
	if meta.Type != "session_meta" || meta.Payload.ID == "" {
		return snapshot.Session{}, fmt.Errorf("no session metadata in %s", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return snapshot.Session{}, err
	}

	// Codex records no summaries; the first prompt stands in as the title.
	return snapshot.Session{
		ID:          meta.Payload.ID,
		ProjectPath: meta.Payload.CWD,
		Branch:      meta.Payload.Git.Branch,
		Modified:    info.ModTime(),
		Provider:    snapshot.ProviderCodex,
	}, nil
}
