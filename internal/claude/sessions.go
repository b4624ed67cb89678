// Package claude reads the per-project session indexes Claude Code maintains
// under ~/.claude/projects into session records.
package claude

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dimitarvdimitrov/ws/internal/snapshot"
)

type indexFile struct {
	Entries []indexEntry `json:"entries"`
}

type indexEntry struct {
	SessionID    string `json:"sessionId"`
	ProjectPath  string `json:"projectPath"`
	GitBranch    string `json:"gitBranch"`
	Summary      string `json:"summary"`
	FirstPrompt  string `json:"firstPrompt"`
	Modified     string `json:"modified"`
	MessageCount int    `json:"messageCount"`
}

// DefaultDir returns the Claude projects directory for the current user.
func DefaultDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "projects")
}

// ScanSessions parses every sessions-index.json under dir. A missing dir is
// not an error; individually unreadable index files are skipped.
func ScanSessions(dir string) ([]snapshot.Session, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*", "sessions-index.json"))
	if err != nil {
		return nil, fmt.Errorf("glob session indexes: %w", err)
	}

	var sessions []snapshot.Session
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		parsed, err := parseIndex(data)
		if err != nil {
			continue
		}
		sessions = append(sessions, parsed...)
	}
	return sessions, nil
}

func parseIndex(data []byte) ([]snapshot.Session, error) {
	var idx indexFile
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse sessions index: %w", err)
	}

	sessions := make([]snapshot.Session, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		if e.SessionID == "" {
			continue
		}
		modified, err := time.Parse(time.RFC3339, e.Modified)
		if err != nil {
			modified = time.Time{}
		}
		sessions = append(sessions, snapshot.Session{
			ID:          e.SessionID,
			ProjectPath: e.ProjectPath,
			Branch:      e.GitBranch,
			Summary:     e.Summary,
			FirstPrompt: e.FirstPrompt,
			Modified:    modified,
			Messages:    e.MessageCount,
			Provider:    snapshot.ProviderClaude,
		})
	}
	return sessions, nil
}
