package claude

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// migrateEntry mirrors a sessions-index.json entry with every field Claude
// writes, so moving an entry between indexes never drops data.
type migrateEntry struct {
	SessionID    string `json:"sessionId"`
	FullPath     string `json:"fullPath"`
	ProjectPath  string `json:"projectPath"`
	GitBranch    string `json:"gitBranch,omitempty"`
	Summary      string `json:"summary,omitempty"`
	FirstPrompt  string `json:"firstPrompt,omitempty"`
	Modified     string `json:"modified"`
	MessageCount int    `json:"messageCount,omitempty"`
}

type migrateIndex struct {
	Entries []migrateEntry `json:"entries"`
}

// ProjectDirName converts a worktree path to the directory name Claude keys
// its per-project data by, e.g. /home/d/proj -> -home-d-proj.
func ProjectDirName(path string) string {
	return strings.ReplaceAll(path, "/", "-")
}

// MigrateSession moves a session's transcript and index entry from the
// source worktree's project directory to the target's, so resuming the
// session from the target worktree finds it there.
func MigrateSession(projectsDir, sessionID, sourcePath, targetPath string) error {
	sourceDir := filepath.Join(projectsDir, ProjectDirName(sourcePath))
	targetDir := filepath.Join(projectsDir, ProjectDirName(targetPath))

	sourceJSONL := filepath.Join(sourceDir, sessionID+".jsonl")
	targetJSONL := filepath.Join(targetDir, sessionID+".jsonl")
	if _, err := os.Stat(sourceJSONL); err != nil {
		return fmt.Errorf("session transcript: %w", err)
	}

	sourceIndex, err := readMigrateIndex(sourceDir)
	if err != nil {
		return err
	}
	pos := -1
	for i, e := range sourceIndex.Entries {
		if e.SessionID == sessionID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return fmt.Errorf("session %s not in index of %s", sessionID, sourceDir)
	}

	entry := sourceIndex.Entries[pos]
	sourceIndex.Entries = append(sourceIndex.Entries[:pos], sourceIndex.Entries[pos+1:]...)
	entry.ProjectPath = targetPath
	entry.FullPath = targetJSONL

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("create target project dir: %w", err)
	}
	if err := os.Rename(sourceJSONL, targetJSONL); err != nil {
		return fmt.Errorf("move transcript: %w", err)
	}

	if err := writeMigrateIndex(sourceDir, sourceIndex); err != nil {
		return err
	}
	targetIndex, err := readMigrateIndex(targetDir)
	if err != nil {
		return err
	}
	targetIndex.Entries = append(targetIndex.Entries, entry)
	return writeMigrateIndex(targetDir, targetIndex)
}

func readMigrateIndex(projectDir string) (*migrateIndex, error) {
	data, err := os.ReadFile(filepath.Join(projectDir, "sessions-index.json"))
	if os.IsNotExist(err) {
		return &migrateIndex{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sessions index: %w", err)
	}
	var idx migrateIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse sessions index of %s: %w", projectDir, err)
	}
	return &idx, nil
}

func writeMigrateIndex(projectDir string, idx *migrateIndex) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sessions index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(projectDir, "sessions-index.json"), data, 0o644); err != nil {
		return fmt.Errorf("write sessions index: %w", err)
	}
	return nil
}
