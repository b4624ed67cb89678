// Package git wraps the git CLI calls the scanner and the picker need:
// worktree enumeration, dirty detection, and the paused-work commit pair
// used to park and restore uncommitted changes.
package git

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dimitarvdimitrov/ws/internal/shell"
)

// PausedWorkSubject marks a commit created by PauseWork. ResumeWork undoes
// exactly one such commit.
const PausedWorkSubject = "WIP: paused work"

// IsPausedWorkMessage reports whether a commit subject marks a paused-work
// save point.
func IsPausedWorkMessage(msg string) bool {
	return strings.TrimSpace(msg) == PausedWorkSubject
}

type Git struct {
	Cmd shell.Commander
}

func New(cmd shell.Commander) *Git {
	return &Git{Cmd: cmd}
}

type Worktree struct {
	Path     string
	Branch   string
	Detached bool
}

// Worktrees lists the worktrees of the repository at root, including the
// main one.
func (g *Git) Worktrees(root string) ([]Worktree, error) {
	out, err := g.Cmd.RunDir(root, "git", "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("list worktrees in %s: %w", root, err)
	}
	return parseWorktreeList(string(out)), nil
}

func parseWorktreeList(out string) []Worktree {
	var wts []Worktree
	var cur Worktree
	flush := func() {
		if cur.Path != "" {
			wts = append(wts, cur)
		}
		cur = Worktree{}
	}
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			flush()
			cur.Path = strings.TrimSpace(strings.TrimPrefix(line, "worktree "))
		case strings.HasPrefix(line, "branch "):
			ref := strings.TrimSpace(strings.TrimPrefix(line, "branch "))
			cur.Branch = strings.TrimPrefix(ref, "refs/heads/")
		case strings.HasPrefix(line, "detached"):
			cur.Detached = true
			cur.Branch = ""
		}
	}
	flush()
	return wts
}

// IsDirty reports whether the worktree at path has uncommitted changes,
// including untracked files.
func (g *Git) IsDirty(path string) (bool, error) {
	out, err := g.Cmd.RunDir(path, "git", "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("status in %s: %w", path, err)
	}
	return strings.TrimSpace(string(out)) != "", nil
}

// LastCommitSubject returns the subject line of HEAD in the worktree at path.
func (g *Git) LastCommitSubject(path string) (string, error) {
	out, err := g.Cmd.RunDir(path, "git", "log", "-1", "--format=%s")
	if err != nil {
		return "", fmt.Errorf("log in %s: %w", path, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// HasPausedWork reports whether HEAD in the worktree at path is a paused-work
// commit.
func (g *Git) HasPausedWork(path string) (bool, error) {
	subject, err := g.LastCommitSubject(path)
	if err != nil {
		return false, err
	}
	return IsPausedWorkMessage(subject), nil
}

// PauseWork stages everything in the worktree at path and commits it under
// the paused-work marker. It fails without side effects visible to the
// caller when there is nothing to commit or the commit itself fails; the
// worktree's recorded state should stay Dirty in that case.
func (g *Git) PauseWork(path string) error {
	if _, err := g.Cmd.RunDir(path, "git", "add", "-A"); err != nil {
		return fmt.Errorf("stage changes in %s: %w", filepath.Base(path), err)
	}
	if _, err := g.Cmd.RunDir(path, "git", "commit", "-m", PausedWorkSubject); err != nil {
		return fmt.Errorf("create paused-work commit in %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ResumeWork undoes one paused-work commit, restoring its changes as
// uncommitted modifications. Callers must only invoke it when HEAD carries
// the marker.
func (g *Git) ResumeWork(path string) error {
	if _, err := g.Cmd.RunDir(path, "git", "reset", "--soft", "HEAD~1"); err != nil {
		return fmt.Errorf("undo paused-work commit in %s: %w", filepath.Base(path), err)
	}
	return nil
}
