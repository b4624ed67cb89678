// Package snapshot holds the scanned facts one run operates on: the
// repositories, their worktrees, and the recorded AI sessions. A Snapshot is
// immutable once produced; the TUI builds its tree from it and never writes
// back into it.
package snapshot

import "time"

type Snapshot struct {
	Repos    []Repo
	Sessions []Session
}

// Repo is identified by its canonical root path.
type Repo struct {
	Path      string
	Name      string
	Worktrees []Worktree
	ScannedAt time.Time
}

// Worktree is identified by its filesystem path. Dirty and Paused reflect the
// most recent scan: Dirty when `git status --porcelain` reported anything,
// Paused when the last commit subject carries the paused-work marker.
type Worktree struct {
	Path   string
	Branch string
	Dirty  bool
	Paused bool
}

// Providers a session can belong to. The provider decides which CLI resumes
// the session at launch.
const (
	ProviderClaude = "claude"
	ProviderCodex  = "codex"
)

// Session is one recorded unit of AI-assisted work. Branch may name a branch
// that no longer exists; the tree model buckets such sessions separately.
type Session struct {
	ID          string
	ProjectPath string
	Branch      string
	Summary     string
	FirstPrompt string
	Modified    time.Time
	Messages    int
	Provider    string
}

// Title is the session's human-readable label: the summary when present,
// otherwise the first prompt.
func (s Session) Title() string {
	if s.Summary != "" {
		return s.Summary
	}
	if s.FirstPrompt != "" {
		return s.FirstPrompt
	}
	return "(no summary)"
}
