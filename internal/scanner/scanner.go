// Package scanner discovers git repositories under the configured scan
// directories and collects the facts the picker operates on: worktrees with
// their dirty/paused state, plus recorded AI sessions.
package scanner

import (
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dimitarvdimitrov/ws/internal/claude"
	"github.com/dimitarvdimitrov/ws/internal/codex"
	"github.com/dimitarvdimitrov/ws/internal/git"
	"github.com/dimitarvdimitrov/ws/internal/snapshot"
)

type Scanner struct {
	Git          *git.Git
	SessionsDir  string
	CodexDir     string
	CodexHistory string
	Log          *logrus.Logger
}

func New(g *git.Git) *Scanner {
	return &Scanner{
		Git:          g,
		SessionsDir:  claude.DefaultDir(),
		CodexDir:     codex.DefaultDir(),
		CodexHistory: codex.DefaultHistory(),
		Log:          logrus.StandardLogger(),
	}
}

// Scan walks each scan dir one level deep for git repositories and gathers a
// fresh snapshot. Unreadable dirs and failing repos are skipped with a log
// line rather than failing the whole scan.
func (s *Scanner) Scan(scanDirs []string) (*snapshot.Snapshot, error) {
	snap := &snapshot.Snapshot{}

	seen := make(map[string]bool)
	for _, dir := range scanDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			s.Log.WithError(err).WithField("dir", dir).Warn("skipping unreadable scan dir")
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			root := filepath.Join(dir, entry.Name())
			if info, err := os.Stat(filepath.Join(root, ".git")); err != nil || !info.IsDir() {
				continue
			}
			if seen[root] {
				continue
			}
			seen[root] = true

			repo, err := s.scanRepo(root)
			if err != nil {
				s.Log.WithError(err).WithField("repo", root).Warn("skipping repo")
				continue
			}
			snap.Repos = append(snap.Repos, repo)
		}
	}

	sessions, err := claude.ScanSessions(s.SessionsDir)
	if err != nil {
		return nil, err
	}
	snap.Sessions = sessions

	codexSessions, err := codex.ScanSessions(s.CodexDir, s.CodexHistory)
	if err != nil {
		return nil, err
	}
	snap.Sessions = append(snap.Sessions, codexSessions...)

	s.Log.WithFields(logrus.Fields{
		"repos":    len(snap.Repos),
		"sessions": len(snap.Sessions),
	}).Info("scan complete")
	return snap, nil
}

func (s *Scanner) scanRepo(root string) (snapshot.Repo, error) {
	wts, err := s.Git.Worktrees(root)
	if err != nil {
		return snapshot.Repo{}, err
	}

	repo := snapshot.Repo{
		Path:      root,
		Name:      filepath.Base(root),
		ScannedAt: time.Now(),
	}
	for _, wt := range wts {
		dirty, err := s.Git.IsDirty(wt.Path)
		if err != nil {
			s.Log.WithError(err).WithField("worktree", wt.Path).Warn("dirty check failed")
		}
		paused, err := s.Git.HasPausedWork(wt.Path)
		if err != nil {
			s.Log.WithError(err).WithField("worktree", wt.Path).Warn("paused-work check failed")
		}
		repo.Worktrees = append(repo.Worktrees, snapshot.Worktree{
			Path:   wt.Path,
			Branch: wt.Branch,
			Dirty:  dirty,
			Paused: paused,
		})
	}
	return repo, nil
}
