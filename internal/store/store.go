// Package store persists scan snapshots in a SQLite database so the
// interactive picker starts from the last scan without rescanning. Saves
// happen in one transaction; a picker reading concurrently sees either the
// old snapshot or the new one.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dimitarvdimitrov/ws/internal/config"
	"github.com/dimitarvdimitrov/ws/internal/snapshot"
)

const schema = `
CREATE TABLE IF NOT EXISTS repos (
    path TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    scanned_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS worktrees (
    path TEXT PRIMARY KEY,
    repo_path TEXT NOT NULL REFERENCES repos(path) ON DELETE CASCADE,
    branch TEXT NOT NULL DEFAULT '',
    dirty INTEGER NOT NULL DEFAULT 0,
    paused INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    project_path TEXT NOT NULL,
    branch TEXT NOT NULL DEFAULT '',
    summary TEXT NOT NULL DEFAULT '',
    first_prompt TEXT NOT NULL DEFAULT '',
    modified INTEGER NOT NULL,
    messages INTEGER NOT NULL DEFAULT 0,
    provider TEXT NOT NULL DEFAULT 'claude'
);

CREATE INDEX IF NOT EXISTS idx_worktrees_repo ON worktrees(repo_path);
CREATE INDEX IF NOT EXISTS idx_sessions_branch ON sessions(branch);
`

type Store struct {
	db *sql.DB
}

// DefaultPath returns the snapshot database location inside the ws config
// directory.
func DefaultPath() string {
	return filepath.Join(config.Dir(), "ws.db")
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	for _, stmt := range migrations {
		// Fails with "duplicate column name" on databases that already
		// have the column.
		_, _ = db.Exec(stmt)
	}
	return &Store{db: db}, nil
}

// migrations patch databases created by older versions up to the current
// schema. Each statement must be safe to re-run.
var migrations = []string{
	`ALTER TABLE sessions ADD COLUMN provider TEXT NOT NULL DEFAULT 'claude'`,
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the persisted snapshot with snap. Repos and sessions absent
// from snap are swept away so the cache never accumulates stale entries.
func (s *Store) Save(snap *snapshot.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for _, repo := range snap.Repos {
		if _, err := tx.Exec(
			`INSERT INTO repos (path, name, scanned_at) VALUES (?, ?, ?)
			 ON CONFLICT(path) DO UPDATE SET name = excluded.name, scanned_at = excluded.scanned_at`,
			repo.Path, repo.Name, repo.ScannedAt.Unix(),
		); err != nil {
			return fmt.Errorf("upsert repo %s: %w", repo.Path, err)
		}
		if _, err := tx.Exec(`DELETE FROM worktrees WHERE repo_path = ?`, repo.Path); err != nil {
			return fmt.Errorf("clear worktrees of %s: %w", repo.Path, err)
		}
		for _, wt := range repo.Worktrees {
			if _, err := tx.Exec(
				`INSERT INTO worktrees (path, repo_path, branch, dirty, paused) VALUES (?, ?, ?, ?, ?)`,
				wt.Path, repo.Path, wt.Branch, boolInt(wt.Dirty), boolInt(wt.Paused),
			); err != nil {
				return fmt.Errorf("insert worktree %s: %w", wt.Path, err)
			}
		}
	}

	for _, sess := range snap.Sessions {
		if _, err := tx.Exec(
			`INSERT INTO sessions (id, project_path, branch, summary, first_prompt, modified, messages, provider)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			     project_path = excluded.project_path,
			     branch = excluded.branch,
			     summary = excluded.summary,
			     first_prompt = excluded.first_prompt,
			     modified = excluded.modified,
			     messages = excluded.messages,
			     provider = excluded.provider`,
			sess.ID, sess.ProjectPath, sess.Branch, sess.Summary, sess.FirstPrompt,
			sess.Modified.UnixMilli(), sess.Messages, sess.Provider,
		); err != nil {
			return fmt.Errorf("upsert session %s: %w", sess.ID, err)
		}
	}

	if err := sweepStale(tx, snap); err != nil {
		return err
	}
	return tx.Commit()
}

func sweepStale(tx *sql.Tx, snap *snapshot.Snapshot) error {
	repoQ, repoArgs := inClause(len(snap.Repos))
	args := make([]any, 0, len(snap.Repos))
	for _, r := range snap.Repos {
		args = append(args, r.Path)
	}
	if _, err := tx.Exec(`DELETE FROM repos WHERE path NOT IN `+repoQ, args[:repoArgs]...); err != nil {
		return fmt.Errorf("sweep stale repos: %w", err)
	}

	sessQ, sessArgs := inClause(len(snap.Sessions))
	args = args[:0]
	for _, sess := range snap.Sessions {
		args = append(args, sess.ID)
	}
	if _, err := tx.Exec(`DELETE FROM sessions WHERE id NOT IN `+sessQ, args[:sessArgs]...); err != nil {
		return fmt.Errorf("sweep stale sessions: %w", err)
	}
	return nil
}

// inClause builds a "(?, ?, ...)" placeholder list. Zero items yields a
// clause that matches nothing, so the sweep deletes everything.
func inClause(n int) (string, int) {
	if n == 0 {
		return "(SELECT NULL WHERE 0)", 0
	}
	q := "(?"
	for i := 1; i < n; i++ {
		q += ", ?"
	}
	return q + ")", n
}

// Load reads the last persisted snapshot. An empty database yields an empty
// snapshot, not an error.
func (s *Store) Load() (*snapshot.Snapshot, error) {
	snap := &snapshot.Snapshot{}

	rows, err := s.db.Query(`SELECT path, name, scanned_at FROM repos ORDER BY name, path`)
	if err != nil {
		return nil, fmt.Errorf("load repos: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var repo snapshot.Repo
		var scannedAt int64
		if err := rows.Scan(&repo.Path, &repo.Name, &scannedAt); err != nil {
			return nil, fmt.Errorf("scan repo row: %w", err)
		}
		repo.ScannedAt = time.Unix(scannedAt, 0)
		snap.Repos = append(snap.Repos, repo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load repos: %w", err)
	}

	for i := range snap.Repos {
		if err := s.loadWorktrees(&snap.Repos[i]); err != nil {
			return nil, err
		}
	}

	sessRows, err := s.db.Query(
		`SELECT id, project_path, branch, summary, first_prompt, modified, messages, provider FROM sessions ORDER BY modified DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	defer sessRows.Close()
	for sessRows.Next() {
		var sess snapshot.Session
		var modified int64
		if err := sessRows.Scan(&sess.ID, &sess.ProjectPath, &sess.Branch, &sess.Summary,
			&sess.FirstPrompt, &modified, &sess.Messages, &sess.Provider); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		sess.Modified = time.UnixMilli(modified)
		snap.Sessions = append(snap.Sessions, sess)
	}
	if err := sessRows.Err(); err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	return snap, nil
}

func (s *Store) loadWorktrees(repo *snapshot.Repo) error {
	rows, err := s.db.Query(
		`SELECT path, branch, dirty, paused FROM worktrees WHERE repo_path = ? ORDER BY path`, repo.Path)
	if err != nil {
		return fmt.Errorf("load worktrees of %s: %w", repo.Path, err)
	}
	defer rows.Close()
	for rows.Next() {
		var wt snapshot.Worktree
		var dirty, paused int
		if err := rows.Scan(&wt.Path, &wt.Branch, &dirty, &paused); err != nil {
			return fmt.Errorf("scan worktree row: %w", err)
		}
		wt.Dirty = dirty != 0
		wt.Paused = paused != 0
		repo.Worktrees = append(repo.Worktrees, wt)
	}
	return rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
