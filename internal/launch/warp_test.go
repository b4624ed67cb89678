package launch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

type recordingCommander struct {
	calls [][]string
}

func (r *recordingCommander) Run(name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	return nil, nil
}

func (r *recordingCommander) RunDir(dir, name string, args ...string) ([]byte, error) {
	return r.Run(name, args...)
}

func testWarp(t *testing.T) (*Warp, *recordingCommander) {
	t.Helper()
	cmd := &recordingCommander{}
	w := &Warp{
		Cmd:    cmd,
		Dir:    t.TempDir(),
		Editor: "nvim",
		now:    func() time.Time { return time.Unix(1756600000, 0) },
	}
	return w, cmd
}

func TestOpenWritesConfigPerEntry(t *testing.T) {
	w, cmd := testWarp(t)

	plan := &Plan{Entries: []Entry{{
		WorktreePath: "/home/u/proj-feat",
		Branch:       "feat",
		Sessions: []Session{
			{ID: "abc-123", Title: "Add login flow", Provider: "claude"},
			{ID: "def-456", Provider: "codex"},
		},
	}}}

	if err := w.Open(plan); err != nil {
		t.Fatalf("open: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(w.Dir, "ws-*.yaml"))
	if len(matches) != 1 {
		t.Fatalf("expected 1 config, got %d", len(matches))
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var cfg launchConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("config not valid yaml: %v", err)
	}
	if len(cfg.Windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(cfg.Windows))
	}
	tabs := cfg.Windows[0].Tabs
	if len(tabs) != 3 {
		t.Fatalf("expected editor tab + 2 session tabs, got %d", len(tabs))
	}
	if tabs[0].Layout.Commands[0].Exec != "nvim ." {
		t.Errorf("editor tab command wrong: %s", tabs[0].Layout.Commands[0].Exec)
	}
	if tabs[1].Title != "Add login flow" {
		t.Errorf("session tab should use the given title: %s", tabs[1].Title)
	}
	if tabs[1].Layout.Commands[0].Exec != "claude --resume abc-123" {
		t.Errorf("resume command wrong: %s", tabs[1].Layout.Commands[0].Exec)
	}
	if !strings.HasPrefix(tabs[2].Title, "session ") {
		t.Errorf("untitled session should get a fallback title: %s", tabs[2].Title)
	}
	if tabs[2].Layout.Commands[0].Exec != "codex resume def-456" {
		t.Errorf("codex resume command wrong: %s", tabs[2].Layout.Commands[0].Exec)
	}
	if tabs[2].Layout.CWD != "/home/u/proj-feat" {
		t.Errorf("session cwd wrong: %s", tabs[2].Layout.CWD)
	}

	if len(cmd.calls) != 1 || cmd.calls[0][0] != "open" {
		t.Fatalf("expected one open call, got %v", cmd.calls)
	}
}

func TestCleanupRemovesOldConfigs(t *testing.T) {
	w, _ := testWarp(t)
	stale := filepath.Join(w.Dir, "ws-old-1.yaml")
	keep := filepath.Join(w.Dir, "other.yaml")
	for _, p := range []string{stale, keep} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	if err := w.Cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale ws config not removed")
	}
	if _, err := os.Stat(keep); err != nil {
		t.Error("unrelated config removed")
	}
}

func TestCleanupMissingDir(t *testing.T) {
	w, _ := testWarp(t)
	w.Dir = filepath.Join(w.Dir, "missing")
	if err := w.Cleanup(); err != nil {
		t.Fatalf("cleanup of missing dir: %v", err)
	}
}
