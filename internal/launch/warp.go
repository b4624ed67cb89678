package launch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dimitarvdimitrov/ws/internal/shell"
	"github.com/dimitarvdimitrov/ws/internal/snapshot"
)

const configPrefix = "ws-"

// Warp opens plan entries by writing launch configurations into Warp's
// config directory and handing them to `open`. Each entry becomes one
// window: an editor tab plus one tab per session resuming it with the
// session's provider CLI.
type Warp struct {
	Cmd    shell.Commander
	Dir    string
	Editor string
	now    func() time.Time
}

func NewWarp(cmd shell.Commander, editor string) *Warp {
	home, _ := os.UserHomeDir()
	return &Warp{
		Cmd:    cmd,
		Dir:    filepath.Join(home, ".warp", "launch_configurations"),
		Editor: editor,
		now:    time.Now,
	}
}

type launchConfig struct {
	Name    string   `yaml:"name"`
	Windows []window `yaml:"windows"`
}

type window struct {
	Tabs []tab `yaml:"tabs"`
}

type tab struct {
	Title  string `yaml:"title"`
	Layout layout `yaml:"layout"`
}

type layout struct {
	CWD      string    `yaml:"cwd"`
	Commands []command `yaml:"commands"`
}

type command struct {
	Exec string `yaml:"exec"`
}

// Open writes and opens one launch configuration per plan entry. Failures
// are per entry: one broken entry does not stop the rest.
func (w *Warp) Open(plan *Plan) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("create launch config dir: %w", err)
	}

	var errs []string
	for _, entry := range plan.Entries {
		if err := w.openEntry(entry); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("launch: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (w *Warp) openEntry(entry Entry) error {
	path, err := w.writeConfig(entry)
	if err != nil {
		return err
	}
	if _, err := w.Cmd.Run("open", path); err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (w *Warp) writeConfig(entry Entry) (string, error) {
	wtName := filepath.Base(entry.WorktreePath)
	name := fmt.Sprintf("%s%s-%d", configPrefix, wtName, w.now().Unix())

	tabs := []tab{{
		Title: wtName,
		Layout: layout{
			CWD:      entry.WorktreePath,
			Commands: []command{{Exec: w.Editor + " ."}},
		},
	}}
	for _, sess := range entry.Sessions {
		title := sess.Title
		if title == "" {
			title = "session " + shortID(sess.ID)
		}
		tabs = append(tabs, tab{
			Title: title,
			Layout: layout{
				CWD:      entry.WorktreePath,
				Commands: []command{{Exec: resumeCommand(sess)}},
			},
		})
	}

	cfg := launchConfig{Name: name, Windows: []window{{Tabs: tabs}}}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal launch config: %w", err)
	}

	path := filepath.Join(w.Dir, name+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write launch config: %w", err)
	}
	return path, nil
}

// Cleanup removes launch configs left behind by previous runs. A missing
// config dir is fine.
func (w *Warp) Cleanup() error {
	matches, err := filepath.Glob(filepath.Join(w.Dir, configPrefix+"*.yaml"))
	if err != nil {
		return err
	}
	for _, path := range matches {
		_ = os.Remove(path)
	}
	return nil
}

// resumeCommand builds the shell command that reopens a session with its
// provider's CLI. Sessions without a recorded provider are Claude's: the
// cache predates the provider column.
func resumeCommand(s Session) string {
	if s.Provider == snapshot.ProviderCodex {
		return "codex resume " + s.ID
	}
	return "claude --resume " + s.ID
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
