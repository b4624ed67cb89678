// Package tui is the interactive picker: a bubbletea program over the
// navigation controller, with a live filter input, a worktree selector per
// branch, and the pause-confirmation dialog.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dimitarvdimitrov/ws/internal/claude"
	"github.com/dimitarvdimitrov/ws/internal/launch"
	"github.com/dimitarvdimitrov/ws/internal/nav"
	"github.com/dimitarvdimitrov/ws/internal/scanner"
	"github.com/dimitarvdimitrov/ws/internal/snapshot"
	"github.com/dimitarvdimitrov/ws/internal/store"
	"github.com/dimitarvdimitrov/ws/internal/tree"
	"github.com/dimitarvdimitrov/ws/internal/tui/theme"
)

type Deps struct {
	Store         *store.Store
	Scanner       *scanner.Scanner
	ScanDirs      []string
	ScanOnOpen    bool
	Ops           nav.WorktreeOps
	Launcher      *launch.Warp
	InitialFilter string
}

type App struct {
	deps Deps
}

func New(deps Deps) *App {
	return &App{deps: deps}
}

func (a *App) Run() error {
	p := tea.NewProgram(initialModel(a.deps), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// confirmState walks the user through the dirty worktrees one at a time.
type confirmState struct {
	dirty []string
	idx   int
}

func (c *confirmState) current() string {
	return c.dirty[c.idx]
}

type model struct {
	deps Deps

	ctrl    *nav.Controller
	input   textinput.Model
	spinner spinner.Model
	loading bool
	confirm *confirmState
	toast   *toast

	width  int
	height int
}

func initialModel(deps Deps) model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.PromptStyle = theme.HelpKeyStyle
	ti.TextStyle = theme.TextStyle
	ti.Placeholder = "filter"
	ti.PlaceholderStyle = theme.DimStyle
	ti.CharLimit = 64
	ti.SetValue(deps.InitialFilter)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Accent)

	return model{
		deps:    deps,
		input:   ti,
		spinner: sp,
		loading: true,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink, loadSnapshotCmd(m.deps))
}

func loadSnapshotCmd(deps Deps) tea.Cmd {
	return func() tea.Msg {
		if deps.ScanOnOpen {
			snap, err := deps.Scanner.Scan(deps.ScanDirs)
			if err != nil {
				return snapshotLoadedMsg{err: err}
			}
			if err := deps.Store.Save(snap); err != nil {
				return snapshotLoadedMsg{err: err}
			}
			return snapshotLoadedMsg{snap: snap}
		}
		snap, err := deps.Store.Load()
		return snapshotLoadedMsg{snap: snap, err: err}
	}
}

func launchCmd(deps Deps, plan *launch.Plan) tea.Cmd {
	return func() tea.Msg {
		migrateSessions(deps.Scanner.SessionsDir, plan)
		return launchDoneMsg{err: deps.Launcher.Open(plan)}
	}
}

// migrateSessions moves Claude transcripts recorded against another path
// into the target worktree's project directory, so resume finds them there.
// Best effort: a session that fails to move still resumes, from its old
// path.
func migrateSessions(projectsDir string, plan *launch.Plan) {
	for _, entry := range plan.Entries {
		for _, s := range entry.Sessions {
			if s.Provider != snapshot.ProviderClaude {
				continue
			}
			if s.ProjectPath == "" || s.ProjectPath == entry.WorktreePath {
				continue
			}
			_ = claude.MigrateSession(projectsDir, s.ID, s.ProjectPath, entry.WorktreePath)
		}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case snapshotLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.toast = newToast(toastError, "load snapshot: "+msg.err.Error())
			return m, toastExpireCmd()
		}
		m.ctrl = nav.New(tree.Build(msg.snap), m.deps.Ops, m.deps.InitialFilter)
		return m, nil

	case launchDoneMsg:
		if msg.err != nil {
			m.toast = newToast(toastError, msg.err.Error())
			return m, toastExpireCmd()
		}
		return m, tea.Quit

	case toastExpiredMsg:
		if m.toast != nil && m.toast.expired() {
			m.toast = nil
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.ctrl == nil {
		return m, nil
	}
	if m.confirm != nil {
		return m.handleConfirmKey(msg)
	}

	switch msg.String() {
	case "up":
		m.ctrl.MoveUp()
		return m, nil
	case "down":
		m.ctrl.MoveDown()
		return m, nil
	case "left":
		m.ctrl.CycleWorktree(-1)
		return m, nil
	case "right":
		m.ctrl.CycleWorktree(1)
		return m, nil
	case " ":
		// Space toggles while the filter is empty; otherwise it is text.
		if m.input.Value() == "" {
			m.ctrl.ToggleSession()
			return m, nil
		}
	case "enter":
		return m.confirmSelection()
	case "esc":
		m.input.SetValue("")
		m.ctrl.ClearFilter()
		return m, nil
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.ctrl.SetFilter(m.input.Value())
	}
	return m, cmd
}

func (m model) confirmSelection() (tea.Model, tea.Cmd) {
	res := m.ctrl.Confirm()

	if res.Confirmation != nil {
		m.confirm = &confirmState{dirty: res.Confirmation.DirtyWorktrees}
		return m, nil
	}
	if len(res.Errors) > 0 {
		m.toast = newToast(toastError, joinEntryErrors(res.Errors))
		if res.Plan.Empty() {
			return m, toastExpireCmd()
		}
		return m, tea.Batch(toastExpireCmd(), launchCmd(m.deps, res.Plan))
	}
	if res.Plan.Empty() {
		m.toast = newToast(toastInfo, "nothing selected")
		return m, toastExpireCmd()
	}
	return m, launchCmd(m.deps, res.Plan)
}

func (m model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		path := m.confirm.current()
		if err := m.ctrl.PauseWorktree(path); err != nil {
			// Worktree stays dirty; the dialog stays on it so the user
			// can retry or dismiss.
			m.toast = newToast(toastError, err.Error())
			return m, toastExpireCmd()
		}
		return m.advanceConfirm()
	case "n", "N":
		m.ctrl.DismissDirty(m.confirm.current())
		return m.advanceConfirm()
	case "esc":
		// Cancelling abandons the pending plan, including any dismissals
		// recorded for it; the next confirm prompts for them again.
		m.ctrl.ClearDismissals()
		m.confirm = nil
		return m, nil
	}
	return m, nil
}

func (m model) advanceConfirm() (tea.Model, tea.Cmd) {
	m.confirm.idx++
	if m.confirm.idx < len(m.confirm.dirty) {
		return m, nil
	}
	m.confirm = nil
	return m.confirmSelection()
}

func joinEntryErrors(errs []nav.EntryError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

// View

func (m model) View() string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("ws") + theme.DimStyle.Render("  worktrees & sessions") + "\n")
	b.WriteString(m.input.View() + "\n\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " loading snapshot...\n")
	case m.ctrl == nil || len(m.ctrl.Rows()) == 0:
		b.WriteString(theme.DimStyle.Render("nothing to show — run 'ws scan' first") + "\n")
	default:
		b.WriteString(m.renderRows())
	}

	b.WriteString("\n" + m.helpLine())
	if m.toast != nil {
		b.WriteString("\n" + m.toast.render())
	}
	if m.confirm != nil {
		b.WriteString("\n" + m.renderConfirmDialog())
	}
	return b.String()
}

func (m model) renderRows() string {
	rows := m.ctrl.Rows()
	cursor := m.ctrl.Cursor()

	// Keep the cursor inside the visible window.
	visible := m.height - 8
	if visible < 3 {
		visible = 3
	}
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(rows) {
		end = len(rows)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		line := m.renderRow(rows[i])
		if i == cursor {
			line = theme.CursorStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m model) renderRow(row tree.Row) string {
	switch row.Kind {
	case tree.RowRepo:
		return theme.RepoStyle.Render(row.Repo.Name)
	case tree.RowBranch:
		return "  " + m.renderBranch(row.Branch)
	default:
		return "      " + m.renderSession(row.Session)
	}
}

func (m model) renderBranch(b *tree.BranchNode) string {
	label := theme.TextStyle.Render(b.Label())
	if b.Orphaned {
		label = theme.DimStyle.Render(b.Label())
	}
	if len(b.Worktrees) == 0 {
		return label
	}

	parts := make([]string, 0, len(b.Worktrees))
	for i, wt := range b.Worktrees {
		marker := "[ ]"
		if i == b.ChosenIndex() {
			marker = "[*]"
		}
		text := fmt.Sprintf("%s %s", marker, filepath.Base(wt.Path))
		switch wt.State {
		case tree.StateDirty:
			text += " ±"
			parts = append(parts, theme.DirtyStyle.Render(text))
		case tree.StatePausedWork:
			text += " ⏸"
			parts = append(parts, theme.PausedStyle.Render(text))
		default:
			if i == b.ChosenIndex() {
				parts = append(parts, theme.CleanStyle.Render(text))
			} else {
				parts = append(parts, theme.DimStyle.Render(text))
			}
		}
	}
	return label + theme.DimStyle.Render(" (") + strings.Join(parts, " ") + theme.DimStyle.Render(")")
}

func (m model) renderSession(s *tree.SessionNode) string {
	check := "[ ]"
	if s.Selected {
		check = "[x]"
	}
	title := truncate(s.Title(), 60)
	when := theme.DimStyle.Render(s.Modified.Format("Jan 2 15:04"))
	if s.Selected {
		return theme.CleanStyle.Render(check+" "+title) + " " + when
	}
	return theme.SubTextStyle.Render(check+" "+title) + " " + when
}

func (m model) helpLine() string {
	keys := []struct{ key, desc string }{
		{"↑/↓", "move"},
		{"←/→", "worktree"},
		{"space", "select"},
		{"enter", "launch"},
		{"esc", "clear"},
		{"ctrl+c", "quit"},
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, theme.HelpKeyStyle.Render(k.key)+theme.HelpStyle.Render(" "+k.desc))
	}
	return strings.Join(parts, theme.HelpStyle.Render("  ·  "))
}

func (m model) renderConfirmDialog() string {
	path := m.confirm.current()
	msg := fmt.Sprintf("Worktree %q has uncommitted changes.\nCreate a paused-work commit before launching?\n\n%s yes   %s skip this worktree   %s cancel",
		filepath.Base(path),
		theme.HelpKeyStyle.Render("y"),
		theme.HelpKeyStyle.Render("n"),
		theme.HelpKeyStyle.Render("esc"))
	if len(m.confirm.dirty) > 1 {
		msg = fmt.Sprintf("(%d/%d) ", m.confirm.idx+1, len(m.confirm.dirty)) + msg
	}
	return theme.DialogStyle.Render(msg)
}

func truncate(s string, max int) string {
	line := s
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	runes := []rune(line)
	if len(runes) <= max {
		return line
	}
	return string(runes[:max-3]) + "..."
}
