package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dimitarvdimitrov/ws/internal/snapshot"
	"github.com/dimitarvdimitrov/ws/internal/tui/theme"
)

type toastKind int

const (
	toastSuccess toastKind = iota
	toastError
	toastWarning
	toastInfo
)

const toastDuration = 3 * time.Second

type toast struct {
	message   string
	kind      toastKind
	expiresAt time.Time
}

func newToast(kind toastKind, message string) *toast {
	return &toast{message: message, kind: kind, expiresAt: time.Now().Add(toastDuration)}
}

func (t *toast) expired() bool {
	return time.Now().After(t.expiresAt)
}

func (t *toast) render() string {
	var style lipgloss.Style
	switch t.kind {
	case toastSuccess:
		style = theme.SuccessStyle
	case toastError:
		style = theme.ErrorStyle
	case toastWarning:
		style = theme.WarnStyle
	default:
		style = theme.SubTextStyle
	}
	return style.Render(t.message)
}

type toastExpiredMsg struct{}

func toastExpireCmd() tea.Cmd {
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{}
	})
}

type snapshotLoadedMsg struct {
	snap *snapshot.Snapshot
	err  error
}

type launchDoneMsg struct {
	err error
}
