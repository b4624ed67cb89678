package theme

import "github.com/charmbracelet/lipgloss"

var (
	Accent       = lipgloss.Color("#cba6f7")
	Accent2      = lipgloss.Color("#89b4fa")
	SuccessColor = lipgloss.Color("#a6e3a1")
	WarnColor    = lipgloss.Color("#f9e2af")
	ErrorColor   = lipgloss.Color("#f38ba8")
	TextColor    = lipgloss.Color("#cdd6f4")
	SubTextColor = lipgloss.Color("#a6adc8")
	DimColor     = lipgloss.Color("#6c7086")
	OverlayColor = lipgloss.Color("#45475a")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)
	RepoStyle = lipgloss.NewStyle().
			Foreground(Accent2).
			Bold(true)
	TextStyle = lipgloss.NewStyle().
			Foreground(TextColor)
	SubTextStyle = lipgloss.NewStyle().
			Foreground(SubTextColor)
	DimStyle = lipgloss.NewStyle().
			Foreground(DimColor)
	CursorStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(OverlayColor).
			Bold(true)
	DirtyStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)
	PausedStyle = lipgloss.NewStyle().
			Foreground(WarnColor)
	CleanStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)
	WarnStyle = lipgloss.NewStyle().
			Foreground(WarnColor)
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(Accent)
	HelpStyle = lipgloss.NewStyle().
			Foreground(DimColor)
	DialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(WarnColor).
			Padding(1, 2)
)
