package tui

import "github.com/charmbracelet/lipgloss"

type ThemeName string

const (
	ThemeMidnight  ThemeName = "midnight"
	ThemePorcelain ThemeName = "porcelain"
)

type Theme struct {
	Name ThemeName

	TextPrimary lipgloss.AdaptiveColor
	TextMuted   lipgloss.AdaptiveColor
	Accent      lipgloss.AdaptiveColor
	Success     lipgloss.AdaptiveColor
	Warn        lipgloss.AdaptiveColor
	Error       lipgloss.AdaptiveColor
	Border      lipgloss.AdaptiveColor

	TopBar      lipgloss.Style
	TopBarTitle lipgloss.Style
	Tab         lipgloss.Style
	TabActive   lipgloss.Style
	Pane        lipgloss.Style
	PaneTitle   lipgloss.Style
	Footer      lipgloss.Style
	InputBox    lipgloss.Style
	ErrorBanner lipgloss.Style

	RoleYou lipgloss.Style
	RoleAI  lipgloss.Style
	RoleErr lipgloss.Style

	TimerBig   lipgloss.Style
	TimerState lipgloss.Style
	StepItem   lipgloss.Style
	StepActive lipgloss.Style
	Muted      lipgloss.Style
}

func NewTheme(name ThemeName) Theme {
	t := Theme{Name: name}

	switch name {
	case ThemePorcelain:
		t.TextPrimary = lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#eeeeee"}
		t.TextMuted = lipgloss.AdaptiveColor{Light: "#6b6b6b", Dark: "#9a9a9a"}
		t.Accent = lipgloss.AdaptiveColor{Light: "#0a7aa6", Dark: "#56b6c2"}
		t.Border = lipgloss.AdaptiveColor{Light: "#d0d0d0", Dark: "#3a3a3a"}
	default:
		t.Name = ThemeMidnight
		t.TextPrimary = lipgloss.AdaptiveColor{Light: "#24292f", Dark: "#e6edf3"}
		t.TextMuted = lipgloss.AdaptiveColor{Light: "#57606a", Dark: "#8b949e"}
		t.Accent = lipgloss.AdaptiveColor{Light: "#8250df", Dark: "#bc8cff"}
		t.Border = lipgloss.AdaptiveColor{Light: "#d8dee4", Dark: "#30363d"}
	}
	t.Success = lipgloss.AdaptiveColor{Light: "#1a7f37", Dark: "#3fb950"}
	t.Warn = lipgloss.AdaptiveColor{Light: "#9a6700", Dark: "#d29922"}
	t.Error = lipgloss.AdaptiveColor{Light: "#cf222e", Dark: "#f85149"}

	t.TopBar = lipgloss.NewStyle().Foreground(t.TextPrimary).Padding(0, 1)
	t.TopBarTitle = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.Tab = lipgloss.NewStyle().Foreground(t.TextMuted).Padding(0, 1)
	t.TabActive = lipgloss.NewStyle().Bold(true).Foreground(t.Accent).Padding(0, 1).Underline(true)
	t.Pane = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.PaneTitle = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	t.Footer = lipgloss.NewStyle().Foreground(t.TextMuted).Padding(0, 1)
	t.InputBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Accent).Padding(0, 1)
	t.ErrorBanner = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(t.Error).Padding(0, 1)

	t.RoleYou = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.RoleAI = lipgloss.NewStyle().Bold(true).Foreground(t.Success)
	t.RoleErr = lipgloss.NewStyle().Bold(true).Foreground(t.Error)

	t.TimerBig = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.TimerState = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.StepItem = lipgloss.NewStyle().Foreground(t.TextPrimary)
	t.StepActive = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.Muted = lipgloss.NewStyle().Foreground(t.TextMuted)

	return t
}
