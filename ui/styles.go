package ui

import (
	"message-board/controller"

	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	text, muted, accent, border, ok, off lipgloss.Color
}

var (
	lightPalette = palette{
		text:   lipgloss.Color("#1F2328"),
		muted:  lipgloss.Color("#6E7781"),
		accent: lipgloss.Color("#0969DA"),
		border: lipgloss.Color("#D0D7DE"),
		ok:     lipgloss.Color("#1A7F37"),
		off:    lipgloss.Color("#CF222E"),
	}
	darkPalette = palette{
		text:   lipgloss.Color("#E6EDF3"),
		muted:  lipgloss.Color("#8B949E"),
		accent: lipgloss.Color("#58A6FF"),
		border: lipgloss.Color("#30363D"),
		ok:     lipgloss.Color("#3FB950"),
		off:    lipgloss.Color("#F85149"),
	}
)

// Styles holds every lipgloss style of one theme.
type Styles struct {
	Header   lipgloss.Style
	Entry    lipgloss.Style
	Avatar   lipgloss.Style
	Username lipgloss.Style
	Body     lipgloss.Style
	Meta     lipgloss.Style
	Label    lipgloss.Style
	Focused  lipgloss.Style
	Enabled  lipgloss.Style
	Disabled lipgloss.Style
	Muted    lipgloss.Style
}

func NewStyles(theme controller.Theme) Styles {
	p := lightPalette
	if theme == controller.Dark {
		p = darkPalette
	}
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		Entry:    lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).BorderForeground(p.border).PaddingLeft(1).MarginBottom(1),
		Avatar:   lipgloss.NewStyle().Foreground(p.muted).Italic(true),
		Username: lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		Body:     lipgloss.NewStyle().Foreground(p.text),
		Meta:     lipgloss.NewStyle().Foreground(p.muted),
		Label:    lipgloss.NewStyle().Foreground(p.muted).Width(10),
		Focused:  lipgloss.NewStyle().Foreground(p.accent).Bold(true).Width(10),
		Enabled:  lipgloss.NewStyle().Foreground(p.ok).Bold(true),
		Disabled: lipgloss.NewStyle().Foreground(p.off),
		Muted:    lipgloss.NewStyle().Foreground(p.muted),
	}
}
