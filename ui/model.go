// Package ui is the terminal front-end of the board. It owns the bubbletea
// event loop and forwards every input change to the controller, which is only
// ever touched from Update.
package ui

import (
	"fmt"
	"message-board/controller"
	"message-board/domain"
	"message-board/feed"
	"message-board/render"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// Header, four inputs and the status line.
	chromeHeight = 8
)

var fields = []controller.Field{controller.Username, controller.Message, controller.Email, controller.ProfileURL}

var labels = map[controller.Field]string{
	controller.Username:   "Username",
	controller.Message:    "Message",
	controller.Email:      "Email",
	controller.ProfileURL: "Avatar",
}

// RecordMsg carries a record from the store into the event loop.
type RecordMsg domain.MessageRecord

// Deliver returns the function handing records to program. It is meant for
// controller.Start and may block until the program runs.
func Deliver(program *tea.Program) func(domain.MessageRecord) {
	return func(record domain.MessageRecord) {
		program.Send(RecordMsg(record))
	}
}

type Model struct {
	ctrl     *controller.Controller[*render.Node]
	inputs   map[controller.Field]textinput.Model
	viewport viewport.Model
	styles   Styles
	width    int
}

func NewModel(ctrl *controller.Controller[*render.Node]) Model {
	m := Model{
		ctrl:     ctrl,
		inputs:   make(map[controller.Field]textinput.Model, len(fields)),
		viewport: viewport.New(defaultWidth, defaultHeight-chromeHeight),
		styles:   NewStyles(ctrl.Theme()),
		width:    defaultWidth,
	}
	for _, field := range fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 2048
		ti.Width = defaultWidth - 12
		m.inputs[field] = ti
	}
	m.setPlaceholders()
	m.focus(ctrl.Focused())
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 3)
		for _, field := range fields {
			ti := m.inputs[field]
			ti.Width = max(msg.Width-12, 10)
			m.inputs[field] = ti
		}
		m.refresh()
		return m, nil

	case RecordMsg:
		m.ctrl.Receive(domain.MessageRecord(msg))
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			return m, m.cycle(1)
		case "shift+tab":
			return m, m.cycle(-1)
		case "ctrl+t":
			m.ctrl.ToggleTheme()
			m.styles = NewStyles(m.ctrl.Theme())
			m.refresh()
			return m, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case "enter":
			if m.ctrl.Enter(false) {
				ti := m.inputs[controller.Message]
				ti.SetValue("")
				m.inputs[controller.Message] = ti
				return m, m.focus(m.ctrl.Focused())
			}
			return m, nil
		case "shift+enter", "alt+enter":
			m.ctrl.Enter(true)
			return m, nil
		}
	}

	field := m.ctrl.Focused()
	ti, cmd := m.inputs[field].Update(msg)
	m.inputs[field] = ti
	if ti.Value() != m.value(field) {
		m.ctrl.Set(field, ti.Value())
	}
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder

	theme := "light"
	if m.ctrl.Theme() == controller.Dark {
		theme = "dark"
	}
	b.WriteString(m.styles.Header.Render("Message Board"))
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("  feed %s · theme %s (ctrl+t)", m.ctrl.FeedState(), theme)))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	for _, field := range fields {
		label := m.styles.Label
		if field == m.ctrl.Focused() {
			label = m.styles.Focused
		}
		b.WriteString(label.Render(labels[field]))
		b.WriteString(m.inputs[field].View())
		b.WriteString("\n")
	}

	send := m.styles.Disabled.Render("send disabled")
	if m.ctrl.SubmitEnabled() {
		send = m.styles.Enabled.Render("enter to send")
	}
	b.WriteString(send)
	b.WriteString(m.styles.Muted.Render("  avatar " + Literal(m.ctrl.Preview())))
	return lipgloss.NewStyle().MaxWidth(max(m.width, 20)).Render(b.String())
}

func (m *Model) refresh() {
	entries := make([]string, 0, m.ctrl.View().Len())
	for _, node := range m.ctrl.View().Items() {
		entries = append(entries, Paint(node, m.styles))
	}
	if m.ctrl.FeedState() == feed.Unavailable {
		entries = append(entries, m.styles.Muted.Render("Feed unavailable: messages can be composed but are not sent."))
	}
	m.viewport.SetContent(strings.Join(entries, "\n"))
	// The newest entry stays in view.
	m.viewport.GotoBottom()
}

func (m *Model) cycle(step int) tea.Cmd {
	current := 0
	for i, field := range fields {
		if field == m.ctrl.Focused() {
			current = i
		}
	}
	next := fields[(current+step+len(fields))%len(fields)]
	m.ctrl.Focus(next)
	return m.focus(next)
}

func (m *Model) focus(target controller.Field) tea.Cmd {
	var cmd tea.Cmd
	for _, field := range fields {
		ti := m.inputs[field]
		if field == target {
			cmd = ti.Focus()
		} else {
			ti.Blur()
		}
		m.inputs[field] = ti
	}
	return cmd
}

func (m *Model) setPlaceholders() {
	placeholders := map[controller.Field]string{
		controller.Username:   "your name",
		controller.Message:    "say something :fire:",
		controller.Email:      "optional",
		controller.ProfileURL: "optional image URL",
	}
	for field, text := range placeholders {
		ti := m.inputs[field]
		ti.Placeholder = text
		m.inputs[field] = ti
	}
}

func (m Model) value(field controller.Field) string {
	input := m.ctrl.Input()
	switch field {
	case controller.Username:
		return input.Username
	case controller.Message:
		return input.Message
	case controller.Email:
		return input.Email
	default:
		return input.ProfileURL
	}
}
