// Package controller wires composition input, the submission gate and the
// feed synchronizer together, independently of any UI toolkit.
//
// A Controller is not safe for concurrent use: every method must be called
// from the UI event loop. Records coming from the store are marshalled into
// that loop by the deliver function given to Start.
package controller

import (
	"context"
	"log/slog"
	"message-board/domain"
	"message-board/feed"
	"message-board/gate"
	"message-board/render"
	"time"
)

// Field identifies a composition input.
type Field int

const (
	Username Field = iota
	Message
	Email
	ProfileURL
)

// Theme is a purely local display preference.
type Theme int

const (
	Light Theme = iota
	Dark
)

type Controller[N any] struct {
	log          *slog.Logger
	gate         *gate.Gate
	synchronizer *feed.Synchronizer
	renderer     render.Renderer
	builder      render.Builder[N]
	view         *feed.View[N]
	clock        func() time.Time

	input         domain.InputState
	submitEnabled bool
	preview       string
	focus         Field
	theme         Theme
}

// New returns a controller with an empty feed and a closed gate.
// A nil clock means time.Now.
func New[N any](
	log *slog.Logger,
	g *gate.Gate,
	synchronizer *feed.Synchronizer,
	renderer render.Renderer,
	builder render.Builder[N],
	clock func() time.Time,
) *Controller[N] {
	if clock == nil {
		clock = time.Now
	}
	c := &Controller[N]{
		log:          log,
		gate:         g,
		synchronizer: synchronizer,
		renderer:     renderer,
		builder:      builder,
		view:         feed.NewView[N](),
		clock:        clock,
		preview:      domain.PlaceholderAvatarURL,
		focus:        Username,
	}
	c.refreshGate()
	return c
}

// Start evaluates store availability and, when available, subscribes.
// deliver must hand each record back to the event loop, which then calls Receive.
// An unavailable store is not an error: the page stays usable for composing.
func (c *Controller[N]) Start(ctx context.Context, deliver func(domain.MessageRecord)) (feed.State, error) {
	if state := c.synchronizer.Start(ctx); state == feed.Unavailable {
		return state, nil
	}
	if err := c.synchronizer.Subscribe(deliver); err != nil {
		return c.synchronizer.State(), err
	}
	return c.synchronizer.State(), nil
}

// Receive renders record and appends it to the feed, scrolled to the newest entry.
func (c *Controller[N]) Receive(record domain.MessageRecord) {
	c.view.Append(render.Render(c.renderer, c.builder, record))
}

// Set updates one input field. Username and message changes re-run the gate,
// profile URL changes refresh the avatar preview.
func (c *Controller[N]) Set(field Field, value string) {
	switch field {
	case Username:
		c.input.Username = value
		c.refreshGate()
	case Message:
		c.input.Message = value
		c.refreshGate()
	case Email:
		c.input.Email = value
	case ProfileURL:
		c.input.ProfileURL = value
		c.preview = domain.AvatarURL(value)
	}
}

// Submit appends a record built from the current input when the gate is open.
// Only the message field is cleared, and focus returns to it.
func (c *Controller[N]) Submit() bool {
	if !c.gate.CanSubmit(c.input) {
		return false
	}
	record := domain.NewMessageRecord(c.input, c.clock())
	if !c.synchronizer.Append(record) {
		c.log.Debug("Record composed while feed is unavailable", "username", record.Username)
	}
	c.input.Message = ""
	c.refreshGate()
	c.focus = Message
	return true
}

// Enter handles the Enter key: it submits unless shift is held or the gate is closed.
func (c *Controller[N]) Enter(shift bool) bool {
	if shift || !c.submitEnabled {
		return false
	}
	return c.Submit()
}

// ToggleTheme flips the theme and reports whether dark mode is now on.
func (c *Controller[N]) ToggleTheme() bool {
	if c.theme == Dark {
		c.theme = Light
	} else {
		c.theme = Dark
	}
	return c.theme == Dark
}

// Focus moves the input focus.
func (c *Controller[N]) Focus(field Field) { c.focus = field }

func (c *Controller[N]) Focused() Field { return c.focus }
func (c *Controller[N]) Input() domain.InputState { return c.input }
func (c *Controller[N]) SubmitEnabled() bool { return c.submitEnabled }
func (c *Controller[N]) Preview() string { return c.preview }
func (c *Controller[N]) Theme() Theme { return c.theme }
func (c *Controller[N]) View() *feed.View[N] { return c.view }
func (c *Controller[N]) FeedState() feed.State { return c.synchronizer.State() }

func (c *Controller[N]) refreshGate() {
	c.submitEnabled = c.gate.CanSubmit(c.input)
}
