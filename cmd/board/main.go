// Command board is the terminal client of the message board.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"message-board/contract"
	"message-board/controller"
	"message-board/domain"
	"message-board/feed"
	"message-board/gate"
	"message-board/infrastructure/websocket"
	"message-board/internal"
	"message-board/render"
	"message-board/shortcode"
	"message-board/ui"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Board error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Configuration & Logger. The terminal belongs to the UI, so logs go to a file.
	config, err := internal.LoadClientConfig()
	if err != nil {
		return exitConfig, err
	}
	logFile, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return exitConfig, fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(config.LogLevel))); err != nil {
		return exitConfig, fmt.Errorf("BOARD_LOG_LEVEL: %w", err)
	}
	log := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Store client. Without one the board still composes, but the feed is off.
	var store contract.Store
	if config.ServerURL != "" {
		dialCtx, cancel := context.WithTimeout(ctx, config.DialTimeout)
		remote, err := websocket.Dial(dialCtx, log, config.ServerURL)
		cancel()
		if err != nil {
			log.Warn("Store not reachable, running without feed", "url", config.ServerURL, "error", err)
		} else {
			defer func() { _ = remote.Close() }()
			store = remote
		}
	}

	// 3. Controller and event loop
	renderer := render.NewRenderer(shortcode.MustDefault())
	synchronizer := feed.NewSynchronizer(log, store, config.Namespace)
	defer func() { _ = synchronizer.Close() }()
	ctrl := controller.New[*render.Node](log, gate.New(), synchronizer, renderer, render.TreeBuilder{}, nil)

	program := tea.NewProgram(ui.NewModel(ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	deliver := ui.Deliver(program)
	state, err := ctrl.Start(ctx, func(record domain.MessageRecord) {
		log.Debug("Record received", "record", renderer.Plain(record))
		deliver(record)
	})
	if err != nil {
		log.Warn("Feed subscription failed", "error", err)
	}
	log.Info("Board started", "namespace", config.Namespace, "feed", state.String())

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return exitRuntime, fmt.Errorf("terminal UI: %w", err)
	}
	return exitOK, nil
}
