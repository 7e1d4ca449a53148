// Command feedd serves an append-only message feed over websocket.
package main

import (
	"context"
	"fmt"
	"message-board/infrastructure/websocket"
	"message-board/internal"
	"message-board/render"
	"message-board/repositories"
	"message-board/runtime/workers"
	"message-board/search"
	"message-board/shortcode"
	"message-board/storage"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Configuration & Logger
	config, err := internal.LoadServerConfig()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage: badger record log behind the local store
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()
	records := repositories.NewRecordRepository(db, log)
	defer records.Close()
	store := storage.NewLocalStore(log, records)
	defer store.Close()

	index, err := search.Open(log, config.BlugeFilepath)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("Closing search index...")
		_ = index.Close()
	}()

	// 3. HTTP surface: websocket hub and debug pages
	hub := websocket.NewHub(log, store)
	sup := workers.NewSupervisor(log, config.RestartInterval)
	stats := func() map[string]any {
		return map[string]any{
			"clients":     hub.ClientCount(),
			"subscribers": store.Subscribers(),
			"restarts":    sup.Restarts(),
		}
	}
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	internal.NewDebugServer(log, render.NewRenderer(shortcode.MustDefault()), store, index, config.Namespace, stats).
		Register(mux)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Supervised workers, until a signal arrives
	sup.Add(
		workers.NewServerWorker(log, config.Addr(), mux),
		workers.NewIndexWorker(log, store, index, config.Namespace),
		workers.NewHealthWorker(log, config.HealthInterval,
			workers.Gauge{Name: "clients", Read: hub.ClientCount},
			workers.Gauge{Name: "subscribers", Read: store.Subscribers},
			workers.Gauge{Name: "restarts", Read: sup.Restarts},
		),
	)
	log.Info("Feed daemon started", "addr", config.Addr(), "namespace", config.Namespace)
	sup.Run(ctx)

	log.Info("Program stopped cleanly")
	return nil
}
