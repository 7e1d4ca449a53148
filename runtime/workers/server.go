package workers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// ServerWorker serves HTTP until its context ends.
type ServerWorker struct {
	log     *slog.Logger
	addr    string
	handler http.Handler
}

func NewServerWorker(log *slog.Logger, addr string, handler http.Handler) *ServerWorker {
	return &ServerWorker{log: log, addr: addr, handler: handler}
}

func (w *ServerWorker) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              w.addr,
		Handler:           w.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		w.log.Info("HTTP server listening", "addr", w.addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			w.log.Warn("HTTP server shutdown failed", "error", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
