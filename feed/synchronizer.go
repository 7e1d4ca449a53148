// Package feed keeps the visible feed in step with the remote append-only store.
//
// A Synchronizer owns at most one subscription for the life of a session.
// Records reach the caller only through that subscription, including the
// ones the caller appended itself: there is no local echo.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"message-board/contract"
	"message-board/domain"
	"message-board/errors"
	"sync"
)

// State of the subscription.
type State int

const (
	Uninitialized State = iota
	Attempting
	Active
	Unavailable // terminal
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Attempting:
		return "attempting"
	case Active:
		return "active"
	case Unavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// AppendErrorHandler is told about appends the store did not accept.
type AppendErrorHandler func(record domain.MessageRecord, err error)

type Option func(*Synchronizer)

// WithAppendErrorHandler surfaces append failures. Without it they are only logged.
func WithAppendErrorHandler(h AppendErrorHandler) Option {
	return func(s *Synchronizer) { s.onAppendError = h }
}

type Synchronizer struct {
	log       *slog.Logger
	store     contract.Store
	namespace string

	onAppendError AppendErrorHandler

	mu           sync.Mutex
	state        State
	ctx          context.Context
	subscribed   bool
	subscription contract.Subscription
	pending      sync.WaitGroup
}

// NewSynchronizer binds to store, which may be nil when no store client exists.
func NewSynchronizer(log *slog.Logger, store contract.Store, namespace string, opts ...Option) *Synchronizer {
	s := &Synchronizer{log: log, store: store, namespace: namespace}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start evaluates store availability once. A missing or unreachable store moves
// the synchronizer to Unavailable for good; composing still works but nothing is
// sent or received. ctx bounds every later store operation.
func (s *Synchronizer) Start(ctx context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Uninitialized {
		return s.state
	}
	s.ctx = ctx
	if s.store == nil {
		s.log.Warn("Store client not present, feed disabled", "namespace", s.namespace)
		s.state = Unavailable
		return s.state
	}
	if prober, ok := s.store.(contract.Prober); ok {
		if err := prober.Ping(ctx); err != nil {
			s.log.Warn("Store unreachable, feed disabled", "namespace", s.namespace, "error", err)
			s.state = Unavailable
			return s.state
		}
	}
	s.state = Attempting
	return s.state
}

// Subscribe opens the single subscription. onAppend is called once per record,
// backlog first, in store order, never concurrently with itself.
func (s *Synchronizer) Subscribe(onAppend func(domain.MessageRecord)) error {
	s.mu.Lock()
	switch {
	case s.state == Uninitialized:
		s.mu.Unlock()
		return errors.ErrNotStarted
	case s.state == Unavailable:
		s.mu.Unlock()
		return errors.ErrStoreUnavailable
	case s.subscribed:
		s.mu.Unlock()
		return errors.ErrAlreadySubscribed
	}
	s.subscribed = true
	ctx := s.ctx
	s.mu.Unlock()

	sub, err := s.store.Subscribe(ctx, s.namespace, func(fields domain.Fields) {
		onAppend(domain.RecordFromFields(fields))
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Warn("Subscription failed, feed disabled", "namespace", s.namespace, "error", err)
		s.state = Unavailable
		return fmt.Errorf("%w: %w", errors.ErrStoreUnavailable, err)
	}
	s.subscription = sub
	s.state = Active
	s.log.Debug("Feed subscription active", "namespace", s.namespace)
	return nil
}

// Append submits record without blocking the caller. The record is shown
// later, when the subscription delivers it back. Failures are logged and
// passed to the optional AppendErrorHandler; they are not returned.
// It reports whether the record was dispatched to the store.
func (s *Synchronizer) Append(record domain.MessageRecord) bool {
	s.mu.Lock()
	if s.state != Attempting && s.state != Active {
		state := s.state
		s.mu.Unlock()
		s.log.Debug("Append skipped", "state", state.String())
		return false
	}
	ctx := s.ctx
	s.pending.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.pending.Done()
		if err := s.store.Append(ctx, s.namespace, record.Fields()); err != nil {
			s.log.Warn("Append failed", "namespace", s.namespace, "username", record.Username, "error", err)
			if s.onAppendError != nil {
				s.onAppendError(record, err)
			}
		}
	}()
	return true
}

// Wait blocks until every dispatched append has completed.
func (s *Synchronizer) Wait() {
	s.pending.Wait()
}

// State returns the current subscription state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close ends the subscription and waits for in-flight appends.
func (s *Synchronizer) Close() error {
	s.mu.Lock()
	sub := s.subscription
	s.subscription = nil
	s.mu.Unlock()

	s.pending.Wait()
	if sub != nil {
		return sub.Close()
	}
	return nil
}
