// Package storage provides the in-process append-only store.
// A LocalStore persists through a contract.RecordLog and notifies every
// subscriber of a namespace in append order.
package storage

import (
	"context"
	"log/slog"
	"maps"
	"message-board/contract"
	"message-board/domain"
	"message-board/errors"
	"message-board/repositories"
	"message-board/runtime"
	"sync"

	"github.com/google/uuid"
)

type LocalStore struct {
	log      *slog.Logger
	records  contract.RecordLog
	registry *runtime.Registry

	// mu serializes appends with subscription replay, which gives every
	// subscriber the same total order per namespace.
	mu     sync.Mutex
	closed bool
}

func NewLocalStore(log *slog.Logger, records contract.RecordLog) *LocalStore {
	return &LocalStore{log: log, records: records, registry: runtime.NewRegistry()}
}

// Append persists fields then hands them to every current subscriber of namespace.
func (s *LocalStore) Append(ctx context.Context, namespace string, fields domain.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrStoreClosed
	}
	entry, err := s.records.Append(namespace, fields)
	if err != nil {
		return err
	}
	for _, sink := range s.registry.GetSinks(namespace) {
		sink.Deliver(maps.Clone(entry.Fields))
	}
	s.log.Debug("Record appended", "namespace", namespace, "key", entry.Key)
	return nil
}

// Subscribe replays the backlog of namespace then streams live appends to handler.
// The subscription ends when ctx is canceled or Close is called.
func (s *LocalStore) Subscribe(ctx context.Context, namespace string, handler func(domain.Fields)) (contract.Subscription, error) {
	if err := repositories.ValidateNamespace(namespace); err != nil {
		return nil, err
	}
	sub := &localSubscription{
		id:        uuid.NewString(),
		namespace: namespace,
		registry:  s.registry,
		queue:     runtime.NewOrderedQueue(s.log, handler),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.ErrStoreClosed
	}
	backlog := 0
	err := s.records.Scan(namespace, func(entry contract.Entry) error {
		sub.queue.Push(entry.Fields)
		backlog++
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.registry.Subscribe(sub.id, namespace, sub)
	sub.queue.Start(ctx)
	go func() {
		<-sub.queue.Done()
		s.registry.Unsubscribe(sub.id, namespace)
	}()

	s.log.Debug("Subscription opened", "namespace", namespace, "id", sub.id, "backlog", backlog)
	return sub, nil
}

// Ping reports ErrStoreClosed once the store is closed.
func (s *LocalStore) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrStoreClosed
	}
	return nil
}

// Close rejects further operations. Open subscriptions stop receiving records.
func (s *LocalStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Subscribers returns the number of open subscriptions.
func (s *LocalStore) Subscribers() int {
	return s.registry.Count()
}

// Scan exposes the underlying log, used by inspection pages.
func (s *LocalStore) Scan(namespace string, fn func(contract.Entry) error) error {
	return s.records.Scan(namespace, fn)
}

type localSubscription struct {
	id        string
	namespace string
	registry  *runtime.Registry
	queue     *runtime.OrderedQueue[domain.Fields]
}

func (l *localSubscription) Deliver(fields domain.Fields) {
	l.queue.Push(fields)
}

func (l *localSubscription) Close() error {
	l.queue.Close()
	l.registry.Unsubscribe(l.id, l.namespace)
	return nil
}
