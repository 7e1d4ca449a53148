package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// OrderedQueue hands items to a single consumer in push order.
// Push never blocks and never drops: the queue is unbounded, so a slow
// consumer delays delivery but never loses or reorders an item.
type OrderedQueue[T any] struct {
	log     *slog.Logger
	handler func(T)

	mu     sync.Mutex
	items  []T
	closed bool
	signal chan struct{}
	done   chan struct{}
}

func NewOrderedQueue[T any](log *slog.Logger, handler func(T)) *OrderedQueue[T] {
	return &OrderedQueue[T]{
		log:     log,
		handler: handler,
		signal:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Start runs the consumer in its own goroutine.
func (q *OrderedQueue[T]) Start(ctx context.Context) *OrderedQueue[T] {
	go func() { _ = q.Run(ctx) }()
	return q
}

// Run consumes items until the queue is closed or ctx is canceled.
func (q *OrderedQueue[T]) Run(ctx context.Context) error {
	defer close(q.done)
	for {
		item, ok := q.pop()
		if ok {
			q.handle(item)
			continue
		}
		if q.isClosed() {
			return nil
		}
		select {
		case <-ctx.Done():
			q.Close()
			return nil
		case <-q.signal:
		}
	}
}

// Push enqueues item. It returns false once the queue is closed.
func (q *OrderedQueue[T]) Push(item T) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, item)
	q.mu.Unlock()
	q.notify()
	return true
}

// Close stops delivery. Items still queued are discarded.
func (q *OrderedQueue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.items = nil
	q.mu.Unlock()
	q.notify()
}

// Done is closed once the consumer has returned.
func (q *OrderedQueue[T]) Done() <-chan struct{} { return q.done }

// Len returns the number of items waiting for the consumer.
func (q *OrderedQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *OrderedQueue[T]) pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	if q.closed || len(q.items) == 0 {
		return zero, false
	}
	item := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return item, true
}

func (q *OrderedQueue[T]) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

func (q *OrderedQueue[T]) notify() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// handle isolates the consumer from a panicking handler; the item is lost
// but later items are still delivered.
func (q *OrderedQueue[T]) handle(item T) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("Queue handler panicked", "panic", fmt.Sprint(r))
		}
	}()
	q.handler(item)
}
