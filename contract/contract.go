//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"message-board/domain"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Store is an append-only record store.
// Subscribe delivers the namespace backlog followed by live appends, each
// record exactly once, in one total order, through a single goroutine.
type Store interface {
	Append(ctx context.Context, namespace string, fields domain.Fields) error
	Subscribe(ctx context.Context, namespace string, handler func(domain.Fields)) (Subscription, error)
}

// Prober is implemented by stores able to tell whether they are reachable.
type Prober interface {
	Ping(ctx context.Context) error
}

type Subscription interface {
	Close() error
}

// RecordSink receives the records of one namespace in store order.
type RecordSink interface {
	Deliver(fields domain.Fields)
}

// RecordLog is the durable half of a store: an ordered, append-only log per namespace.
type RecordLog interface {
	Append(namespace string, fields domain.Fields) (Entry, error)
	Scan(namespace string, fn func(Entry) error) error
	Namespaces() ([]string, error)
}

// Entry is one appended record with its position in the namespace.
type Entry struct {
	Key    string
	Seq    uint64
	Fields domain.Fields
}
