package runtime

import (
	"message-board/contract"
	"sort"
	"sync"
)

type subscriber struct {
	seq  uint64
	sink contract.RecordSink
}

type Registry struct {
	mu         sync.RWMutex
	next       uint64
	namespaces map[string]map[string]subscriber // namespace -> subscriber id -> sink
}

func NewRegistry() *Registry {
	return &Registry{
		namespaces: make(map[string]map[string]subscriber),
	}
}

// GetSinks returns the sinks subscribed to namespace in subscription order.
// Returns nil if nobody listens on namespace.
func (r *Registry) GetSinks(namespace string) []contract.RecordSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.namespaces[namespace]
	if !ok {
		return nil
	}
	subs := make([]subscriber, 0, len(members))
	for _, s := range members {
		subs = append(subs, s)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].seq < subs[j].seq })

	sinks := make([]contract.RecordSink, len(subs))
	for i, s := range subs {
		sinks[i] = s.sink
	}
	return sinks
}

// Subscribe registers sink under id for namespace, replacing a previous sink with the same id.
// If the namespace does not yet exist in the registry, it is initialized on the fly.
func (r *Registry) Subscribe(id, namespace string, sink contract.RecordSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.namespaces[namespace]; !ok {
		r.namespaces[namespace] = make(map[string]subscriber)
	}
	r.next++
	r.namespaces[namespace][id] = subscriber{seq: r.next, sink: sink}
}

// Unsubscribe removes id from namespace and drops the namespace once empty.
func (r *Registry) Unsubscribe(id, namespace string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.namespaces[namespace]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(r.namespaces, namespace)
	}
}

// Count returns the number of subscribers across namespaces.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, members := range r.namespaces {
		total += len(members)
	}
	return total
}
