package workers

import (
	"context"
	"log/slog"
	"message-board/contract"
	"message-board/domain"
)

// RecordIndexer is the part of search.Index the IndexWorker writes to.
type RecordIndexer interface {
	Add(namespace string, seq uint64, fields domain.Fields) error
}

// IndexWorker subscribes to one namespace and indexes every record it receives.
// Records are numbered in subscription order, which is the store order, so a
// restarted worker rewrites the same documents.
type IndexWorker struct {
	log       *slog.Logger
	store     contract.Store
	index     RecordIndexer
	namespace string
}

func NewIndexWorker(log *slog.Logger, store contract.Store, index RecordIndexer, namespace string) *IndexWorker {
	return &IndexWorker{log: log, store: store, index: index, namespace: namespace}
}

func (w *IndexWorker) Run(ctx context.Context) error {
	var seq uint64
	sub, err := w.store.Subscribe(ctx, w.namespace, func(fields domain.Fields) {
		if err := w.index.Add(w.namespace, seq, fields); err != nil {
			w.log.Warn("Record not indexed", "namespace", w.namespace, "seq", seq, "error", err)
		}
		seq++
	})
	if err != nil {
		return err
	}
	defer func() { _ = sub.Close() }()

	w.log.Debug("Indexing feed", "namespace", w.namespace)
	<-ctx.Done()
	return nil
}
