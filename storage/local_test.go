package storage

import (
	"context"
	"fmt"
	"log/slog"
	"message-board/contract"
	"message-board/domain"
	"message-board/errors"
	"message-board/repositories"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu       sync.Mutex
	messages []string
}

func (c *collector) handle(fields domain.Fields) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, fields.String(domain.FieldMessage))
}

func (c *collector) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.messages...)
}

func (c *collector) waitFor(t *testing.T, n int) []string {
	t.Helper()
	require.Eventually(t, func() bool { return len(c.snapshot()) >= n }, 2*time.Second, 5*time.Millisecond)
	return c.snapshot()
}

func recordLogs(t *testing.T) map[string]contract.RecordLog {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	repository := repositories.NewRecordRepository(db, slog.Default())
	t.Cleanup(func() {
		repository.Close()
		_ = db.Close()
	})
	return map[string]contract.RecordLog{"memory": NewMemoryLog(), "badger": repository}
}

func TestLocalStore_Replays_Backlog_Then_Live_In_Order(t *testing.T) {
	for name, records := range recordLogs(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			log := logs.GetLoggerFromLevel(slog.LevelDebug)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			store := NewLocalStore(log, records)

			// Given a backlog of records
			for i := 0; i < 5; i++ {
				req.NoError(store.Append(ctx, "messages", domain.Fields{domain.FieldMessage: fmt.Sprintf("m%d", i)}))
			}

			// When a client subscribes then more records are appended
			c := &collector{}
			sub, err := store.Subscribe(ctx, "messages", c.handle)
			req.NoError(err)
			defer sub.Close()
			for i := 5; i < 50; i++ {
				req.NoError(store.Append(ctx, "messages", domain.Fields{domain.FieldMessage: fmt.Sprintf("m%d", i)}))
			}

			// Then every record arrives exactly once in append order
			got := c.waitFor(t, 50)
			req.Len(got, 50)
			for i, m := range got {
				req.Equal(fmt.Sprintf("m%d", i), m)
			}
		})
	}
}

func TestLocalStore_Concurrent_Appends_Share_One_Order(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := NewLocalStore(log, NewMemoryLog())

	first, second := &collector{}, &collector{}
	sub1, err := store.Subscribe(ctx, "messages", first.handle)
	req.NoError(err)
	defer sub1.Close()
	sub2, err := store.Subscribe(ctx, "messages", second.handle)
	req.NoError(err)
	defer sub2.Close()

	// When several writers append concurrently
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				_ = store.Append(ctx, "messages", domain.Fields{domain.FieldMessage: fmt.Sprintf("w%d-%d", w, i)})
			}
		}(w)
	}
	wg.Wait()

	// Then both subscribers observe the same total order
	req.Equal(first.waitFor(t, 100), second.waitFor(t, 100))
}

func TestLocalStore_Close_Subscription_Stops_Delivery(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctx := context.Background()
	store := NewLocalStore(log, NewMemoryLog())

	c := &collector{}
	sub, err := store.Subscribe(ctx, "messages", c.handle)
	req.NoError(err)
	req.NoError(store.Append(ctx, "messages", domain.Fields{domain.FieldMessage: "a"}))
	c.waitFor(t, 1)

	// When the subscription is closed
	req.NoError(sub.Close())
	req.NoError(store.Append(ctx, "messages", domain.Fields{domain.FieldMessage: "b"}))

	// Then nothing else arrives and the registry forgot the subscriber
	time.Sleep(30 * time.Millisecond)
	req.Equal([]string{"a"}, c.snapshot())
	req.Zero(store.Subscribers())
}

func TestLocalStore_Namespaces_Are_Isolated(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctx := context.Background()
	store := NewLocalStore(log, NewMemoryLog())

	c := &collector{}
	sub, err := store.Subscribe(ctx, "messages", c.handle)
	req.NoError(err)
	defer sub.Close()

	req.NoError(store.Append(ctx, "other", domain.Fields{domain.FieldMessage: "elsewhere"}))
	req.NoError(store.Append(ctx, "messages", domain.Fields{domain.FieldMessage: "here"}))

	req.Equal([]string{"here"}, c.waitFor(t, 1))
}

func TestLocalStore_Closed_Store_Rejects_Operations(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctx := context.Background()
	store := NewLocalStore(log, NewMemoryLog())

	req.NoError(store.Ping(ctx))
	store.Close()

	req.ErrorIs(store.Ping(ctx), errors.ErrStoreClosed)
	req.ErrorIs(store.Append(ctx, "messages", domain.Fields{domain.FieldMessage: "a"}), errors.ErrStoreClosed)
	_, err := store.Subscribe(ctx, "messages", func(domain.Fields) {})
	req.ErrorIs(err, errors.ErrStoreClosed)
}

func TestLocalStore_Rejects_Invalid_Namespace(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	store := NewLocalStore(log, NewMemoryLog())

	_, err := store.Subscribe(context.Background(), "", func(domain.Fields) {})
	req.ErrorIs(err, errors.ErrInvalidNamespace)
	req.ErrorIs(store.Append(context.Background(), "a:b", domain.Fields{"message": "x"}), errors.ErrInvalidNamespace)
}
