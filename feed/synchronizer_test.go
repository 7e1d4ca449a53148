package feed

import (
	"context"
	"fmt"
	"log/slog"
	"message-board/contract"
	"message-board/domain"
	"message-board/errors"
	"message-board/mocks"
	"message-board/storage"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const namespace = "messages"

type received struct {
	mu      sync.Mutex
	records []domain.MessageRecord
}

func (r *received) onAppend(record domain.MessageRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
}

func (r *received) snapshot() []domain.MessageRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.MessageRecord(nil), r.records...)
}

type probingStore struct {
	*mocks.MockStore
	*mocks.MockProber
}

func TestSynchronizer_Delivers_Records_In_Store_Order(t *testing.T) {
	for _, n := range []int{0, 1, 7, 120} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			req := require.New(t)
			log := logs.GetLoggerFromLevel(slog.LevelDebug)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			// Given a store whose backlog holds the first half of the records
			store := storage.NewLocalStore(log, storage.NewMemoryLog())
			var expected []domain.MessageRecord
			for i := 0; i < n; i++ {
				expected = append(expected, domain.MessageRecord{Username: "u", Message: fmt.Sprintf("m%d", i)})
			}
			for _, record := range expected[:n/2] {
				req.NoError(store.Append(ctx, namespace, record.Fields()))
			}

			// When the synchronizer subscribes and the rest is appended live
			synchronizer := NewSynchronizer(log, store, namespace)
			req.Equal(Attempting, synchronizer.Start(ctx))
			got := &received{}
			req.NoError(synchronizer.Subscribe(got.onAppend))
			req.Equal(Active, synchronizer.State())
			for _, record := range expected[n/2:] {
				req.NoError(store.Append(ctx, namespace, record.Fields()))
			}

			// Then each record is delivered exactly once, in order
			req.Eventually(func() bool { return len(got.snapshot()) == n }, 2*time.Second, 5*time.Millisecond)
			time.Sleep(20 * time.Millisecond)
			req.Equal(expected, got.snapshot())
		})
	}
}

func TestSynchronizer_Append_Comes_Back_Through_Subscription_Only(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := storage.NewLocalStore(log, storage.NewMemoryLog())
	synchronizer := NewSynchronizer(log, store, namespace)
	synchronizer.Start(ctx)
	got := &received{}
	req.NoError(synchronizer.Subscribe(got.onAppend))

	record := domain.MessageRecord{Username: "Ada", Message: "gg :fire:", ProfileImageURL: domain.PlaceholderAvatarURL}
	req.True(synchronizer.Append(record))
	synchronizer.Wait()

	req.Eventually(func() bool { return len(got.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	req.Equal([]domain.MessageRecord{record}, got.snapshot())
}

func TestSynchronizer_Absent_Store_Is_Unavailable(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	synchronizer := NewSynchronizer(log, nil, namespace)

	// When the store client is missing at startup
	req.Equal(Unavailable, synchronizer.Start(context.Background()))

	// Then subscription is never attempted and appends are not dispatched
	req.ErrorIs(synchronizer.Subscribe(func(domain.MessageRecord) {}), errors.ErrStoreUnavailable)
	req.False(synchronizer.Append(domain.MessageRecord{Username: "Ada", Message: "hi"}))

	// And the state is terminal
	req.Equal(Unavailable, synchronizer.Start(context.Background()))
	req.NoError(synchronizer.Close())
}

func TestSynchronizer_Unreachable_Store_Is_Unavailable(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := probingStore{MockStore: mocks.NewMockStore(ctrl), MockProber: mocks.NewMockProber(ctrl)}
	// Given the store does not answer the startup probe
	store.MockProber.EXPECT().Ping(gomock.Any()).Return(fmt.Errorf("dial tcp: refused")).Times(1)
	// Then neither Subscribe nor Append reach the store
	store.MockStore.EXPECT().Subscribe(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	store.MockStore.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	synchronizer := NewSynchronizer(log, store, namespace)
	req.Equal(Unavailable, synchronizer.Start(context.Background()))
	req.ErrorIs(synchronizer.Subscribe(func(domain.MessageRecord) {}), errors.ErrStoreUnavailable)
	req.False(synchronizer.Append(domain.MessageRecord{Username: "Ada", Message: "hi"}))
	synchronizer.Wait()
}

func TestSynchronizer_Append_Failure_Is_Silent(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	mockSubscription := mocks.NewMockSubscription(ctrl)
	mockStore.EXPECT().Subscribe(gomock.Any(), namespace, gomock.Any()).Return(mockSubscription, nil).Times(1)
	// Given the store rejects the append
	mockStore.EXPECT().Append(gomock.Any(), namespace, gomock.Any()).Return(errors.ErrAppendRejected).Times(1)
	mockSubscription.EXPECT().Close().Return(nil).Times(1)

	synchronizer := NewSynchronizer(log, mockStore, namespace)
	synchronizer.Start(context.Background())
	got := &received{}
	req.NoError(synchronizer.Subscribe(got.onAppend))

	// When a record is appended
	dispatched := synchronizer.Append(domain.MessageRecord{Username: "Ada", Message: "hi"})
	synchronizer.Wait()

	// Then the caller only learns the record was dispatched, and nothing is rendered
	req.True(dispatched)
	req.Empty(got.snapshot())
	req.Equal(Active, synchronizer.State())
	req.NoError(synchronizer.Close())
}

func TestSynchronizer_Append_Failure_Reaches_Optional_Handler(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	mockStore.EXPECT().Append(gomock.Any(), namespace, gomock.Any()).Return(errors.ErrAppendRejected).Times(1)

	var failed []error
	var mu sync.Mutex
	s := NewSynchronizer(log, mockStore, namespace, WithAppendErrorHandler(func(_ domain.MessageRecord, err error) {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, err)
	}))
	s.Start(context.Background())

	req.True(s.Append(domain.MessageRecord{Username: "Ada", Message: "hi"}))
	s.Wait()

	mu.Lock()
	defer mu.Unlock()
	req.Len(failed, 1)
	req.ErrorIs(failed[0], errors.ErrAppendRejected)
}

func TestSynchronizer_Subscription_Lifecycle_Errors(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockStore(ctrl)
	mockStore.EXPECT().Subscribe(gomock.Any(), namespace, gomock.Any()).
		Return(nil, fmt.Errorf("permission denied")).Times(1)

	s := NewSynchronizer(log, mockStore, namespace)

	// Given the synchronizer was not started
	req.ErrorIs(s.Subscribe(func(domain.MessageRecord) {}), errors.ErrNotStarted)
	req.False(s.Append(domain.MessageRecord{Username: "Ada", Message: "hi"}))

	// When the store refuses the subscription
	s.Start(context.Background())
	err := s.Subscribe(func(domain.MessageRecord) {})

	// Then the feed is unavailable for the rest of the session
	req.ErrorIs(err, errors.ErrStoreUnavailable)
	req.Equal(Unavailable, s.State())
	req.ErrorIs(s.Subscribe(func(domain.MessageRecord) {}), errors.ErrStoreUnavailable)
}

func TestSynchronizer_Single_Subscription(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store contract.Store = storage.NewLocalStore(log, storage.NewMemoryLog())
	s := NewSynchronizer(log, store, namespace)
	s.Start(ctx)

	req.NoError(s.Subscribe(func(domain.MessageRecord) {}))
	req.ErrorIs(s.Subscribe(func(domain.MessageRecord) {}), errors.ErrAlreadySubscribed)
	req.NoError(s.Close())
}

func TestView_Append_Scrolls_To_Newest(t *testing.T) {
	req := require.New(t)
	view := NewView[string]()
	req.Equal(-1, view.ScrollPosition())

	view.Append("a")
	view.Append("b")

	req.Equal([]string{"a", "b"}, view.Items())
	req.Equal(2, view.Len())
	req.Equal(1, view.ScrollPosition())
}
