package websocket

import (
	"context"
	"fmt"
	"log/slog"
	"message-board/contract"
	"message-board/domain"
	"message-board/errors"
	"message-board/runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// RemoteStore is a contract.Store backed by a Hub on the other end of a websocket.
type RemoteStore struct {
	log  *slog.Logger
	conn *websocket.Conn

	writeMu sync.Mutex

	mu            sync.Mutex
	pending       map[string]chan error
	subscriptions map[string]*runtime.OrderedQueue[domain.Fields]
	closed        chan struct{}
	closeOnce     sync.Once
	err           error
}

// Dial connects to a Hub. The returned store reads frames until Close or a
// connection failure, after which every operation fails with ErrStoreClosed.
func Dial(ctx context.Context, log *slog.Logger, url string) (*RemoteStore, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	s := &RemoteStore{
		log:           log,
		conn:          conn,
		pending:       make(map[string]chan error),
		subscriptions: make(map[string]*runtime.OrderedQueue[domain.Fields]),
		closed:        make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// Append waits for the hub to acknowledge the record or ctx to end.
func (s *RemoteStore) Append(ctx context.Context, namespace string, fields domain.Fields) error {
	id := uuid.NewString()
	return s.request(ctx, Frame{Type: FrameAppend, ID: id, Namespace: namespace, Fields: fields})
}

// Subscribe registers handler before asking the hub for the stream, so the
// backlog the hub replays ahead of its ack is not lost.
func (s *RemoteStore) Subscribe(ctx context.Context, namespace string, handler func(domain.Fields)) (contract.Subscription, error) {
	id := uuid.NewString()
	queue := runtime.NewOrderedQueue(s.log, handler)

	s.mu.Lock()
	if s.err != nil {
		s.mu.Unlock()
		return nil, s.err
	}
	s.subscriptions[id] = queue
	s.mu.Unlock()
	queue.Start(ctx)

	if err := s.request(ctx, Frame{Type: FrameSubscribe, ID: id, Namespace: namespace}); err != nil {
		s.dropSubscription(id)
		return nil, err
	}
	return &remoteSubscription{id: id, store: s}, nil
}

// Ping checks the connection is still open.
func (s *RemoteStore) Ping(ctx context.Context) error {
	if err := s.failure(); err != nil {
		return err
	}
	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrStoreClosed, err)
	}
	return nil
}

// Close ends every subscription and the connection.
func (s *RemoteStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		err = s.conn.Close()
	})
	<-s.closed
	return err
}

func (s *RemoteStore) request(ctx context.Context, frame Frame) error {
	reply := make(chan error, 1)
	s.mu.Lock()
	if s.err != nil {
		s.mu.Unlock()
		return s.err
	}
	s.pending[frame.ID] = reply
	s.mu.Unlock()

	if err := s.write(frame); err != nil {
		s.resolve(frame.ID, nil)
		return fmt.Errorf("%w: %w", errors.ErrStoreClosed, err)
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		s.resolve(frame.ID, nil)
		return ctx.Err()
	}
}

func (s *RemoteStore) write(frame Frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(frame)
}

func (s *RemoteStore) readLoop() {
	for {
		var frame Frame
		if err := s.conn.ReadJSON(&frame); err != nil {
			s.fail(err)
			return
		}
		switch frame.Type {
		case FrameRecord:
			s.mu.Lock()
			queue, ok := s.subscriptions[frame.ID]
			s.mu.Unlock()
			if ok {
				queue.Push(frame.Fields)
			}
		case FrameAck:
			s.resolve(frame.ID, nil)
		case FrameError:
			s.resolve(frame.ID, fmt.Errorf("%w: %s", errors.ErrAppendRejected, frame.Error))
		default:
			s.log.Warn("Unknown frame from hub", "type", frame.Type)
		}
	}
}

// resolve hands err to the request waiting on id, if any.
func (s *RemoteStore) resolve(id string, err error) {
	s.mu.Lock()
	reply, ok := s.pending[id]
	delete(s.pending, id)
	s.mu.Unlock()
	if ok {
		reply <- err
	}
}

func (s *RemoteStore) fail(cause error) {
	err := fmt.Errorf("%w: %w", errors.ErrStoreClosed, cause)
	s.mu.Lock()
	s.err = err
	pending := s.pending
	subscriptions := s.subscriptions
	s.pending = make(map[string]chan error)
	s.subscriptions = make(map[string]*runtime.OrderedQueue[domain.Fields])
	s.mu.Unlock()

	for _, reply := range pending {
		reply <- err
	}
	for _, queue := range subscriptions {
		queue.Close()
	}
	s.log.Debug("Hub connection ended", "error", cause)
	close(s.closed)
}

func (s *RemoteStore) failure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *RemoteStore) dropSubscription(id string) {
	s.mu.Lock()
	queue, ok := s.subscriptions[id]
	delete(s.subscriptions, id)
	s.mu.Unlock()
	if ok {
		queue.Close()
	}
}

type remoteSubscription struct {
	id    string
	store *RemoteStore
	once  sync.Once
}

func (r *remoteSubscription) Close() error {
	var err error
	r.once.Do(func() {
		r.store.dropSubscription(r.id)
		if r.store.failure() != nil {
			return
		}
		err = r.store.write(Frame{Type: FrameUnsubscribe, ID: r.id})
	})
	return err
}
