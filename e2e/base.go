package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"message-board/controller"
	"message-board/domain"
	"message-board/feed"
	"message-board/gate"
	"message-board/infrastructure/websocket"
	"message-board/render"
	"message-board/repositories"
	"message-board/shortcode"
	"message-board/storage"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

type BaseFeedSuite struct {
	suite.Suite
	Config Config
	Log    *slog.Logger
	URL    string

	db     *badger.DB
	server *httptest.Server
}

// SetupSuite loads the configuration and, without E2E_FEED_URL, starts a daemon.
func (s *BaseFeedSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	s.Log = logs.GetLoggerFromLevel(slog.LevelDebug)

	if s.Config.FeedURL != "" {
		s.URL = s.Config.FeedURL
		return
	}
	s.db, err = badger.Open(badger.DefaultOptions(s.T().TempDir()).WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)
	store := storage.NewLocalStore(s.Log, repositories.NewRecordRepository(s.db, s.Log))
	s.server = httptest.NewServer(websocket.NewHub(s.Log, store))
	s.URL = "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
}

func (s *BaseFeedSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}

// Board is one connected client: a controller whose records arrive on Inbox.
type Board struct {
	Ctrl         *controller.Controller[*render.Node]
	Synchronizer *feed.Synchronizer
	Inbox        chan domain.MessageRecord
}

// WithBoard connects a board client for the duration of fn.
func (s *BaseFeedSuite) WithBoard(name string, fn func(ctx context.Context, board Board)) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	remote, err := websocket.Dial(ctx, s.Log, s.URL)
	s.Require().NoError(err, "Failed to connect to feed at "+s.URL)
	defer func() { _ = remote.Close() }()

	synchronizer := feed.NewSynchronizer(s.Log, remote, s.Config.Namespace)
	defer func() { _ = synchronizer.Close() }()
	board := Board{
		Ctrl: controller.New[*render.Node](s.Log, gate.New(), synchronizer,
			render.NewRenderer(shortcode.MustDefault()), render.TreeBuilder{}, nil),
		Synchronizer: synchronizer,
		Inbox:        make(chan domain.MessageRecord, 1024),
	}
	state, err := board.Ctrl.Start(ctx, func(record domain.MessageRecord) {
		s.dump(name, record)
		board.Inbox <- record
	})
	s.Require().NoError(err)
	s.Require().Equal(feed.Active, state)

	fn(ctx, board)
}

// Drain hands n records from the inbox to the controller, as the UI loop does.
func (s *BaseFeedSuite) Drain(board Board, n int) {
	for i := 0; i < n; i++ {
		select {
		case record := <-board.Inbox:
			board.Ctrl.Receive(record)
		case <-time.After(5 * time.Second):
			s.FailNow(fmt.Sprintf("record %d of %d was not delivered", i+1, n))
		}
	}
}

func (s *BaseFeedSuite) dump(board string, record domain.MessageRecord) {
	if !s.Config.DebugJSON {
		return
	}
	payload, err := structpb.NewStruct(record.Fields())
	if err != nil {
		s.T().Logf("%s: %v", board, err)
		return
	}
	s.T().Logf("%s received:\n%s", board, protojson.MarshalOptions{Multiline: true}.Format(payload))
}
