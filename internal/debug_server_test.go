package internal

import (
	"context"
	"log/slog"
	"message-board/domain"
	"message-board/render"
	"message-board/search"
	"message-board/shortcode"
	"message-board/storage"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newDebugMux(t *testing.T) *http.ServeMux {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctx := context.Background()

	store := storage.NewLocalStore(log, storage.NewMemoryLog())
	index, err := search.Open(log, "")
	req.NoError(err)
	t.Cleanup(func() { _ = index.Close() })

	records := []domain.MessageRecord{
		{Username: "Ada", Message: "gg :fire:", Date: "3/5/2024", Time: "2:07:09 PM"},
		{Username: "Mallory", Message: "<script>alert(1)</script>", Email: "m@example.com"},
	}
	for i, record := range records {
		req.NoError(store.Append(ctx, "messages", record.Fields()))
		req.NoError(index.Add("messages", uint64(i), record.Fields()))
	}

	server := NewDebugServer(log, render.NewRenderer(shortcode.MustDefault()), store, index, "messages",
		func() map[string]any { return map[string]any{"clients": 3} })
	mux := http.NewServeMux()
	server.Register(mux)
	return mux
}

func get(mux *http.ServeMux, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestDebugServer_Feed(t *testing.T) {
	req := require.New(t)
	mux := newDebugMux(t)

	rec := get(mux, "/feed")

	req.Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	req.Contains(body, "2 records")
	req.Contains(body, "clients: 3")
	req.Contains(body, "Ada:")
	req.Contains(body, "gg 🔥")
	req.Contains(body, "Email: m@example.com")
	req.Contains(body, "&lt;script&gt;alert(1)&lt;/script&gt;")
	req.NotContains(body, "<script>alert(1)</script>")
	req.Less(strings.Index(body, "Ada:"), strings.Index(body, "Mallory:"))
}

func TestDebugServer_Feed_Other_Namespaces(t *testing.T) {
	req := require.New(t)
	mux := newDebugMux(t)

	rec := get(mux, "/feed?namespace=empty")
	req.Equal(http.StatusOK, rec.Code)
	req.Contains(rec.Body.String(), "No records.")

	rec = get(mux, "/feed?namespace=a:b")
	req.Equal(http.StatusBadRequest, rec.Code)
}

func TestDebugServer_Search(t *testing.T) {
	req := require.New(t)
	mux := newDebugMux(t)

	rec := get(mux, "/search?q=mallory")
	req.Equal(http.StatusOK, rec.Code)
	req.Contains(rec.Body.String(), "1 records")
	req.Contains(rec.Body.String(), "Mallory:")
	req.NotContains(rec.Body.String(), "Ada:")

	rec = get(mux, "/search?q=x&limit=zero")
	req.Equal(http.StatusBadRequest, rec.Code)
}
