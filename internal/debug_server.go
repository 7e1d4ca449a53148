package internal

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"message-board/contract"
	"message-board/domain"
	"message-board/render"
	"message-board/search"
	"net/http"
	"strconv"
)

//go:embed feed.html
var templatesFS embed.FS

const defaultSearchLimit = 50

// FeedSource reads the stored records of a namespace in append order.
type FeedSource interface {
	Scan(namespace string, fn func(contract.Entry) error) error
}

type Searcher interface {
	Search(ctx context.Context, namespace, text string, limit int) ([]search.Hit, error)
}

type StatsProvider func() map[string]any

type PageData struct {
	Title     string
	Namespace string
	Query     string
	Count     int
	Items     []template.HTML
	Stats     map[string]any
}

// DebugServer serves read-only HTML views of the feed: /feed lists a namespace
// in append order, /search lists the matches of the indexed namespace, newest first.
type DebugServer struct {
	log       *slog.Logger
	renderer  render.Renderer
	source    FeedSource
	searcher  Searcher
	namespace string
	stats     StatsProvider
	tmpl      *template.Template
}

func NewDebugServer(
	log *slog.Logger,
	renderer render.Renderer,
	source FeedSource,
	searcher Searcher,
	namespace string,
	stats StatsProvider,
) *DebugServer {
	return &DebugServer{
		log:       log,
		renderer:  renderer,
		source:    source,
		searcher:  searcher,
		namespace: namespace,
		stats:     stats,
		tmpl:      template.Must(template.ParseFS(templatesFS, "feed.html")),
	}
}

// Register mounts the debug routes on mux.
func (s *DebugServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /feed", s.feed)
	mux.HandleFunc("GET /search", s.search)
}

func (s *DebugServer) feed(w http.ResponseWriter, r *http.Request) {
	namespace := s.namespaceOf(r)
	var records []domain.MessageRecord
	err := s.source.Scan(namespace, func(entry contract.Entry) error {
		records = append(records, domain.RecordFromFields(entry.Fields))
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.write(w, PageData{Title: "Feed", Namespace: namespace}, records)
}

func (s *DebugServer) search(w http.ResponseWriter, r *http.Request) {
	if s.searcher == nil {
		http.Error(w, "search is not enabled", http.StatusNotFound)
		return
	}
	query := r.URL.Query().Get("q")
	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	hits, err := s.searcher.Search(r.Context(), s.namespace, query, limit)
	if err != nil {
		s.log.Warn("Search failed", "query", query, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	records := make([]domain.MessageRecord, 0, len(hits))
	for _, hit := range hits {
		records = append(records, domain.RecordFromFields(hit.Fields))
	}
	s.write(w, PageData{Title: "Search", Namespace: s.namespace, Query: query}, records)
}

func (s *DebugServer) write(w http.ResponseWriter, data PageData, records []domain.MessageRecord) {
	data.Count = len(records)
	data.Stats = map[string]any{}
	if s.stats != nil {
		data.Stats = s.stats()
	}
	for _, record := range records {
		// html.Render escapes every text node, so the markup is safe to embed.
		fragment, err := s.renderer.HTML(record)
		if err != nil {
			s.log.Warn("Record not rendered", "username", record.Username, "error", err)
			continue
		}
		data.Items = append(data.Items, template.HTML(fragment))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		s.log.Warn("Debug page not written", "error", err)
	}
}

func (s *DebugServer) namespaceOf(r *http.Request) string {
	if ns := r.URL.Query().Get("namespace"); ns != "" {
		return ns
	}
	return s.namespace
}
