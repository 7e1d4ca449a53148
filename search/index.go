// Package search keeps a full-text index of feed records.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"message-board/domain"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/blugelabs/bluge"
)

const (
	fieldNamespace = "namespace"
	fieldSeq       = "seq"
	fieldLang      = "lang"
)

// Record fields stored in the index. Username and message are analyzed for matching.
var storedFields = []string{
	domain.FieldUsername,
	domain.FieldMessage,
	domain.FieldEmail,
	domain.FieldProfileImageURL,
	domain.FieldDate,
	domain.FieldTime,
}

type Hit struct {
	ID     string
	Seq    uint64
	Lang   string
	Fields domain.Fields
}

type Index struct {
	log    *slog.Logger
	writer *bluge.Writer
}

// Open opens the index at path, or an in-memory index when path is empty.
func Open(log *slog.Logger, path string) (*Index, error) {
	cfg := bluge.InMemoryOnlyConfig()
	if path != "" {
		cfg = bluge.DefaultConfig(path)
	}
	writer, err := bluge.OpenWriter(cfg)
	if err != nil {
		return nil, fmt.Errorf("open bluge writer: %w", err)
	}
	return &Index{log: log, writer: writer}, nil
}

// DocumentID identifies the seq-th record of namespace. Indexing the same
// record twice replaces the first document.
func DocumentID(namespace string, seq uint64) string {
	return fmt.Sprintf("%s:%019d", namespace, seq)
}

// Add indexes fields as the seq-th record of namespace.
func (i *Index) Add(namespace string, seq uint64, fields domain.Fields) error {
	id := DocumentID(namespace, seq)
	doc := bluge.NewDocument(id).
		AddField(bluge.NewKeywordField(fieldNamespace, namespace)).
		AddField(bluge.NewNumericField(fieldSeq, float64(seq)).StoreValue().Sortable())
	if lang := Language(fields.String(domain.FieldMessage)); lang != "" {
		doc.AddField(bluge.NewKeywordField(fieldLang, lang).StoreValue())
	}
	for _, name := range storedFields {
		value := fields.String(name)
		if value == "" {
			continue
		}
		if name == domain.FieldUsername || name == domain.FieldMessage {
			doc.AddField(bluge.NewTextField(name, value).StoreValue())
			continue
		}
		doc.AddField(bluge.NewKeywordField(name, value).StoreValue())
	}
	if err := i.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("index %s: %w", id, err)
	}
	return nil
}

// Search returns up to limit records of namespace whose username or message
// matches text, newest first. An empty text matches every record.
func (i *Index) Search(ctx context.Context, namespace, text string, limit int) ([]Hit, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	query := bluge.NewBooleanQuery().AddMust(bluge.NewTermQuery(namespace).SetField(fieldNamespace))
	if text = strings.TrimSpace(text); text != "" {
		query.AddMust(bluge.NewBooleanQuery().
			AddShould(bluge.NewMatchQuery(text).SetField(domain.FieldMessage)).
			AddShould(bluge.NewMatchQuery(text).SetField(domain.FieldUsername)).
			SetMinShould(1))
	}
	request := bluge.NewTopNSearch(limit, query).SortBy([]string{"-" + fieldSeq})

	matches, err := reader.Search(ctx, request)
	if err != nil {
		return nil, err
	}
	var hits []Hit
	match, err := matches.Next()
	for err == nil && match != nil {
		hit := Hit{Fields: domain.Fields{}}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.ID = string(value)
			case fieldSeq:
				if seq, decodeErr := bluge.DecodeNumericFloat64(value); decodeErr == nil {
					hit.Seq = uint64(seq)
				}
			case fieldLang:
				hit.Lang = string(value)
			default:
				hit.Fields[field] = string(value)
			}
			return true
		})
		if err != nil {
			break
		}
		hits = append(hits, hit)
		match, err = matches.Next()
	}
	if err != nil {
		return nil, err
	}
	return hits, nil
}

func (i *Index) Close() error {
	return i.writer.Close()
}

// Language returns the ISO 639-1 code of text, or "" when detection is not reliable.
func Language(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
