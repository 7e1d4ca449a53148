// Package shortcode expands colon-wrapped short-codes into symbols before display.
package shortcode

import (
	"message-board/errors"
	"sort"
	"strings"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Code maps one short-code to its symbol.
type Code struct {
	Pattern string
	Symbol  string
}

// Table is an ordered list of short-codes.
type Table []Code

// DefaultTable returns a fresh copy of the built-in short-codes.
func DefaultTable() Table {
	return Table{
		{Pattern: ":heart:", Symbol: "❤️"},
		{Pattern: ":smile:", Symbol: "😄"},
		{Pattern: ":thumbsup:", Symbol: "👍"},
		{Pattern: ":fire:", Symbol: "🔥"},
		{Pattern: ":laugh:", Symbol: "😂"},
		{Pattern: ":100:", Symbol: "💯"},
		{Pattern: ":pizza:", Symbol: "🍕"},
	}
}

// Transformer replaces literal short-code occurrences. It is immutable after
// construction and safe for concurrent use.
type Transformer struct {
	matcher *goahocorasick.Machine
	symbols map[string]string
	order   []string
}

// NewTransformer builds the Aho-Corasick automaton over the table patterns.
func NewTransformer(table Table) (*Transformer, error) {
	symbols := make(map[string]string, len(table))
	patterns := make([][]rune, 0, len(table))
	order := make([]string, 0, len(table))
	for _, code := range table {
		if code.Pattern == "" {
			return nil, errors.ErrInvalidShortcode
		}
		if _, ok := symbols[code.Pattern]; ok {
			return nil, errors.ErrDuplicateShortcode
		}
		symbols[code.Pattern] = code.Symbol
		order = append(order, code.Pattern)
		patterns = append(patterns, []rune(code.Pattern))
	}

	t := &Transformer{symbols: symbols, order: order}
	if len(patterns) == 0 {
		return t, nil
	}
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	t.matcher = m
	return t, nil
}

// MustDefault returns a transformer over DefaultTable.
func MustDefault() *Transformer {
	t, err := NewTransformer(DefaultTable())
	if err != nil {
		panic(err)
	}
	return t
}

// Transform returns text with each short-code replaced by its symbol. Codes
// are applied one pass at a time in table order, each pass over the output of
// the previous one, replacing every non-overlapping occurrence left to right.
// Matching is exact and case-sensitive. Bytes outside a match, invalid UTF-8
// included, are copied unchanged.
func (t *Transformer) Transform(text string) string {
	if t == nil || t.matcher == nil || text == "" {
		return text
	}
	for _, pattern := range t.order {
		text = t.replace(text, pattern)
	}
	return text
}

// replace runs the pass of one pattern.
func (t *Transformer) replace(text, pattern string) string {
	runes := []rune(text)
	var spans []*goahocorasick.Term
	for _, span := range t.matcher.MultiPatternSearch(runes, false) {
		if string(span.Word) == pattern {
			spans = append(spans, span)
		}
	}
	if len(spans) == 0 {
		return text
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Pos < spans[j].Pos })

	// offsets[k] is the byte index of the k-th rune; an invalid byte counts as one rune.
	offsets := make([]int, 0, len(runes)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))

	var b strings.Builder
	b.Grow(len(text))
	cursor := 0
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < cursor || end > len(runes) {
			continue
		}
		b.WriteString(text[offsets[cursor]:offsets[start]])
		b.WriteString(t.symbols[pattern])
		cursor = end
	}
	b.WriteString(text[offsets[cursor]:])
	return b.String()
}
