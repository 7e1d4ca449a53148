package render

import (
	"bytes"
	"message-board/domain"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLBuilder builds golang.org/x/net/html nodes. Text becomes a TextNode,
// which html.Render escapes, so user content never turns into markup.
type HTMLBuilder struct{}

func (HTMLBuilder) Element(tag, class string, attrs []Attr, children ...*html.Node) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(tag)),
		Data:     tag,
	}
	if class != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
	}
	for _, a := range attrs {
		n.Attr = append(n.Attr, html.Attribute{Key: a.Key, Val: a.Value})
	}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func (HTMLBuilder) Text(content string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: content}
}

// HTML renders record and serializes it.
func (r Renderer) HTML(record domain.MessageRecord) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, Render[*html.Node](r, HTMLBuilder{}, record)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
