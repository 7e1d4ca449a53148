// Package render turns stored message records into element trees.
// Rendering never interprets user-controlled fields as markup: every such
// field reaches the Builder through Text only.
package render

// Attr is a single element attribute, kept in insertion order.
type Attr struct {
	Key   string
	Value string
}

// Builder builds nodes of a UI layer. Implementations must treat the string
// given to Text as literal content.
type Builder[N any] interface {
	Element(tag, class string, attrs []Attr, children ...N) N
	Text(content string) N
}

// Node is a plain element tree used by headless consumers.
type Node struct {
	Tag      string
	Class    string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// IsText reports whether n is a literal text node.
func (n *Node) IsText() bool { return n.Tag == "" }

// Attr returns the value of the named attribute.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// TextContent concatenates every text node below n.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	var out string
	for _, c := range n.Children {
		out += c.TextContent()
	}
	return out
}

// Find returns the first element below n, n included, carrying class.
func (n *Node) Find(class string) *Node {
	if n.Class == class && !n.IsText() {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(class); found != nil {
			return found
		}
	}
	return nil
}

// TreeBuilder builds plain Node trees.
type TreeBuilder struct{}

func (TreeBuilder) Element(tag, class string, attrs []Attr, children ...*Node) *Node {
	return &Node{Tag: tag, Class: class, Attrs: attrs, Children: children}
}

func (TreeBuilder) Text(content string) *Node {
	return &Node{Text: content}
}
