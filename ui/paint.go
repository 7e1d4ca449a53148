package ui

import (
	"message-board/render"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// Paint draws a rendered message for the terminal. Text nodes are printed
// literally: escape sequences and control characters are removed first.
func Paint(node *render.Node, s Styles) string {
	var lines []string
	for _, child := range node.Children {
		switch child.Class {
		case render.ClassAvatar:
			src, _ := child.Attr("src")
			alt, _ := child.Attr("alt")
			lines = append(lines, s.Avatar.Render("["+Literal(alt)+"] "+Literal(src)))
		case render.ClassUsername:
			lines = append(lines, s.Username.Render(text(child)))
		case render.ClassBody:
			lines = append(lines, s.Body.Render(text(child)))
		case render.ClassMeta:
			var items []string
			for _, item := range child.Children {
				items = append(items, text(item))
			}
			if len(items) > 0 {
				lines = append(lines, s.Meta.Render(strings.Join(items, "  ·  ")))
			}
		}
	}
	return s.Entry.Render(strings.Join(lines, "\n"))
}

func text(n *render.Node) string {
	return Literal(n.TextContent())
}

// Literal strips ANSI sequences and control characters, keeping newlines.
func Literal(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || !unicode.IsControl(r) {
			return r
		}
		return -1
	}, ansi.Strip(s))
}
