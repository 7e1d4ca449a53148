package render

import (
	"message-board/domain"
	"message-board/shortcode"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newRenderer() Renderer {
	return NewRenderer(shortcode.MustDefault())
}

func TestRenderer_Tree_FixedOrderAndTransform(t *testing.T) {
	req := require.New(t)
	record := domain.MessageRecord{
		Username:        "Ada",
		Message:         "gg :fire:",
		Email:           "ada@example.com",
		ProfileImageURL: "https://example.com/ada.png",
		Date:            "3/5/2024",
		Time:            "2:07:09 PM",
	}

	tree := newRenderer().Tree(record)

	req.Equal("div", tree.Tag)
	req.Equal(ClassMessage, tree.Class)
	req.Len(tree.Children, 4)
	req.Equal(ClassAvatar, tree.Children[0].Class)
	req.Equal(ClassUsername, tree.Children[1].Class)
	req.Equal(ClassBody, tree.Children[2].Class)
	req.Equal(ClassMeta, tree.Children[3].Class)

	src, _ := tree.Children[0].Attr("src")
	alt, _ := tree.Children[0].Attr("alt")
	req.Equal("https://example.com/ada.png", src)
	req.Equal("Ada profile image", alt)
	req.Equal("Ada:", tree.Children[1].TextContent())
	req.Equal("gg 🔥", tree.Children[2].TextContent())

	meta := tree.Children[3].Children
	req.Len(meta, 3)
	req.Equal("Email: ada@example.com", meta[0].TextContent())
	req.Equal("3/5/2024", meta[1].TextContent())
	req.Equal("2:07:09 PM", meta[2].TextContent())
}

func TestRenderer_Tree_Fallbacks(t *testing.T) {
	tests := []struct {
		name        string
		record      domain.MessageRecord
		src         string
		alt         string
		username    string
		metaEntries []string
	}{
		{
			name:        "Absent avatar and username",
			record:      domain.MessageRecord{Message: "hi"},
			src:         domain.PlaceholderAvatarURL,
			alt:         "User profile image",
			username:    "Anonymous:",
			metaEntries: nil,
		},
		{
			name:        "Blank avatar",
			record:      domain.MessageRecord{Username: "Bob", Message: "hi", ProfileImageURL: "   ", Time: "1:00:00 AM"},
			src:         domain.PlaceholderAvatarURL,
			alt:         "Bob profile image",
			username:    "Bob:",
			metaEntries: []string{"1:00:00 AM"},
		},
		{
			name:        "Date only",
			record:      domain.MessageRecord{Username: "Clara", ProfileImageURL: "https://x/c.png", Date: "1/2/2024"},
			src:         "https://x/c.png",
			alt:         "Clara profile image",
			username:    "Clara:",
			metaEntries: []string{"1/2/2024"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			tree := newRenderer().Tree(tt.record)

			avatar := tree.Find(ClassAvatar)
			src, _ := avatar.Attr("src")
			alt, _ := avatar.Attr("alt")
			req.Equal(tt.src, src)
			req.Equal(tt.alt, alt)
			req.Equal(tt.username, tree.Find(ClassUsername).TextContent())

			var entries []string
			for _, c := range tree.Find(ClassMeta).Children {
				entries = append(entries, c.TextContent())
			}
			req.Equal(tt.metaEntries, entries)
		})
	}
}

func TestRenderer_Tree_UserFieldsAreTextNodes(t *testing.T) {
	req := require.New(t)
	record := domain.MessageRecord{
		Username: "<img src=x onerror=alert(1)>",
		Message:  "<script>alert('x')</script> & more",
		Email:    "a&b@<evil>.com",
	}

	tree := newRenderer().Tree(record)

	for _, class := range []string{ClassUsername, ClassBody} {
		line := tree.Find(class)
		req.Len(line.Children, 1)
		req.True(line.Children[0].IsText(), class)
	}
	req.Equal("<script>alert('x')</script> & more", tree.Find(ClassBody).TextContent())
	req.Equal("Email: a&b@<evil>.com", tree.Find(ClassMeta).TextContent())
}

func TestRenderer_HTML_EscapesUserContent(t *testing.T) {
	req := require.New(t)
	record := domain.MessageRecord{
		Username: "<b>Mallory</b>",
		Message:  "<script>alert(1)</script> & :heart:",
		Email:    "m<x>@example.com",
	}

	out, err := newRenderer().HTML(record)
	req.NoError(err)

	req.NotContains(out, "<script>")
	req.NotContains(out, "<b>")
	req.NotContains(out, "<x>")
	req.Contains(out, "&lt;script&gt;alert(1)&lt;/script&gt; &amp; ❤️")
	req.Contains(out, "&lt;b&gt;Mallory&lt;/b&gt;:")
	req.Contains(out, "Email: m&lt;x&gt;@example.com")
	req.True(strings.HasPrefix(out, `<div class="single-message">`))
}

func TestRenderer_Plain(t *testing.T) {
	req := require.New(t)
	r := newRenderer()

	req.Equal("Ada: gg 🔥 (3/5/2024 2:07:09 PM)", r.Plain(domain.MessageRecord{
		Username: "Ada", Message: "gg :fire:", Date: "3/5/2024", Time: "2:07:09 PM",
	}))
	req.Equal("Anonymous: hi", r.Plain(domain.MessageRecord{Message: "hi"}))
}
