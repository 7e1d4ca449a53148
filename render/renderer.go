package render

import (
	"message-board/domain"
	"message-board/shortcode"
	"strings"

	"github.com/samber/lo"
)

// Class names of a rendered message.
const (
	ClassMessage  = "single-message"
	ClassAvatar   = "single-message-img"
	ClassUsername = "single-message-username"
	ClassBody     = "single-message-body"
	ClassMeta     = "single-message-meta"
	ClassMetaItem = "single-message-meta-item"
)

const (
	fallbackAltName  = "User"
	fallbackUsername = "Anonymous"
)

// Renderer maps records to element trees. It is a pure function of its input.
type Renderer struct {
	transformer *shortcode.Transformer
}

func NewRenderer(transformer *shortcode.Transformer) Renderer {
	return Renderer{transformer: transformer}
}

// Tree renders record as a plain Node tree.
func (r Renderer) Tree(record domain.MessageRecord) *Node {
	return Render[*Node](r, TreeBuilder{}, record)
}

// Render builds, in fixed order, the avatar, the username line, the body line
// and the metadata block (email, date, time, each only when present).
func Render[N any](r Renderer, b Builder[N], record domain.MessageRecord) N {
	avatar := b.Element("img", ClassAvatar, []Attr{
		{Key: "src", Value: domain.AvatarURL(record.ProfileImageURL)},
		{Key: "alt", Value: lo.CoalesceOrEmpty(record.Username, fallbackAltName) + " profile image"},
	})

	username := b.Element("p", ClassUsername, nil,
		b.Text(lo.CoalesceOrEmpty(record.Username, fallbackUsername)+":"))

	body := b.Element("p", ClassBody, nil,
		b.Text(r.transformer.Transform(record.Message)))

	var meta []N
	if record.Email != "" {
		meta = append(meta, b.Element("span", ClassMetaItem, nil, b.Text("Email: "+record.Email)))
	}
	if record.Date != "" {
		meta = append(meta, b.Element("span", ClassMetaItem, nil, b.Text(record.Date)))
	}
	if record.Time != "" {
		meta = append(meta, b.Element("span", ClassMetaItem, nil, b.Text(record.Time)))
	}

	return b.Element("div", ClassMessage, nil,
		avatar,
		username,
		body,
		b.Element("div", ClassMeta, nil, meta...),
	)
}

// Plain renders record as a single line of text, used by log output.
func (r Renderer) Plain(record domain.MessageRecord) string {
	parts := []string{
		lo.CoalesceOrEmpty(record.Username, fallbackUsername) + ":",
		r.transformer.Transform(record.Message),
	}
	stamp := strings.TrimSpace(record.Date + " " + record.Time)
	if stamp != "" {
		parts = append(parts, "("+stamp+")")
	}
	return strings.Join(parts, " ")
}
