package llm

import (
	"fmt"
	"unicode/utf8"

	"github.com/will-hwang/ml-commons/backend/stream"
	"github.com/will-hwang/ml-commons/backend/xcontent"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

type ContentKind string

const (
	ContentKindText     ContentKind = "text"
	ContentKindImage    ContentKind = "image"
	ContentKindDocument ContentKind = "document"
)

// ContentBlock is one item of a MessageBlock. Implementations are comparable
// values.
type ContentBlock interface {
	Kind() ContentKind
	toMap() map[string]any
	writeTo(out stream.Output) error
}

type TextBlock struct {
	Text string
}

func (TextBlock) Kind() ContentKind { return ContentKindText }

func (b TextBlock) toMap() map[string]any {
	return map[string]any{"type": string(ContentKindText), "text": b.Text}
}

func (b TextBlock) writeTo(out stream.Output) error {
	return out.WriteString(b.Text)
}

// ImageBlock references an image either by URL or by base64 Data.
type ImageBlock struct {
	Format string
	URL    string
	Data   string
}

func (ImageBlock) Kind() ContentKind { return ContentKindImage }

func (b ImageBlock) toMap() map[string]any {
	m := map[string]any{"type": string(ContentKindImage), "format": b.Format}
	if b.URL != "" {
		m["url"] = b.URL
	}
	if b.Data != "" {
		m["data"] = b.Data
	}
	return m
}

func (b ImageBlock) writeTo(out stream.Output) error {
	for _, s := range []string{b.Format, b.URL, b.Data} {
		if err := out.WriteString(s); err != nil {
			return err
		}
	}
	return nil
}

func (b ImageBlock) validate() error {
	if b.Format == "" {
		return fmt.Errorf("image content requires a format")
	}
	if (b.URL == "") == (b.Data == "") {
		return fmt.Errorf("image content requires exactly one of url or data")
	}
	return nil
}

// DocumentBlock carries a named document as base64 Data.
type DocumentBlock struct {
	Format string
	Name   string
	Data   string
}

func (DocumentBlock) Kind() ContentKind { return ContentKindDocument }

func (b DocumentBlock) toMap() map[string]any {
	return map[string]any{
		"type":   string(ContentKindDocument),
		"format": b.Format,
		"name":   b.Name,
		"data":   b.Data,
	}
}

func (b DocumentBlock) writeTo(out stream.Output) error {
	for _, s := range []string{b.Format, b.Name, b.Data} {
		if err := out.WriteString(s); err != nil {
			return err
		}
	}
	return nil
}

func (b DocumentBlock) validate() error {
	if b.Format == "" || b.Name == "" || b.Data == "" {
		return fmt.Errorf("document content requires format, name and data")
	}
	return nil
}

// MessageBlock is one chat turn supplied by the caller.
type MessageBlock struct {
	Role    string
	Content []ContentBlock
}

func NewTextMessage(role, text string) MessageBlock {
	return MessageBlock{Role: role, Content: []ContentBlock{TextBlock{Text: text}}}
}

func (m MessageBlock) Equal(other MessageBlock) bool {
	if m.Role != other.Role || len(m.Content) != len(other.Content) {
		return false
	}
	for i := range m.Content {
		if m.Content[i] != other.Content[i] {
			return false
		}
	}
	return true
}

// Validate rejects strings that are not valid UTF-8, which no wire form can
// carry.
func (m MessageBlock) Validate() error {
	if !utf8.ValidString(m.Role) {
		return fmt.Errorf("message role is not valid UTF-8")
	}
	for i, c := range m.Content {
		for key, v := range c.toMap() {
			if s, ok := v.(string); ok && !utf8.ValidString(s) {
				return fmt.Errorf("content %d: %s is not valid UTF-8", i, key)
			}
		}
	}
	return nil
}

// Text concatenates the text items of the block.
func (m MessageBlock) Text() string {
	var text string
	for _, c := range m.Content {
		if t, ok := c.(TextBlock); ok {
			if text != "" {
				text += "\n"
			}
			text += t.Text
		}
	}
	return text
}

// ToMap renders the block in its typed form, which ParseMessageBlock accepts.
func (m MessageBlock) ToMap() map[string]any {
	content := make([]any, len(m.Content))
	for i, c := range m.Content {
		content[i] = c.toMap()
	}
	return map[string]any{"role": m.Role, "content": content}
}

// ParseMessageBlock reads a block from its document form. Content items are
// either keyed ({"text": "..."}, {"image": {...}}, {"document": {...}}) or
// typed ({"type": "text", "text": "..."}).
func ParseMessageBlock(obj xcontent.Object) (MessageBlock, error) {
	role, ok, err := obj.String("role")
	if err != nil {
		return MessageBlock{}, err
	}
	if !ok || role == "" {
		return MessageBlock{}, fmt.Errorf("message block requires a role")
	}

	items, err := obj.Objects("content")
	if err != nil {
		return MessageBlock{}, err
	}

	block := MessageBlock{Role: role, Content: make([]ContentBlock, 0, len(items))}
	for i, item := range items {
		c, err := parseContent(item)
		if err != nil {
			return MessageBlock{}, fmt.Errorf("content[%d]: %w", i, err)
		}
		block.Content = append(block.Content, c)
	}
	return block, nil
}

func parseContent(item xcontent.Object) (ContentBlock, error) {
	typ, typed, err := item.String("type")
	if err != nil {
		return nil, err
	}
	if typed {
		return parseTypedContent(ContentKind(typ), item)
	}

	if len(item) != 1 {
		return nil, fmt.Errorf("content item must have exactly one key, got %v", item.Keys())
	}
	kind := ContentKind(item.Keys()[0])
	switch kind {
	case ContentKindText:
		text, _, err := item.String("text")
		if err != nil {
			return nil, err
		}
		return TextBlock{Text: text}, nil
	case ContentKindImage, ContentKindDocument:
		nested, _, err := item.Object(string(kind))
		if err != nil {
			return nil, err
		}
		return parseTypedContent(kind, nested)
	}
	return nil, fmt.Errorf("unsupported content type [%s]", kind)
}

func parseTypedContent(kind ContentKind, item xcontent.Object) (ContentBlock, error) {
	var err error
	field := func(name string) string {
		if err != nil {
			return ""
		}
		var v string
		v, _, err = item.String(name)
		return v
	}

	switch kind {
	case ContentKindText:
		b := TextBlock{Text: field("text")}
		if err != nil {
			return nil, err
		}
		return b, nil
	case ContentKindImage:
		b := ImageBlock{Format: field("format"), URL: field("url"), Data: field("data")}
		if err != nil {
			return nil, err
		}
		if err := b.validate(); err != nil {
			return nil, err
		}
		return b, nil
	case ContentKindDocument:
		b := DocumentBlock{Format: field("format"), Name: field("name"), Data: field("data")}
		if err != nil {
			return nil, err
		}
		if err := b.validate(); err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, fmt.Errorf("unsupported content type [%s]", kind)
}

func (m MessageBlock) WriteTo(out stream.Output) error {
	if err := out.WriteString(m.Role); err != nil {
		return err
	}
	if err := out.WriteVInt(len(m.Content)); err != nil {
		return err
	}
	for _, c := range m.Content {
		if err := out.WriteString(string(c.Kind())); err != nil {
			return err
		}
		if err := c.writeTo(out); err != nil {
			return err
		}
	}
	return nil
}

func ReadMessageBlock(in stream.Input) (MessageBlock, error) {
	role, err := in.ReadString()
	if err != nil {
		return MessageBlock{}, err
	}
	n, err := in.ReadVInt()
	if err != nil {
		return MessageBlock{}, err
	}
	if n < 0 {
		return MessageBlock{}, fmt.Errorf("%w: negative content count %d", stream.ErrMalformed, n)
	}

	block := MessageBlock{Role: role}
	for i := 0; i < n; i++ {
		kind, err := in.ReadString()
		if err != nil {
			return MessageBlock{}, err
		}
		c, err := readContent(ContentKind(kind), in)
		if err != nil {
			return MessageBlock{}, err
		}
		block.Content = append(block.Content, c)
	}
	return block, nil
}

func readContent(kind ContentKind, in stream.Input) (ContentBlock, error) {
	var fields int
	switch kind {
	case ContentKindText:
		fields = 1
	case ContentKindImage, ContentKindDocument:
		fields = 3
	default:
		return nil, fmt.Errorf("%w: unsupported content type [%s]", stream.ErrMalformed, kind)
	}

	values := make([]string, fields)
	for i := range values {
		v, err := in.ReadString()
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	switch kind {
	case ContentKindText:
		return TextBlock{Text: values[0]}, nil
	case ContentKindImage:
		return ImageBlock{Format: values[0], URL: values[1], Data: values[2]}, nil
	default:
		return DocumentBlock{Format: values[0], Name: values[1], Data: values[2]}, nil
	}
}
