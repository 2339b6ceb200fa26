package qa

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"

	"github.com/will-hwang/ml-commons/backend/qa/llm"
	"github.com/will-hwang/ml-commons/backend/stream"
	"github.com/will-hwang/ml-commons/backend/xcontent"
	"github.com/will-hwang/ml-commons/shared"
	"github.com/will-hwang/ml-commons/shared/conv"
)

// SizeNullValue is reported by the size getters when a size was not set.
const SizeNullValue = -1

const (
	fieldConversationID   = "conversation_id"
	fieldModelID          = "model_id"
	fieldQuestion         = "llm_question"
	fieldSystemPrompt     = "system_prompt"
	fieldUserInstructions = "user_instructions"
	fieldContextSize      = "context_size"
	fieldInteractionSize  = "interaction_size"
	fieldTimeout          = "timeout"
	fieldLLMResponseField = "llm_response_field"
	fieldMessages         = "messages"
)

// Parameters drive one generative question-answering request. Empty strings
// and nil sizes mean the field was not supplied.
type Parameters struct {
	ConversationID   string
	ModelID          string
	LLMQuestion      string
	SystemPrompt     string
	UserInstructions string
	ContextSize      *int
	InteractionSize  *int
	Timeout          *int
	LLMResponseField string
	MessageBlocks    []llm.MessageBlock
}

func (p *Parameters) GetContextSize() int {
	return conv.FromPtrOr(p.ContextSize, SizeNullValue)
}

func (p *Parameters) GetInteractionSize() int {
	return conv.FromPtrOr(p.InteractionSize, SizeNullValue)
}

// GetTimeout returns the timeout in seconds.
func (p *Parameters) GetTimeout() int {
	return conv.FromPtrOr(p.Timeout, SizeNullValue)
}

func (p *Parameters) Validate() error {
	if p.LLMQuestion == "" {
		return shared.NewInvalidArgument("[%s] %s is required", ParamExtName, fieldQuestion)
	}

	texts := []struct {
		name  string
		value string
	}{
		{fieldConversationID, p.ConversationID},
		{fieldModelID, p.ModelID},
		{fieldQuestion, p.LLMQuestion},
		{fieldSystemPrompt, p.SystemPrompt},
		{fieldUserInstructions, p.UserInstructions},
		{fieldLLMResponseField, p.LLMResponseField},
	}
	for _, text := range texts {
		if !utf8.ValidString(text.value) {
			return shared.NewInvalidArgument("[%s] %s is not valid UTF-8", ParamExtName, text.name)
		}
	}
	for i, block := range p.MessageBlocks {
		if err := block.Validate(); err != nil {
			return shared.NewInvalidArgument("[%s] %s[%d]: %v", ParamExtName, fieldMessages, i, err)
		}
	}

	sizes := []struct {
		name  string
		value int
	}{
		{fieldContextSize, p.GetContextSize()},
		{fieldInteractionSize, p.GetInteractionSize()},
		{fieldTimeout, p.GetTimeout()},
	}
	for _, size := range sizes {
		if size.value < 0 && size.value != SizeNullValue {
			return shared.NewInvalidArgument("[%s] %s must not be negative, got %d", ParamExtName, size.name, size.value)
		}
	}
	// a zero deadline would cancel the model call before it starts
	if p.Timeout != nil && *p.Timeout == 0 {
		return shared.NewInvalidArgument("[%s] %s must be positive, got 0", ParamExtName, fieldTimeout)
	}
	return nil
}

// WriteTo encodes the parameters in their fixed binary field order.
func (p *Parameters) WriteTo(out stream.Output) error {
	steps := []func() error{
		func() error { return out.WriteOptionalString(optionalString(p.ConversationID)) },
		func() error { return out.WriteOptionalString(optionalString(p.ModelID)) },
		func() error { return out.WriteString(p.LLMQuestion) },
		func() error { return out.WriteOptionalString(optionalString(p.SystemPrompt)) },
		func() error { return out.WriteOptionalString(optionalString(p.UserInstructions)) },
		func() error { return out.WriteOptionalInt(p.ContextSize) },
		func() error { return out.WriteOptionalInt(p.InteractionSize) },
		func() error { return out.WriteOptionalInt(p.Timeout) },
		func() error { return out.WriteOptionalString(optionalString(p.LLMResponseField)) },
		func() error { return out.WriteVInt(len(p.MessageBlocks)) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("failed to write parameters: %w", err)
		}
	}

	for _, block := range p.MessageBlocks {
		if err := block.WriteTo(out); err != nil {
			return fmt.Errorf("failed to write message block: %w", err)
		}
	}
	return nil
}

// ReadParameters decodes parameters written by WriteTo.
func ReadParameters(in stream.Input) (*Parameters, error) {
	p := &Parameters{}
	var err error

	readString := func(dst *string) {
		if err != nil {
			return
		}
		var s *string
		s, err = in.ReadOptionalString()
		*dst = conv.FromPtr(s)
	}
	readInt := func(dst **int) {
		if err != nil {
			return
		}
		*dst, err = in.ReadOptionalInt()
	}

	readString(&p.ConversationID)
	readString(&p.ModelID)
	if err == nil {
		p.LLMQuestion, err = in.ReadString()
	}
	readString(&p.SystemPrompt)
	readString(&p.UserInstructions)
	readInt(&p.ContextSize)
	readInt(&p.InteractionSize)
	readInt(&p.Timeout)
	readString(&p.LLMResponseField)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameters: %w", err)
	}

	n, err := in.ReadVInt()
	if err != nil {
		return nil, fmt.Errorf("failed to read parameters: %w", err)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative message block count %d", stream.ErrMalformed, n)
	}
	for i := 0; i < n; i++ {
		block, err := llm.ReadMessageBlock(in)
		if err != nil {
			return nil, fmt.Errorf("failed to read message block %d: %w", i, err)
		}
		p.MessageBlocks = append(p.MessageBlocks, block)
	}

	return p, nil
}

// ToMap renders the document form. Only fields with concrete values are
// included.
func (p *Parameters) ToMap() map[string]any {
	m := map[string]any{}
	putString := func(key, v string) {
		if v != "" {
			m[key] = v
		}
	}
	putSize := func(key string, v int) {
		if v != SizeNullValue {
			m[key] = v
		}
	}

	putString(fieldConversationID, p.ConversationID)
	putString(fieldModelID, p.ModelID)
	putString(fieldQuestion, p.LLMQuestion)
	putString(fieldSystemPrompt, p.SystemPrompt)
	putString(fieldUserInstructions, p.UserInstructions)
	putSize(fieldContextSize, p.GetContextSize())
	putSize(fieldInteractionSize, p.GetInteractionSize())
	putSize(fieldTimeout, p.GetTimeout())
	putString(fieldLLMResponseField, p.LLMResponseField)

	if len(p.MessageBlocks) > 0 {
		blocks := make([]any, len(p.MessageBlocks))
		for i, b := range p.MessageBlocks {
			blocks[i] = b.ToMap()
		}
		m[fieldMessages] = blocks
	}
	return m
}

func (p *Parameters) ToXContent(t xcontent.Type) ([]byte, error) {
	return xcontent.Marshal(t, p.ToMap())
}

// ParseParameters reads the document form in the given content type.
func ParseParameters(t xcontent.Type, data []byte) (*Parameters, error) {
	obj, err := xcontent.Unmarshal(t, data)
	if err != nil {
		return nil, shared.NewInvalidArgument("[%s] %s", ParamExtName, err)
	}
	return ParametersFromObject(obj)
}

// ParametersFromObject builds parameters from a decoded document. Unknown
// fields are rejected and an explicit SizeNullValue reads as unset.
func ParametersFromObject(obj xcontent.Object) (*Parameters, error) {
	p := &Parameters{}

	for _, key := range obj.Keys() {
		var err error
		switch key {
		case fieldConversationID:
			p.ConversationID, _, err = obj.String(key)
		case fieldModelID:
			p.ModelID, _, err = obj.String(key)
		case fieldQuestion:
			p.LLMQuestion, _, err = obj.String(key)
		case fieldSystemPrompt:
			p.SystemPrompt, _, err = obj.String(key)
		case fieldUserInstructions:
			p.UserInstructions, _, err = obj.String(key)
		case fieldContextSize:
			p.ContextSize, err = readSize(obj, key)
		case fieldInteractionSize:
			p.InteractionSize, err = readSize(obj, key)
		case fieldTimeout:
			p.Timeout, err = readSize(obj, key)
		case fieldLLMResponseField:
			p.LLMResponseField, _, err = obj.String(key)
		case fieldMessages:
			p.MessageBlocks, err = readMessageBlocks(obj)
		default:
			return nil, shared.NewInvalidArgument("[%s] unknown field [%s]", ParamExtName, key)
		}
		if err != nil {
			return nil, shared.NewInvalidArgument("[%s] %s", ParamExtName, err)
		}
	}

	if p.LLMQuestion == "" {
		return nil, shared.NewInvalidArgument("[%s] %s is required", ParamExtName, fieldQuestion)
	}
	return p, nil
}

func readSize(obj xcontent.Object, key string) (*int, error) {
	v, err := obj.Int(key)
	if err != nil || v == nil || *v == SizeNullValue {
		return nil, err
	}
	return v, nil
}

func readMessageBlocks(obj xcontent.Object) ([]llm.MessageBlock, error) {
	items, err := obj.Objects(fieldMessages)
	if err != nil {
		return nil, err
	}
	blocks := make([]llm.MessageBlock, 0, len(items))
	for i, item := range items {
		block, err := llm.ParseMessageBlock(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", fieldMessages, i, err)
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// Equal compares every field. Unset sizes equal SizeNullValue.
func (p *Parameters) Equal(other *Parameters) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.ConversationID != other.ConversationID ||
		p.ModelID != other.ModelID ||
		p.LLMQuestion != other.LLMQuestion ||
		p.SystemPrompt != other.SystemPrompt ||
		p.UserInstructions != other.UserInstructions ||
		p.GetContextSize() != other.GetContextSize() ||
		p.GetInteractionSize() != other.GetInteractionSize() ||
		p.GetTimeout() != other.GetTimeout() ||
		p.LLMResponseField != other.LLMResponseField ||
		len(p.MessageBlocks) != len(other.MessageBlocks) {
		return false
	}
	for i := range p.MessageBlocks {
		if !p.MessageBlocks[i].Equal(other.MessageBlocks[i]) {
			return false
		}
	}
	return true
}

func (p *Parameters) Hash() uint64 {
	d := xxhash.New()
	writeString := func(s string) {
		_, _ = d.WriteString(s)
		_, _ = d.Write([]byte{0})
	}
	writeInt := func(v int) {
		_, _ = d.Write(binary.BigEndian.AppendUint64(nil, uint64(int64(v))))
	}

	writeString(p.ConversationID)
	writeString(p.ModelID)
	writeString(p.LLMQuestion)
	writeString(p.SystemPrompt)
	writeString(p.UserInstructions)
	writeInt(p.GetContextSize())
	writeInt(p.GetInteractionSize())
	writeInt(p.GetTimeout())
	writeString(p.LLMResponseField)
	writeInt(len(p.MessageBlocks))
	for _, block := range p.MessageBlocks {
		writeString(block.Role)
		writeInt(len(block.Content))
		for _, c := range block.Content {
			writeString(string(c.Kind()))
			switch b := c.(type) {
			case llm.TextBlock:
				writeString(b.Text)
			case llm.ImageBlock:
				writeString(b.Format)
				writeString(b.URL)
				writeString(b.Data)
			case llm.DocumentBlock:
				writeString(b.Format)
				writeString(b.Name)
				writeString(b.Data)
			}
		}
	}
	return d.Sum64()
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
