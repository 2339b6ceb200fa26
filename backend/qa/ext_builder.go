package qa

import (
	"fmt"

	"github.com/will-hwang/ml-commons/backend/stream"
	"github.com/will-hwang/ml-commons/backend/xcontent"
	"github.com/will-hwang/ml-commons/shared"
)

// ParamExtName is the key the parameters live under in a search request's
// ext section.
const ParamExtName = "generative_qa_parameters"

type ParamExtBuilder struct {
	params *Parameters
}

func NewParamExtBuilder(params *Parameters) *ParamExtBuilder {
	return &ParamExtBuilder{params: params}
}

func NewParamExtBuilderFromStream(in stream.Input) (*ParamExtBuilder, error) {
	params, err := ReadParameters(in)
	if err != nil {
		return nil, err
	}
	return &ParamExtBuilder{params: params}, nil
}

func (b *ParamExtBuilder) Name() string {
	return ParamExtName
}

func (b *ParamExtBuilder) Params() *Parameters {
	return b.params
}

func (b *ParamExtBuilder) SetParams(params *Parameters) {
	b.params = params
}

func (b *ParamExtBuilder) WriteTo(out stream.Output) error {
	if b.params == nil {
		return fmt.Errorf("[%s] parameters are not set", ParamExtName)
	}
	return b.params.WriteTo(out)
}

func (b *ParamExtBuilder) ToMap() map[string]any {
	inner := map[string]any{}
	if b.params != nil {
		inner = b.params.ToMap()
	}
	return map[string]any{ParamExtName: inner}
}

func (b *ParamExtBuilder) ToXContent(t xcontent.Type) ([]byte, error) {
	return xcontent.Marshal(t, b.ToMap())
}

// ParseParamExtBuilder reads a document of the form
// {"generative_qa_parameters": {...}}.
func ParseParamExtBuilder(t xcontent.Type, data []byte) (*ParamExtBuilder, error) {
	obj, err := xcontent.Unmarshal(t, data)
	if err != nil {
		return nil, shared.NewInvalidArgument("[%s] %s", ParamExtName, err)
	}

	b, ok, err := ParamExtBuilderFromSearchExt(obj)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.NewInvalidArgument("[%s] missing from document", ParamExtName)
	}
	return b, nil
}

// ParamExtBuilderFromSearchExt extracts the builder from the ext section of a
// search request. ok is false when the section carries no parameters.
func ParamExtBuilderFromSearchExt(ext xcontent.Object) (*ParamExtBuilder, bool, error) {
	inner, ok, err := ext.Object(ParamExtName)
	if err != nil {
		return nil, false, shared.NewInvalidArgument("[%s] %s", ParamExtName, err)
	}
	if !ok {
		return nil, false, nil
	}

	params, err := ParametersFromObject(inner)
	if err != nil {
		return nil, false, err
	}
	return &ParamExtBuilder{params: params}, true, nil
}

func (b *ParamExtBuilder) Equal(other *ParamExtBuilder) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.params.Equal(other.params)
}

func (b *ParamExtBuilder) Hash() uint64 {
	if b.params == nil {
		return 0
	}
	return b.params.Hash()
}
