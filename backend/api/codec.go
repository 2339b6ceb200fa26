package api

import "encoding/json"

// jsonCodec carries the plain request and response structs of this package.
// It replaces connect's protobuf-only JSON codec under the same name, so the
// wire content type stays application/json.
type jsonCodec struct{}

func (jsonCodec) Name() string {
	return "json"
}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
