// Package xcontent reads and writes structured documents in the formats a
// search request body may arrive in. Decoded documents are normalised into
// Object values so callers see the same Go types regardless of the format.
package xcontent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

type Type int

const (
	JSON Type = iota
	YAML
	CBOR
)

func Types() []Type {
	return []Type{JSON, YAML, CBOR}
}

func (t Type) String() string {
	switch t {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	case CBOR:
		return "cbor"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

func (t Type) MediaType() string {
	switch t {
	case YAML:
		return "application/yaml"
	case CBOR:
		return "application/cbor"
	default:
		return "application/json"
	}
}

// ParseType accepts a format name or a media type, with or without parameters.
func ParseType(s string) (Type, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexByte(name, ';'); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	switch name {
	case "json", "application/json":
		return JSON, nil
	case "yaml", "yml", "application/yaml", "application/x-yaml", "text/yaml":
		return YAML, nil
	case "cbor", "application/cbor":
		return CBOR, nil
	}
	return 0, fmt.Errorf("unsupported content type %q", s)
}

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	cborEnc, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("xcontent: cbor encoder: %v", err))
	}
	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("xcontent: cbor decoder: %v", err))
	}
}

func Marshal(t Type, doc map[string]any) ([]byte, error) {
	switch t {
	case JSON:
		return json.Marshal(doc)
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CBOR:
		return cborEnc.Marshal(doc)
	}
	return nil, fmt.Errorf("unsupported content type %s", t)
}

// Unmarshal decodes a single top-level object.
func Unmarshal(t Type, data []byte) (Object, error) {
	var raw map[string]any
	switch t {
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to parse json document: %w", err)
		}
	case YAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse yaml document: %w", err)
		}
	case CBOR:
		if err := cborDec.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse cbor document: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported content type %s", t)
	}

	obj, err := normalizeMap(raw)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		obj = Object{}
	}
	return obj, nil
}
