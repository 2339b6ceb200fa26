package xcontent

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Object is a decoded document. Nested objects are Object values, lists are
// []any and integral numbers are int64.
type Object map[string]any

// FromMap normalises a map built in Go code into an Object.
func FromMap(m map[string]any) (Object, error) {
	return normalizeMap(m)
}

func (o Object) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// String returns the string at key. A missing or null value reports ok=false.
func (o Object) String(key string) (string, bool, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return "", false, nil
	}
	s, isString := v.(string)
	if !isString {
		return "", false, fmt.Errorf("field [%s] must be a string, got %T", key, v)
	}
	return s, true, nil
}

// Int returns the integer at key, or nil when the key is missing or null.
func (o Object) Int(key string) (*int, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, nil
	}
	n, err := toInt(v)
	if err != nil {
		return nil, fmt.Errorf("field [%s]: %w", key, err)
	}
	return &n, nil
}

func (o Object) Object(key string) (Object, bool, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, false, nil
	}
	obj, isObject := asObject(v)
	if !isObject {
		return nil, false, fmt.Errorf("field [%s] must be an object, got %T", key, v)
	}
	return obj, true, nil
}

// Objects returns the list of objects at key.
func (o Object) Objects(key string) ([]Object, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, nil
	}
	list, isList := v.([]any)
	if !isList {
		return nil, fmt.Errorf("field [%s] must be a list, got %T", key, v)
	}
	out := make([]Object, 0, len(list))
	for i, item := range list {
		obj, isObject := asObject(item)
		if !isObject {
			return nil, fmt.Errorf("field [%s][%d] must be an object, got %T", key, i, item)
		}
		out = append(out, obj)
	}
	return out, nil
}

func asObject(v any) (Object, bool) {
	switch m := v.(type) {
	case Object:
		return m, true
	case map[string]any:
		return Object(m), true
	}
	return nil, false
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		if n > math.MaxInt32 || n < math.MinInt32 {
			return 0, fmt.Errorf("value %d out of range", n)
		}
		return int(n), nil
	case uint:
		return toInt(uint64(n))
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return toInt(uint64(n))
	case uint64:
		if n > math.MaxInt32 {
			return 0, fmt.Errorf("value %d out of range", n)
		}
		return int(n), nil
	case float32:
		return toInt(float64(n))
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("value %v is not an integer", n)
		}
		return toInt(int64(n))
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("value %s is not an integer", n)
		}
		return toInt(i)
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}

func normalizeMap(m map[string]any) (Object, error) {
	if m == nil {
		return nil, nil
	}
	out := make(Object, len(m))
	for k, v := range m {
		nv, err := normalize(v)
		if err != nil {
			return nil, fmt.Errorf("field [%s]: %w", k, err)
		}
		out[k] = nv
	}
	return out, nil
}

func normalize(v any) (any, error) {
	switch val := v.(type) {
	case Object:
		return normalizeMap(val)
	case map[string]any:
		return normalizeMap(val)
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("object key %v is not a string", k)
			}
			m[key] = item
		}
		return normalizeMap(m)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			nv, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			nv, err := normalizeMap(item)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		return val.Float64()
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return float64(val), nil
		}
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
			return int64(val), nil
		}
		return val, nil
	}
	return v, nil
}
