package pongo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/flosch/pongo2/v6"
)

// null marks a value that is present but empty (a nil field, a json null).
// It prints as nothing and is falsy, but unlike a missing key it satisfies
// the required check on bare references.
type null struct{}

var nullValue = (*null)(nil)

// number keeps floats printing the short way. pongo2 formats a plain float64
// with %f, so 1.5 would come out as 1.500000.
type number float64

func (n number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// convertToContext binds data as the evaluation context. Maps are used as
// they are; anything else goes through encoding/json so templates address
// struct fields by their json names.
func convertToContext(data any) (pongo2.Context, error) {
	var root map[string]any
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		root = v
	case map[string]any:
		root = v
	default:
		decoded, err := roundTrip(v)
		if err != nil {
			return nil, err
		}
		switch m := decoded.(type) {
		case nil:
			return pongo2.Context{}, nil
		case map[string]any:
			root = m
		default:
			return nil, fmt.Errorf("context must be an object, got %T", data)
		}
	}

	ctx := make(pongo2.Context, len(root))
	for key, value := range root {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		converted, err := templateValue(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		ctx[key] = converted
	}
	return ctx, nil
}

// templateValue normalises one context value: nil becomes nullValue, floats
// become number, containers are walked and every other type is decoded from
// its json form.
func templateValue(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nullValue, nil
	case string, bool, int, int64, number:
		return v, nil
	case float64:
		return number(v), nil
	case float32:
		return number(v), nil
	case json.Number:
		return jsonNumber(v), nil
	case pongo2.Context:
		return templateMap(v)
	case map[string]any:
		return templateMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			converted, err := templateValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	}

	if isCallable(value) {
		return value, nil
	}
	decoded, err := roundTrip(value)
	if err != nil {
		return nil, err
	}
	return templateValue(decoded)
}

func templateMap(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for key, value := range in {
		converted, err := templateValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

// roundTrip decodes v's json encoding, keeping numbers as json.Number so
// integers stay integral.
func roundTrip(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func jsonNumber(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return number(f)
	}
	return n.String()
}
