// Package datafile builds template contexts from YAML or JSON documents and
// key=value overrides given on the command line.
package datafile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stdin is the path that makes Load read from standard input.
const Stdin = "-"

// Load reads a YAML (or JSON) document from path. Stdin reads os.Stdin.
func Load(path string) (map[string]any, error) {
	if path == Stdin {
		return Decode(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("datafile: open %s: %w", path, err)
	}
	defer f.Close()

	data, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("datafile: %s: %w", path, err)
	}
	return data, nil
}

// Decode parses a single mapping document. An empty document yields an
// empty map.
func Decode(r io.Reader) (map[string]any, error) {
	var data map[string]any
	if err := yaml.NewDecoder(r).Decode(&data); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("decode: %w", err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

// ParseSet parses an assignment such as "release.version=1.2.0" into a
// nested map. The value is typed like a YAML scalar, so "3" becomes an int
// and "true" a bool; quote it ("'3'") to keep a string. Decimals are kept as
// written.
func ParseSet(assignment string) (map[string]any, error) {
	key, raw, ok := strings.Cut(assignment, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return nil, fmt.Errorf("datafile: invalid assignment %q, want key=value", assignment)
	}

	parts := strings.Split(key, ".")
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("datafile: invalid key %q", key)
		}
	}

	var value any = raw
	if raw != "" {
		var scalar any
		if err := yaml.Unmarshal([]byte(raw), &scalar); err == nil {
			switch scalar.(type) {
			case map[string]any, []any, nil, float64:
				// Floats keep their text so 1.10 stays 1.10.
			default:
				value = scalar
			}
		}
	}

	out := map[string]any{}
	cur := out
	for _, part := range parts[:len(parts)-1] {
		next := map[string]any{}
		cur[part] = next
		cur = next
	}
	cur[parts[len(parts)-1]] = value
	return out, nil
}

// Merge copies src into dst, descending into maps present on both sides.
// Values from src win. dst is returned for chaining and is allocated when
// nil.
func Merge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, value := range src {
		srcMap, srcIsMap := value.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = Merge(dstMap, srcMap)
			continue
		}
		dst[key] = value
	}
	return dst
}
