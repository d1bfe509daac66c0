// Package format holds the input-format decoders. Each format turns raw file
// bytes into the generic value tree that extraction walks; the extractor and
// backends never see format-specific types.
package format

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agentic-research/edb/internal/value"
)

// Format decodes one input syntax into the generic value model.
type Format interface {
	// Name is the identifier accepted by the --format flag.
	Name() string

	// Extensions lists the file extensions (without dot) used to guess the
	// format when none is given explicitly.
	Extensions() []string

	// Decode parses an input document.
	Decode(data []byte) (value.Value, error)
}

// All returns the supported formats in listing order.
func All() []Format {
	return []Format{JSON{}, TOML{}, YAML{}, HCL{}}
}

// ByName finds a format by its flag name.
func ByName(name string) (Format, bool) {
	for _, f := range All() {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// ByExtension finds a format by file extension (with or without leading dot).
func ByExtension(ext string) (Format, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, f := range All() {
		for _, e := range f.Extensions() {
			if e == ext {
				return f, true
			}
		}
	}
	return nil, false
}

// fromGo converts a decoded generic Go value (the map/slice/scalar trees the
// JSON, TOML, and YAML libraries produce) into the value model. Object keys
// are sorted so extraction output is deterministic regardless of Go map
// iteration order.
func fromGo(v any) (value.Value, error) {
	switch x := v.(type) {
	case nil:
		return value.Unit{}, nil
	case bool:
		return value.Bool(x), nil
	case string:
		return value.String(x), nil
	case int:
		return value.Int64(x), nil
	case int8:
		return value.Int8(x), nil
	case int16:
		return value.Int16(x), nil
	case int32:
		return value.Int32(x), nil
	case int64:
		return value.Int64(x), nil
	case uint:
		return value.Uint64(x), nil
	case uint8:
		return value.Uint8(x), nil
	case uint16:
		return value.Uint16(x), nil
	case uint32:
		return value.Uint32(x), nil
	case uint64:
		return value.Uint64(x), nil
	case float32:
		return value.Float32(x), nil
	case float64:
		return value.Float64(x), nil
	case []byte:
		return value.Bytes(x), nil
	case time.Time:
		return value.String(x.Format(time.RFC3339)), nil
	case []any:
		items := make([]value.Value, len(x))
		for i, item := range x {
			v, err := fromGo(item)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return value.Seq(items), nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]value.MapEntry, 0, len(keys))
		for _, k := range keys {
			v, err := fromGo(x[k])
			if err != nil {
				return nil, err
			}
			entries = append(entries, value.MapEntry{Key: value.String(k), Value: v})
		}
		return value.Map(entries), nil
	case map[any]any:
		// Non-string keys (YAML). Keys are sorted by their rendered form for
		// determinism; the resulting map needs the generic-key schema.
		keys := make([]any, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
		})
		entries := make([]value.MapEntry, 0, len(keys))
		for _, k := range keys {
			kv, err := fromGo(k)
			if err != nil {
				return nil, err
			}
			vv, err := fromGo(x[k])
			if err != nil {
				return nil, err
			}
			entries = append(entries, value.MapEntry{Key: kv, Value: vv})
		}
		return value.Map(entries), nil
	default:
		if s, ok := v.(fmt.Stringer); ok {
			return value.String(s.String()), nil
		}
		return nil, fmt.Errorf("cannot convert %T to a value", v)
	}
}
