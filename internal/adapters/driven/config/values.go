// Package config holds typed access to flat, dot-notation configuration
// values shared by the file and memory config stores.
package config

import (
	"maps"
	"slices"
	"strings"
)

// Values is a flat map of dot-notation keys to decoded values.
type Values map[string]any

// String returns the string at key, or "".
func (v Values) String(key string) string {
	s, _ := v[key].(string)
	return s
}

// Int returns the integer at key, or 0. TOML integers decode as int64.
func (v Values) Int(key string) int {
	switch n := v[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// Float returns the number at key widened to float64, or 0.
func (v Values) Float(key string) float64 {
	switch n := v[key].(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

// Bool returns the boolean at key, or false.
func (v Values) Bool(key string) bool {
	b, _ := v[key].(bool)
	return b
}

// StringSlice returns the strings at key. TOML arrays decode as []any;
// non-string items are skipped.
func (v Values) StringSlice(key string) []string {
	switch s := v[key].(type) {
	case []string:
		return s
	case []any:
		result := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	default:
		return nil
	}
}

// Flatten converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func Flatten(m map[string]any) Values {
	out := make(Values)
	flatten(out, m, "")
	return out
}

func flatten(out Values, m map[string]any, prefix string) {
	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flatten(out, nested, fullKey)
			continue
		}
		out[fullKey] = value
	}
}

// Nest is the inverse of Flatten: "a.b" = 1 becomes {"a": {"b": 1}}.
// A key that is both a value and a table prefix keeps the value and the
// nested keys are dropped. Keys are visited in sorted order so the result is
// deterministic.
func (v Values) Nest() map[string]any {
	root := make(map[string]any)
	for _, key := range slices.Sorted(maps.Keys(v)) {
		value := v[key]
		parts := strings.Split(key, ".")
		node := root
		ok := true
		for _, part := range parts[:len(parts)-1] {
			child, exists := node[part]
			if !exists {
				next := make(map[string]any)
				node[part] = next
				node = next
				continue
			}
			next, isMap := child.(map[string]any)
			if !isMap {
				ok = false
				break
			}
			node = next
		}
		if !ok {
			continue
		}
		node[parts[len(parts)-1]] = value
	}
	return root
}
