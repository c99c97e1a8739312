// Package params holds the construction parameters of pluggable components.
// Values are consumed with the Pop* methods; AssertEmpty then rejects any
// key the component did not recognise.
package params

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// ConfigurationError reports invalid or unrecognised parameters.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// Params is a mutable view over a parameter map. It is not safe for
// concurrent use.
type Params struct {
	values  map[string]any
	history string
}

// New wraps m. The map is deep-copied so popping, at any nesting level,
// never mutates the caller's data.
func New(m map[string]any) *Params {
	values := make(map[string]any, len(m))
	for k, v := range m {
		values[k] = cloneValue(v)
	}
	return &Params{values: values}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// FromFile reads a YAML or JSON parameter file.
func FromFile(path string) (*Params, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read params file: %w", err)
	}

	var m map[string]any
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse params file %s: %w", path, err)
	}

	return New(m), nil
}

func (p *Params) key(k string) string { return p.history + k }

// Len returns the number of unconsumed keys.
func (p *Params) Len() int { return len(p.values) }

// Keys returns the unconsumed keys in sorted order.
func (p *Params) Keys() []string {
	return slices.Sorted(maps.Keys(p.values))
}

// Pop removes key and returns its raw value.
func (p *Params) Pop(key string) (any, bool) {
	v, ok := p.values[key]
	delete(p.values, key)
	return v, ok
}

// PopString removes key and returns it as a string, or def when absent or null.
func (p *Params) PopString(key, def string) (string, error) {
	v, ok := p.Pop(key)
	if !ok || v == nil {
		return def, nil
	}
	switch v.(type) {
	case map[string]any, []any:
		return "", configErrorf("%s: expected a string, got %T", p.key(key), v)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", configErrorf("%s: %v", p.key(key), err)
	}
	return s, nil
}

// PopInt removes key and returns it as an int, or def when absent or null.
func (p *Params) PopInt(key string, def int) (int, error) {
	v, ok := p.Pop(key)
	if !ok || v == nil {
		return def, nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, configErrorf("%s: %v", p.key(key), err)
	}
	return n, nil
}

// PopBool removes key and returns it as a bool, or def when absent or null.
func (p *Params) PopBool(key string, def bool) (bool, error) {
	v, ok := p.Pop(key)
	if !ok || v == nil {
		return def, nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, configErrorf("%s: %v", p.key(key), err)
	}
	return b, nil
}

// PopParams removes key and returns its nested object as Params. An absent
// key yields empty Params.
func (p *Params) PopParams(key string) (*Params, error) {
	v, ok := p.Pop(key)
	if !ok || v == nil {
		return &Params{values: map[string]any{}, history: p.key(key) + "."}, nil
	}
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return nil, configErrorf("%s: expected an object: %v", p.key(key), err)
	}
	return &Params{values: maps.Clone(m), history: p.key(key) + "."}, nil
}

// AssertEmpty fails when any key is left unconsumed.
func (p *Params) AssertEmpty(className string) error {
	if len(p.values) == 0 {
		return nil
	}
	keys := p.Keys()
	for i, k := range keys {
		keys[i] = p.key(k)
	}
	return configErrorf("extra parameters passed to %s: %s", className, strings.Join(keys, ", "))
}
