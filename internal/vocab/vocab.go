// Package vocab implements a namespaced string-to-index vocabulary.
//
// Each namespace maps tags to dense integer ids starting at 0. Padded
// namespaces reserve index 0 for the padding token and index 1 for the
// out-of-vocabulary token; non-padded namespaces (by default those ending in
// "tags" or "labels") start empty and reject unknown tags.
package vocab

import (
	"cmp"
	"errors"
	"fmt"
	"path"
	"slices"
	"sync"
)

const (
	PaddingToken = "@@PADDING@@"
	OOVToken     = "@@UNKNOWN@@"
)

// DefaultNonPaddedNamespaces are the glob patterns of namespaces that carry
// no padding or OOV entries.
var DefaultNonPaddedNamespaces = []string{"*tags", "*labels"}

var (
	// ErrTokenNotFound is returned when a tag is missing from a non-padded namespace.
	ErrTokenNotFound = errors.New("token not in vocabulary")
	// ErrIndexOutOfRange is returned by TokenFromIndex for unassigned ids.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Counter accumulates tag frequencies keyed by (namespace, tag).
type Counter map[string]map[string]int

// Inc increments the count of tag in namespace.
func (c Counter) Inc(namespace, tag string) {
	m, ok := c[namespace]
	if !ok {
		m = make(map[string]int)
		c[namespace] = m
	}
	m[tag]++
}

// Count returns the frequency of tag in namespace.
func (c Counter) Count(namespace, tag string) int {
	return c[namespace][tag]
}

type namespace struct {
	index  map[string]int
	tokens []string
	padded bool
}

// Vocabulary is safe for concurrent use.
type Vocabulary struct {
	mu         sync.RWMutex
	namespaces map[string]*namespace
	nonPadded  []string
}

// Option configures a Vocabulary.
type Option func(*Vocabulary)

// WithNonPaddedNamespaces replaces the default non-padded namespace patterns.
func WithNonPaddedNamespaces(patterns ...string) Option {
	return func(v *Vocabulary) { v.nonPadded = append([]string(nil), patterns...) }
}

// New returns an empty vocabulary.
func New(opts ...Option) *Vocabulary {
	v := &Vocabulary{
		namespaces: make(map[string]*namespace),
		nonPadded:  append([]string(nil), DefaultNonPaddedNamespaces...),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// FromCounter builds a vocabulary from counted tags. Within each namespace
// tags are added by descending count, ties broken by tag. Tags whose count is
// below minCount[namespace] are skipped.
func FromCounter(counter Counter, minCount map[string]int, opts ...Option) *Vocabulary {
	v := New(opts...)

	names := make([]string, 0, len(counter))
	for ns := range counter {
		names = append(names, ns)
	}
	slices.Sort(names)

	for _, ns := range names {
		counts := counter[ns]
		tags := make([]string, 0, len(counts))
		for tag := range counts {
			tags = append(tags, tag)
		}
		slices.SortFunc(tags, func(a, b string) int {
			if c := cmp.Compare(counts[b], counts[a]); c != 0 {
				return c
			}
			return cmp.Compare(a, b)
		})

		floor := minCount[ns]
		v.mu.Lock()
		n := v.namespaceLocked(ns)
		for _, tag := range tags {
			if counts[tag] < floor {
				continue
			}
			n.add(tag)
		}
		v.mu.Unlock()
	}

	return v
}

// IsPadded reports whether namespace reserves padding and OOV entries.
func (v *Vocabulary) IsPadded(ns string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if n, ok := v.namespaces[ns]; ok {
		return n.padded
	}
	return v.paddedByPattern(ns)
}

// NonPaddedNamespaces returns the configured non-padded patterns.
func (v *Vocabulary) NonPaddedNamespaces() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]string(nil), v.nonPadded...)
}

// AddToken returns the index of tag in namespace, assigning the next free
// index when the tag is new.
func (v *Vocabulary) AddToken(ns, tag string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.namespaceLocked(ns).add(tag)
}

// TokenIndex looks up tag in namespace. Unknown tags resolve to the OOV index
// in padded namespaces and to ErrTokenNotFound in non-padded ones.
func (v *Vocabulary) TokenIndex(ns, tag string) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	n, ok := v.namespaces[ns]
	if ok {
		if idx, found := n.index[tag]; found {
			return idx, nil
		}
		if n.padded {
			return n.index[OOVToken], nil
		}
		return 0, fmt.Errorf("namespace %q: tag %q: %w", ns, tag, ErrTokenNotFound)
	}

	if v.paddedByPattern(ns) {
		return 1, nil
	}
	return 0, fmt.Errorf("namespace %q: tag %q: %w", ns, tag, ErrTokenNotFound)
}

// TokenFromIndex returns the tag stored at idx in namespace.
func (v *Vocabulary) TokenFromIndex(ns string, idx int) (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	n, ok := v.namespaces[ns]
	if !ok || idx < 0 || idx >= len(n.tokens) {
		return "", fmt.Errorf("namespace %q: index %d: %w", ns, idx, ErrIndexOutOfRange)
	}
	return n.tokens[idx], nil
}

// Size returns the number of entries in namespace, including padding and OOV
// entries of padded namespaces.
func (v *Vocabulary) Size(ns string) int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if n, ok := v.namespaces[ns]; ok {
		return len(n.tokens)
	}
	if v.paddedByPattern(ns) {
		return 2
	}
	return 0
}

// Tokens returns the entries of namespace in index order. It returns nil
// only for an unknown namespace; a known but empty one yields an empty slice.
func (v *Vocabulary) Tokens(ns string) []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if n, ok := v.namespaces[ns]; ok {
		out := make([]string, len(n.tokens))
		copy(out, n.tokens)
		return out
	}
	return nil
}

// Namespaces returns the sorted names of all namespaces seen so far.
func (v *Vocabulary) Namespaces() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	names := make([]string, 0, len(v.namespaces))
	for ns := range v.namespaces {
		names = append(names, ns)
	}
	slices.Sort(names)
	return names
}

func (v *Vocabulary) namespaceLocked(ns string) *namespace {
	n, ok := v.namespaces[ns]
	if ok {
		return n
	}
	n = &namespace{index: make(map[string]int), padded: v.paddedByPattern(ns)}
	if n.padded {
		n.add(PaddingToken)
		n.add(OOVToken)
	}
	v.namespaces[ns] = n
	return n
}

func (v *Vocabulary) paddedByPattern(ns string) bool {
	for _, pattern := range v.nonPadded {
		if ok, _ := path.Match(pattern, ns); ok {
			return false
		}
	}
	return true
}

func (n *namespace) add(tag string) int {
	if idx, ok := n.index[tag]; ok {
		return idx
	}
	idx := len(n.tokens)
	n.index[tag] = idx
	n.tokens = append(n.tokens, tag)
	return idx
}
