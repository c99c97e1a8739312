// Package indexer converts annotated tokens into vocabulary ids.
//
// A TokenIndexer decides which string of a token is looked up (its text, its
// entity type, its part-of-speech tag), which vocabulary namespace it lives
// in, and how sequences of ids are padded. Indexers are registered under a
// name and constructed from params.Params.
package indexer

import (
	"fmt"
	"slices"
	"sync"

	"github.com/example/go-nertags/internal/params"
	"github.com/example/go-nertags/internal/token"
	"github.com/example/go-nertags/internal/vocab"
)

const (
	// DefaultType is used by FromParams when no "type" key is given.
	DefaultType = "ner_tag"

	// NumTokensKey is the padding-length key for the sequence dimension.
	NumTokensKey = "num_tokens"
)

// TokenIndexer maps tokens to integer ids within a vocabulary namespace.
type TokenIndexer interface {
	// CountVocabItems records the vocabulary entries tok contributes.
	CountVocabItems(tok token.Token, counter vocab.Counter)
	// TokenToIndex returns the id of tok.
	TokenToIndex(tok token.Token, v *vocab.Vocabulary) (int, error)
	// PaddingToken returns the id used to pad sequences.
	PaddingToken(v *vocab.Vocabulary) (int, error)
	// PaddingLengths returns the extra padding dimensions of one id.
	PaddingLengths(index int) map[string]int
	// PadTokenSequence pads or truncates ids to desiredNumTokens.
	PadTokenSequence(ids []int, desiredNumTokens int, paddingLengths map[string]int, padToken int) []int
	// Namespace returns the vocabulary namespace the indexer reads.
	Namespace() string
}

// Factory builds an indexer from its parameters.
type Factory func(p *params.Params) (TokenIndexer, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a factory available to FromParams under name.
// Registering the same name twice panics.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("indexer: Register called twice for %q", name))
	}
	registry[name] = f
}

// Names returns the registered indexer names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered reports whether name has a factory.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

// FromParams pops "type" (default DefaultType) and hands the remaining
// parameters to the registered factory.
func FromParams(p *params.Params) (TokenIndexer, error) {
	name, err := p.PopString("type", DefaultType)
	if err != nil {
		return nil, err
	}

	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, &params.ConfigurationError{
			Msg: fmt.Sprintf("unknown token indexer type %q (registered: %v)", name, Names()),
		}
	}

	return f(p)
}

// IndexTokens converts every token with ix.
func IndexTokens(ix TokenIndexer, tokens []token.Token, v *vocab.Vocabulary) ([]int, error) {
	ids := make([]int, len(tokens))
	for i, tok := range tokens {
		id, err := ix.TokenToIndex(tok, v)
		if err != nil {
			return nil, fmt.Errorf("token %d (%q): %w", i, tok.Text, err)
		}
		ids[i] = id
	}
	return ids, nil
}

// CountTokens feeds every token to ix.CountVocabItems.
func CountTokens(ix TokenIndexer, tokens []token.Token, counter vocab.Counter) {
	for _, tok := range tokens {
		ix.CountVocabItems(tok, counter)
	}
}
