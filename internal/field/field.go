// Package field groups a token sequence with the indexers applied to it and
// produces padded id arrays for batching.
package field

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/example/go-nertags/internal/indexer"
	"github.com/example/go-nertags/internal/token"
	"github.com/example/go-nertags/internal/vocab"
)

// NumTokensKey is the padding-length key for the sequence dimension.
const NumTokensKey = indexer.NumTokensKey

// ErrNotIndexed is returned by AsPadded before Index has run.
var ErrNotIndexed = errors.New("field has not been indexed")

// TextField is a token sequence indexed by one or more named indexers.
type TextField struct {
	Tokens   []token.Token
	Indexers map[string]indexer.TokenIndexer

	ids     map[string][]int
	padding map[string]int
}

// NewTextField returns a field over tokens using indexers keyed by name.
func NewTextField(tokens []token.Token, indexers map[string]indexer.TokenIndexer) *TextField {
	return &TextField{Tokens: tokens, Indexers: indexers}
}

// CountVocabItems feeds every token to every indexer.
func (f *TextField) CountVocabItems(counter vocab.Counter) {
	for _, name := range f.indexerNames() {
		indexer.CountTokens(f.Indexers[name], f.Tokens, counter)
	}
}

// Index converts the tokens with every indexer and resolves padding tokens.
func (f *TextField) Index(v *vocab.Vocabulary) error {
	ids := make(map[string][]int, len(f.Indexers))
	padTokens := make(map[string]int, len(f.Indexers))

	for _, name := range f.indexerNames() {
		ix := f.Indexers[name]
		seq, err := indexer.IndexTokens(ix, f.Tokens, v)
		if err != nil {
			return fmt.Errorf("indexer %q: %w", name, err)
		}
		padTok, err := ix.PaddingToken(v)
		if err != nil {
			return fmt.Errorf("indexer %q: padding token: %w", name, err)
		}
		ids[name] = seq
		padTokens[name] = padTok
	}

	f.ids = ids
	f.padding = padTokens
	return nil
}

// Indexed reports whether Index has completed.
func (f *TextField) Indexed() bool { return f.ids != nil }

// PaddingLengths returns num_tokens merged with the largest per-token
// lengths reported by each indexer.
func (f *TextField) PaddingLengths() map[string]int {
	lengths := map[string]int{NumTokensKey: len(f.Tokens)}
	for _, name := range f.indexerNames() {
		ix := f.Indexers[name]
		for _, id := range f.ids[name] {
			for k, n := range ix.PaddingLengths(id) {
				lengths[k] = max(lengths[k], n)
			}
		}
	}
	return lengths
}

// AsPadded pads every indexed sequence to lengths[num_tokens].
func (f *TextField) AsPadded(lengths map[string]int) (map[string][]int, error) {
	if !f.Indexed() {
		return nil, ErrNotIndexed
	}

	desired := lengths[NumTokensKey]
	out := make(map[string][]int, len(f.ids))
	for name, seq := range f.ids {
		out[name] = f.Indexers[name].PadTokenSequence(seq, desired, lengths, f.padding[name])
	}
	return out, nil
}

func (f *TextField) indexerNames() []string {
	return slices.Sorted(maps.Keys(f.Indexers))
}
