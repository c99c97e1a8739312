package indexer

import (
	"github.com/example/go-nertags/internal/pad"
	"github.com/example/go-nertags/internal/params"
	"github.com/example/go-nertags/internal/token"
	"github.com/example/go-nertags/internal/vocab"
)

const (
	// NoneTag stands in for a token without an entity-type label.
	NoneTag = "NONE"

	DefaultNerNamespace = "ner_tags"
)

// NerTagIndexer indexes tokens by their entity type.
type NerTagIndexer struct {
	namespace string
}

// NewNerTagIndexer returns an indexer over namespace, or over
// DefaultNerNamespace when namespace is empty.
func NewNerTagIndexer(namespace string) *NerTagIndexer {
	if namespace == "" {
		namespace = DefaultNerNamespace
	}
	return &NerTagIndexer{namespace: namespace}
}

// NewNerTagIndexerFromParams reads the optional "namespace" key and rejects
// any other key.
func NewNerTagIndexerFromParams(p *params.Params) (*NerTagIndexer, error) {
	ns, err := p.PopString("namespace", DefaultNerNamespace)
	if err != nil {
		return nil, err
	}
	if err := p.AssertEmpty("NerTagIndexer"); err != nil {
		return nil, err
	}
	return NewNerTagIndexer(ns), nil
}

func init() {
	Register("ner_tag", func(p *params.Params) (TokenIndexer, error) {
		return NewNerTagIndexerFromParams(p)
	})
}

func (n *NerTagIndexer) Namespace() string { return n.namespace }

func (n *NerTagIndexer) CountVocabItems(tok token.Token, counter vocab.Counter) {
	counter.Inc(n.namespace, tok.EntTypeOr(NoneTag))
}

func (n *NerTagIndexer) TokenToIndex(tok token.Token, v *vocab.Vocabulary) (int, error) {
	return v.TokenIndex(n.namespace, tok.EntTypeOr(NoneTag))
}

// PaddingToken is the index of NoneTag.
func (n *NerTagIndexer) PaddingToken(v *vocab.Vocabulary) (int, error) {
	return v.TokenIndex(n.namespace, NoneTag)
}

// PaddingLengths is always empty: each token maps to a single id.
func (n *NerTagIndexer) PaddingLengths(int) map[string]int {
	return map[string]int{}
}

func (n *NerTagIndexer) PadTokenSequence(ids []int, desiredNumTokens int, _ map[string]int, padToken int) []int {
	return pad.ToLength(ids, desiredNumTokens, pad.Const(padToken), true)
}
