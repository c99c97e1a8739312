package indexer

import (
	"github.com/example/go-nertags/internal/pad"
	"github.com/example/go-nertags/internal/params"
	"github.com/example/go-nertags/internal/token"
	"github.com/example/go-nertags/internal/vocab"
)

const DefaultPOSNamespace = "pos_tags"

// PosTagIndexer indexes tokens by their part-of-speech tag. Untagged tokens
// use NoneTag.
type PosTagIndexer struct {
	namespace string
}

func NewPosTagIndexer(namespace string) *PosTagIndexer {
	if namespace == "" {
		namespace = DefaultPOSNamespace
	}
	return &PosTagIndexer{namespace: namespace}
}

func init() {
	Register("pos_tag", func(p *params.Params) (TokenIndexer, error) {
		ns, err := p.PopString("namespace", DefaultPOSNamespace)
		if err != nil {
			return nil, err
		}
		if err := p.AssertEmpty("PosTagIndexer"); err != nil {
			return nil, err
		}
		return NewPosTagIndexer(ns), nil
	})
}

func (x *PosTagIndexer) Namespace() string { return x.namespace }

func (x *PosTagIndexer) CountVocabItems(tok token.Token, counter vocab.Counter) {
	counter.Inc(x.namespace, tok.POSOr(NoneTag))
}

func (x *PosTagIndexer) TokenToIndex(tok token.Token, v *vocab.Vocabulary) (int, error) {
	return v.TokenIndex(x.namespace, tok.POSOr(NoneTag))
}

func (x *PosTagIndexer) PaddingToken(v *vocab.Vocabulary) (int, error) {
	return v.TokenIndex(x.namespace, NoneTag)
}

func (x *PosTagIndexer) PaddingLengths(int) map[string]int { return map[string]int{} }

func (x *PosTagIndexer) PadTokenSequence(ids []int, desiredNumTokens int, _ map[string]int, padToken int) []int {
	return pad.ToLength(ids, desiredNumTokens, pad.Const(padToken), true)
}
