package indexer

import (
	"fmt"
	"strings"

	"github.com/example/go-nertags/internal/pad"
	"github.com/example/go-nertags/internal/params"
	"github.com/example/go-nertags/internal/token"
	"github.com/example/go-nertags/internal/vocab"
)

const DefaultTokensNamespace = "tokens"

// SingleIDIndexer indexes tokens by their surface text. Its namespace is
// normally padded, so the padding token is index 0 and unseen words map to
// the OOV index.
type SingleIDIndexer struct {
	namespace string
	lowercase bool
	// minPaddingLength is the smallest num_tokens this indexer pads to.
	minPaddingLength int
}

func NewSingleIDIndexer(namespace string, lowercase bool) *SingleIDIndexer {
	if namespace == "" {
		namespace = DefaultTokensNamespace
	}
	return &SingleIDIndexer{namespace: namespace, lowercase: lowercase}
}

func init() {
	Register("single_id", func(p *params.Params) (TokenIndexer, error) {
		ns, err := p.PopString("namespace", DefaultTokensNamespace)
		if err != nil {
			return nil, err
		}
		lower, err := p.PopBool("lowercase_tokens", false)
		if err != nil {
			return nil, err
		}
		minLen, err := p.PopInt("token_min_padding_length", 0)
		if err != nil {
			return nil, err
		}
		if minLen < 0 {
			return nil, &params.ConfigurationError{Msg: fmt.Sprintf("token_min_padding_length must not be negative, got %d", minLen)}
		}
		if err := p.AssertEmpty("SingleIDIndexer"); err != nil {
			return nil, err
		}
		ix := NewSingleIDIndexer(ns, lower)
		ix.minPaddingLength = minLen
		return ix, nil
	})
}

func (s *SingleIDIndexer) Namespace() string { return s.namespace }

func (s *SingleIDIndexer) text(tok token.Token) string {
	if s.lowercase {
		return strings.ToLower(tok.Text)
	}
	return tok.Text
}

func (s *SingleIDIndexer) CountVocabItems(tok token.Token, counter vocab.Counter) {
	counter.Inc(s.namespace, s.text(tok))
}

func (s *SingleIDIndexer) TokenToIndex(tok token.Token, v *vocab.Vocabulary) (int, error) {
	return v.TokenIndex(s.namespace, s.text(tok))
}

func (s *SingleIDIndexer) PaddingToken(v *vocab.Vocabulary) (int, error) {
	if v.IsPadded(s.namespace) {
		return 0, nil
	}
	return v.TokenIndex(s.namespace, vocab.PaddingToken)
}

// PaddingLengths asks for at least token_min_padding_length tokens when that
// parameter is set.
func (s *SingleIDIndexer) PaddingLengths(int) map[string]int {
	if s.minPaddingLength > 0 {
		return map[string]int{NumTokensKey: s.minPaddingLength}
	}
	return map[string]int{}
}

func (s *SingleIDIndexer) PadTokenSequence(ids []int, desiredNumTokens int, _ map[string]int, padToken int) []int {
	return pad.ToLength(ids, desiredNumTokens, pad.Const(padToken), true)
}
