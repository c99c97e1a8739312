package indexer

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/example/go-nertags/internal/params"
	"github.com/example/go-nertags/internal/token"
	"github.com/example/go-nertags/internal/vocab"
)

func TestNames_IncludesBuiltins(t *testing.T) {
	names := Names()
	for _, want := range []string{"ner_tag", "pos_tag", "single_id"} {
		if !slices.Contains(names, want) {
			t.Errorf("Names() = %v; missing %q", names, want)
		}
	}

	if !IsRegistered("ner_tag") || IsRegistered("nope") {
		t.Error("IsRegistered reports wrong result")
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Register(ner_tag) twice did not panic")
		}
	}()
	Register("ner_tag", nil)
}

func TestFromParams(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
		wantNS string
	}{
		{"default type is ner_tag", map[string]any{}, "ner_tags"},
		{"ner_tag with namespace", map[string]any{"type": "ner_tag", "namespace": "ents"}, "ents"},
		{"pos_tag", map[string]any{"type": "pos_tag"}, "pos_tags"},
		{"single_id", map[string]any{"type": "single_id", "lowercase_tokens": true}, "tokens"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix, err := FromParams(params.New(tt.values))
			if err != nil {
				t.Fatalf("FromParams: %v", err)
			}

			if ix.Namespace() != tt.wantNS {
				t.Errorf("Namespace() = %q; want %q", ix.Namespace(), tt.wantNS)
			}
		})
	}
}

func TestFromParams_Errors(t *testing.T) {
	_, err := FromParams(params.New(map[string]any{"type": "characters"}))

	var cerr *params.ConfigurationError
	if !errors.As(err, &cerr) || !strings.Contains(err.Error(), "characters") {
		t.Errorf("unknown type error = %v; want ConfigurationError naming the type", err)
	}

	_, err = FromParams(params.New(map[string]any{"type": "pos_tag", "extra": 1}))
	if !errors.As(err, &cerr) {
		t.Errorf("extra key error = %v; want ConfigurationError", err)
	}
}

func TestPosTagIndexer(t *testing.T) {
	ix := NewPosTagIndexer("")
	counter := vocab.Counter{}
	ix.CountVocabItems(token.Token{Text: "dog", POS: "NN"}, counter)
	ix.CountVocabItems(token.Token{Text: "?"}, counter)

	if counter.Count("pos_tags", "NN") != 1 || counter.Count("pos_tags", "NONE") != 1 {
		t.Fatalf("counter = %v; want NN and NONE counted once", counter)
	}

	v := vocab.FromCounter(counter, nil)

	padTok, err := ix.PaddingToken(v)
	if err != nil {
		t.Fatalf("PaddingToken: %v", err)
	}

	id, err := ix.TokenToIndex(token.Token{Text: "?"}, v)
	if err != nil || id != padTok {
		t.Errorf("TokenToIndex(untagged) = %d, %v; want %d", id, err, padTok)
	}
}

func TestSingleIDIndexer(t *testing.T) {
	ix := NewSingleIDIndexer("", true)
	counter := vocab.Counter{}
	ix.CountVocabItems(token.Token{Text: "Paris"}, counter)

	if counter.Count("tokens", "paris") != 1 {
		t.Fatalf("counter = %v; want lowercased paris", counter)
	}

	v := vocab.FromCounter(counter, nil)

	id, err := ix.TokenToIndex(token.Token{Text: "PARIS"}, v)
	if err != nil || id != 2 {
		t.Errorf("TokenToIndex(PARIS) = %d, %v; want 2, nil", id, err)
	}

	id, err = ix.TokenToIndex(token.Token{Text: "Lyon"}, v)
	if err != nil || id != 1 {
		t.Errorf("TokenToIndex(unseen) = %d, %v; want OOV 1, nil", id, err)
	}

	padTok, err := ix.PaddingToken(v)
	if err != nil || padTok != 0 {
		t.Errorf("PaddingToken() = %d, %v; want 0, nil", padTok, err)
	}
}

func TestIndexTokens_WrapsErrorWithPosition(t *testing.T) {
	v := vocab.New()
	v.AddToken("ner_tags", "NONE")

	_, err := IndexTokens(NewNerTagIndexer(""), []token.Token{{Text: "a"}, {Text: "IBM", EntType: "ORG"}}, v)
	if !errors.Is(err, vocab.ErrTokenNotFound) {
		t.Fatalf("IndexTokens error = %v; want ErrTokenNotFound", err)
	}

	if !strings.Contains(err.Error(), "token 1") {
		t.Errorf("error %q should name the token position", err)
	}
}

func TestSingleIDIndexer_MinPaddingLength(t *testing.T) {
	ix, err := FromParams(params.New(map[string]any{
		"type":                     "single_id",
		"token_min_padding_length": "5",
	}))
	if err != nil {
		t.Fatalf("FromParams: %v", err)
	}

	got := ix.PaddingLengths(7)
	if len(got) != 1 || got[NumTokensKey] != 5 {
		t.Errorf("PaddingLengths() = %v; want {%s: 5}", got, NumTokensKey)
	}

	if got := NewSingleIDIndexer("", false).PaddingLengths(7); len(got) != 0 {
		t.Errorf("PaddingLengths() without minimum = %v; want empty", got)
	}

	for _, bad := range []any{-1, "many"} {
		_, err := FromParams(params.New(map[string]any{
			"type":                     "single_id",
			"token_min_padding_length": bad,
		}))

		var cfgErr *params.ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Errorf("token_min_padding_length=%v: error = %v; want *params.ConfigurationError", bad, err)
		}
	}
}
