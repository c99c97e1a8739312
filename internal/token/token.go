// Package token defines the annotated word unit consumed by token indexers.
package token

// Token is a single word with optional linguistic annotations.
// An empty EntType means the token carries no entity-type label.
type Token struct {
	Text    string `json:"text"`
	Idx     int    `json:"idx,omitempty"`
	POS     string `json:"pos,omitempty"`
	EntType string `json:"ent_type,omitempty"`
}

// EntTypeOr returns the entity-type label, or def when the label is absent.
func (t Token) EntTypeOr(def string) string {
	if t.EntType == "" {
		return def
	}
	return t.EntType
}

// POSOr returns the part-of-speech tag, or def when the tag is absent.
func (t Token) POSOr(def string) string {
	if t.POS == "" {
		return def
	}
	return t.POS
}

// Texts returns the surface text of each token.
func Texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Text
	}
	return out
}
