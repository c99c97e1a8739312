// Package text normalizes token surface forms and tag labels before they
// reach a vocabulary, so visually identical strings share one id.
package text

import (
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrEmptyText is returned when a token is empty or whitespace-only.
var ErrEmptyText = errors.New("text is empty")

// Token prepares a token's surface text: it trims surrounding whitespace,
// composes the string to Unicode NFC and rejects empty input.
func Token(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyText
	}
	return norm.NFC.String(s), nil
}

// Label normalizes an annotation label. An empty or whitespace-only label
// stays empty, meaning "absent".
func Label(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return norm.NFC.String(s)
}
