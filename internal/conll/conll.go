// Package conll reads CoNLL-2003 style NER files into annotated tokens.
//
// Each non-blank line holds whitespace-separated columns: the word first,
// the NER tag last and, when three or more columns are present, the POS tag
// second. A blank line ends a sentence and -DOCSTART- lines are skipped.
package conll

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/go-nertags/internal/text"
	"github.com/example/go-nertags/internal/token"
)

const docStart = "-DOCSTART-"

// OutsideTag marks a token outside any entity.
const OutsideTag = "O"

// ErrMalformedLine is wrapped by errors about unreadable lines.
var ErrMalformedLine = errors.New("malformed conll line")

// Sentence is one blank-line separated block.
type Sentence struct {
	Tokens []token.Token
	// Line is the 1-based line number of the first token.
	Line int
}

// Reader parses CoNLL data. The zero value strips BIO prefixes.
type Reader struct {
	// KeepBIO keeps the raw NER column (B-PER, I-PER) instead of the bare
	// entity type.
	KeepBIO bool
	// MaxLineBytes bounds a single line; 0 means bufio's default.
	MaxLineBytes int
}

// ReadFile opens path and reads it with r.
func (r Reader) ReadFile(ctx context.Context, path string) ([]Sentence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open conll file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return r.Read(ctx, f)
}

// Read parses every sentence from src.
func (r Reader) Read(ctx context.Context, src io.Reader) ([]Sentence, error) {
	sc := bufio.NewScanner(src)
	if r.MaxLineBytes > 0 {
		sc.Buffer(make([]byte, 0, min(r.MaxLineBytes, 64*1024)), r.MaxLineBytes)
	}

	var (
		out     []Sentence
		current Sentence
		lineNo  int
	)
	flush := func() {
		if len(current.Tokens) > 0 {
			out = append(out, current)
		}
		current = Sentence{}
	}

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lineNo++

		line := strings.TrimSpace(sc.Text())
		if line == "" {
			flush()
			continue
		}

		cols := strings.Fields(line)
		if cols[0] == docStart {
			flush()
			continue
		}

		tok, err := r.parseColumns(cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		tok.Idx = len(current.Tokens)
		if current.Tokens == nil {
			current.Line = lineNo
		}
		current.Tokens = append(current.Tokens, tok)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
	}
	flush()

	return out, nil
}

func (r Reader) parseColumns(cols []string) (token.Token, error) {
	word, err := text.Token(cols[0])
	if err != nil {
		return token.Token{}, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}
	tok := token.Token{Text: word}
	if len(cols) >= 3 {
		tok.POS = cols[1]
	}
	if len(cols) >= 2 {
		ent, err := r.entityType(cols[len(cols)-1])
		if err != nil {
			return token.Token{}, err
		}
		tok.EntType = text.Label(ent)
	}
	return tok, nil
}

// entityType converts a NER column value to the token's entity type.
func (r Reader) entityType(tag string) (string, error) {
	if tag == OutsideTag {
		return "", nil
	}
	if r.KeepBIO {
		return tag, nil
	}

	prefix, ent, ok := strings.Cut(tag, "-")
	if !ok {
		return tag, nil
	}
	switch prefix {
	case "B", "I", "E", "S", "L", "U":
		if ent == "" {
			return "", fmt.Errorf("%w: empty entity type in %q", ErrMalformedLine, tag)
		}
		return ent, nil
	default:
		return tag, nil
	}
}

// Tokens flattens sentences into their token slices.
func Tokens(sentences []Sentence) [][]token.Token {
	out := make([][]token.Token, len(sentences))
	for i, s := range sentences {
		out[i] = s.Tokens
	}
	return out
}
