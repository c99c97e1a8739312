package config

import (
	"fmt"
	"strings"

	"github.com/example/go-nertags/internal/indexer"
)

const (
	IndexerNER      = "ner_tag"
	IndexerPOS      = "pos_tag"
	IndexerSingleID = "single_id"
)

func NormalizeIndexerType(raw string) (string, error) {
	typ := strings.ToLower(strings.TrimSpace(raw))
	if typ == "" {
		typ = IndexerNER
	}
	switch typ {
	case "ner", "ner-tag":
		typ = IndexerNER
	case "pos", "pos-tag":
		typ = IndexerPOS
	case "tokens", "single-id":
		typ = IndexerSingleID
	}
	if !indexer.IsRegistered(typ) {
		return "", fmt.Errorf(
			"invalid indexer %q (expected one of %s)",
			raw,
			strings.Join(indexer.Names(), "|"),
		)
	}
	return typ, nil
}
