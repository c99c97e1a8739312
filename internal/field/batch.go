package field

import (
	"fmt"

	"github.com/example/go-nertags/internal/pad"
	"github.com/example/go-nertags/internal/vocab"
)

// Batch is a set of fields padded to a common length.
type Batch struct {
	Length int
	IDs    []map[string][]int
	Mask   [][]bool
}

// NewBatch indexes every field and pads all of them to the longest sequence,
// or to maxLen when maxLen > 0.
func NewBatch(fields []*TextField, v *vocab.Vocabulary, maxLen int) (*Batch, error) {
	lengths := map[string]int{}
	for i, f := range fields {
		if err := f.Index(v); err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		for k, n := range f.PaddingLengths() {
			lengths[k] = max(lengths[k], n)
		}
	}
	if maxLen > 0 {
		lengths[NumTokensKey] = maxLen
	}

	b := &Batch{
		Length: lengths[NumTokensKey],
		IDs:    make([]map[string][]int, len(fields)),
		Mask:   make([][]bool, len(fields)),
	}
	for i, f := range fields {
		padded, err := f.AsPadded(lengths)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		b.IDs[i] = padded
		b.Mask[i] = pad.Mask(len(f.Tokens), b.Length)
	}

	return b, nil
}
