package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/example/go-nertags/internal/conll"
	"github.com/example/go-nertags/internal/field"
	"github.com/example/go-nertags/internal/indexer"
	"github.com/example/go-nertags/internal/token"
	"github.com/example/go-nertags/internal/vocab"
	"github.com/spf13/cobra"
)

// fieldName is the key the configured indexer is stored under in each field.
const fieldName = "tags"

type indexRecord struct {
	Tokens []string `json:"tokens"`
	IDs    []int    `json:"ids"`
	Mask   []bool   `json:"mask"`
}

func newIndexCmd() *cobra.Command {
	var (
		output    string
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "index [conll-file]",
		Short: "Convert a CoNLL file to padded tag ids (JSON lines)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			dataPath := cfg.Paths.DataPath
			if len(args) == 1 {
				dataPath = args[0]
			}
			if dataPath == "" {
				return errors.New("no data file: pass one as an argument or set --data")
			}

			ix, err := buildIndexer(cfg)
			if err != nil {
				return err
			}

			v, err := vocab.LoadFromDir(cfg.Paths.VocabDir)
			if err != nil {
				return err
			}

			sentences, err := conll.Reader{KeepBIO: cfg.Indexer.KeepBIO}.ReadFile(cmd.Context(), dataPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer func() { _ = f.Close() }()
				out = f
			}

			n, err := writeIndexed(out, conll.Tokens(sentences), ix, v, batchSize, cfg.Batch.MaxLength)
			if err != nil {
				return err
			}

			slog.Info("indexed sentences",
				slog.String("data", dataPath),
				slog.String("namespace", ix.Namespace()),
				slog.Int("sentences", n),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write JSON lines to this file instead of stdout")
	cmd.Flags().IntVar(&batchSize, "batch-size", 32, "Sentences padded together (<=0 pads the whole file as one batch)")

	return cmd
}

// writeIndexed indexes sentences in batches and writes one JSON record per
// sentence. It returns the number of records written.
func writeIndexed(
	w io.Writer,
	sentences [][]token.Token,
	ix indexer.TokenIndexer,
	v *vocab.Vocabulary,
	batchSize, maxLen int,
) (int, error) {
	if batchSize <= 0 {
		batchSize = max(len(sentences), 1)
	}

	enc := json.NewEncoder(w)
	written := 0
	for start := 0; start < len(sentences); start += batchSize {
		end := min(start+batchSize, len(sentences))

		fields := make([]*field.TextField, 0, end-start)
		for _, toks := range sentences[start:end] {
			fields = append(fields, field.NewTextField(toks, map[string]indexer.TokenIndexer{fieldName: ix}))
		}

		batch, err := field.NewBatch(fields, v, maxLen)
		if err != nil {
			return written, fmt.Errorf("sentences %d-%d: %w", start, end-1, err)
		}

		for i, f := range fields {
			rec := indexRecord{
				Tokens: token.Texts(f.Tokens),
				IDs:    batch.IDs[i][fieldName],
				Mask:   batch.Mask[i],
			}
			if err := enc.Encode(rec); err != nil {
				return written, fmt.Errorf("write record: %w", err)
			}
			written++
		}
	}

	return written, nil
}
