package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/go-nertags/internal/conll"
	"github.com/example/go-nertags/internal/indexer"
	"github.com/example/go-nertags/internal/vocab"
	"github.com/spf13/cobra"
)

func newVocabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Vocabulary construction and inspection commands",
	}

	cmd.AddCommand(newVocabBuildCmd())
	cmd.AddCommand(newVocabShowCmd())
	return cmd
}

func newVocabBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build [conll-file]",
		Short: "Count tags in a CoNLL file and save the vocabulary",
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

			v, sentences, err := buildVocab(cmd.Context(), conll.Reader{KeepBIO: cfg.Indexer.KeepBIO}, dataPath, ix, cfg.Vocab.MinCount)
			if err != nil {
				return err
			}

			if err := v.SaveToDir(cfg.Paths.VocabDir); err != nil {
				return fmt.Errorf("save vocabulary: %w", err)
			}

			slog.Info("vocabulary saved",
				slog.String("dir", cfg.Paths.VocabDir),
				slog.String("namespace", ix.Namespace()),
				slog.Int("sentences", sentences),
				slog.Int("size", v.Size(ix.Namespace())),
			)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries from %d sentences -> %s\n",
				ix.Namespace(), v.Size(ix.Namespace()), sentences, cfg.Paths.VocabDir)
			return err
		},
	}
}

func buildVocab(
	ctx context.Context,
	r conll.Reader,
	path string,
	ix indexer.TokenIndexer,
	minCount int,
) (*vocab.Vocabulary, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	sentences, err := r.ReadFile(ctx, path)
	if err != nil {
		return nil, 0, err
	}

	counter := vocab.Counter{}
	for _, s := range sentences {
		indexer.CountTokens(ix, s.Tokens, counter)
	}

	v := vocab.FromCounter(counter, map[string]int{ix.Namespace(): minCount})
	return v, len(sentences), nil
}

func newVocabShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [namespace]",
		Short: "List namespaces, or the entries of one namespace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			v, err := vocab.LoadFromDir(cfg.Paths.VocabDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, ns := range v.Namespaces() {
					padded := "non-padded"
					if v.IsPadded(ns) {
						padded = "padded"
					}
					if _, err := fmt.Fprintf(out, "%s\t%d\t%s\n", ns, v.Size(ns), padded); err != nil {
						return err
					}
				}
				return nil
			}

			tokens := v.Tokens(args[0])
			if tokens == nil {
				return fmt.Errorf("namespace %q not found in %s", args[0], cfg.Paths.VocabDir)
			}
			for i, tok := range tokens {
				if _, err := fmt.Fprintf(out, "%d\t%s\n", i, tok); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
