package main

import (
	"fmt"
	"net"

	"github.com/example/go-nertags/internal/config"
	"github.com/example/go-nertags/internal/doctor"
	"github.com/example/go-nertags/internal/indexer"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, vocabulary and data files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			result := doctor.Run(doctorConfig(cfg), out)

			if err := checkListenAddr(cfg.Server.ListenAddr); err != nil {
				result.AddFailure(fmt.Sprintf("listen address: %v", err))
				_, _ = fmt.Fprintf(out, "%s listen address: %v\n", doctor.FailMark, err)
			} else {
				_, _ = fmt.Fprintf(out, "%s listen address: %s\n", doctor.PassMark, cfg.Server.ListenAddr)
			}

			if result.Failed() {
				return fmt.Errorf("doctor: %d check(s) failed", len(result.Failures()))
			}

			_, err = fmt.Fprintln(out, "all checks passed")
			return err
		},
	}
}

func doctorConfig(cfg config.Config) doctor.Config {
	ix, ixErr := buildIndexer(cfg)

	dcfg := doctor.Config{
		IndexerType: cfg.Indexer.Type,
		ValidateIndexer: func(string) (string, error) {
			if ixErr != nil {
				return "", ixErr
			}
			return ix.Namespace(), nil
		},
		VocabDir: cfg.Paths.VocabDir,
		DataPath: cfg.Paths.DataPath,
	}
	if cfg.Indexer.ParamsFile != "" {
		dcfg.IndexerType = cfg.Indexer.ParamsFile
	}

	// Tag indexers pad with NONE, which must therefore be in the vocabulary.
	switch ix.(type) {
	case *indexer.NerTagIndexer, *indexer.PosTagIndexer:
		dcfg.PaddingTag = indexer.NoneTag
	}

	return dcfg
}

// checkListenAddr validates a host:port address for the serve command.
func checkListenAddr(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	if _, err := net.LookupPort("tcp", port); err != nil {
		return err
	}
	return nil
}
