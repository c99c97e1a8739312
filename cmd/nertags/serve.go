package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/go-nertags/internal/server"
	"github.com/example/go-nertags/internal/vocab"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the tag indexing HTTP server",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			ix, err := buildIndexer(cfg)
			if err != nil {
				return err
			}

			v, err := vocab.LoadFromDir(cfg.Paths.VocabDir)
			if err != nil {
				return err
			}

			srv := server.New(cfg, ix, v).
				WithShutdownTimeout(time.Duration(cfg.Server.ShutdownTimeout) * time.Second)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx)
		},
	}
}
