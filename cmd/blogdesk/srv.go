package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"blogdesk/internal/autofill"
	"blogdesk/internal/blobstore"
	"blogdesk/internal/config"
	"blogdesk/internal/server"
	"blogdesk/internal/store"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the local blog API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if cfg.DBPath == "" {
				return fmt.Errorf("db path is required")
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL, cfg.ListenRemote)
			if err != nil {
				return err
			}

			logger.Info("opening database", "path", cfg.DBPath)
			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			bs, err := blobstore.NewLocalCAS(cfg.ImagesDir)
			if err != nil {
				return err
			}

			srv := server.New(addr, st, bs, autofill.NewExtractor(nil), logger)
			srv.SetAPIToken(cfg.APIToken)
			srv.SetUploadConfig(cfg.Uploads)
			return srv.ListenAndServe(cmd.Context())
		},
	}
}
