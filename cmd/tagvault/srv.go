package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"tagvault/internal/config"
	"tagvault/internal/server"
	"tagvault/internal/store"
	"tagvault/internal/vault"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the tagvault API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if cfg.DBPath == "" {
				return fmt.Errorf("db path is required")
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}

			logger.Info("opening database", "path", cfg.DBPath)
			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			vaultRoot := filepath.Join(filepath.Dir(cfg.DBPath), ".tagvault", "dumps")
			v, err := vault.NewLocal(vaultRoot)
			if err != nil {
				return err
			}

			srv := server.New(addr, st, cfg.RecordPrefix, logger, server.Options{
				Blobs:          st,
				Vault:          v,
				DBPath:         cfg.DBPath,
				MaxUploadBytes: cfg.Vault.MaxUploadBytes,
			})
			return srv.ListenAndServe()
		},
	}
}
