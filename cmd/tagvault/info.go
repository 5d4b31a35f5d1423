package main

import (
	"sort"

	"github.com/spf13/cobra"

	"tagvault/internal/api"
	"tagvault/internal/config"
)

func newInfoCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show database and catalog info",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.GetInfo(cmd.Context())
				if err != nil {
					return err
				}

				if *jsonOutput {
					return writeJSON(resp)
				}

				_ = writePlain("db_path: %s\n", cfg.DBPath)
				_ = writePlain("record_prefix: %s\n", resp.RecordPrefix)
				_ = writePlain("schema_version: %d\n", resp.SchemaVersion)
				_ = writePlain("total_records: %d\n", resp.TotalRecords)

				statuses := make([]string, 0, len(resp.RecordCounts))
				for status := range resp.RecordCounts {
					statuses = append(statuses, status)
				}
				sort.Strings(statuses)
				for _, status := range statuses {
					_ = writePlain("  %s: %d\n", status, resp.RecordCounts[status])
				}
				return nil
			})
		},
	}
	return cmd
}
