package main

import (
	"os"

	"github.com/spf13/cobra"

	"tagvault/internal/api"
	"tagvault/internal/attribution"
	"tagvault/internal/config"
)

func newDocCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	docCmd := &cobra.Command{
		Use:   "doc",
		Short: "Work with attribution documents",
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Render a record as an attribution document",
		Args:  requireExactlyArgs(1, "id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				doc, err := client.GetRecordDoc(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writePlain("%s", doc)
			})
		},
	}

	parseCmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse an attribution markdown file without importing it",
		Args:  requireExactlyArgs(1, "file is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			records, _, err := attribution.ParseDocuments(string(data))
			if err != nil {
				return err
			}

			if *jsonOutput {
				return writeJSON(records)
			}
			for _, rec := range records {
				if err := writePlain("%s [%s] %s %s\n", rec.VariantID, rec.Material, rec.Color, rec.Filename); err != nil {
					return err
				}
			}
			return nil
		},
	}

	docCmd.AddCommand(showCmd, parseCmd)
	return docCmd
}
