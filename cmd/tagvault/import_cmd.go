package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"tagvault/internal/api"
	"tagvault/internal/config"
)

func newImportCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		inputPath string
		dryRun    bool
		mode      string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import records from a JSONL file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				return errors.New("--input is required")
			}

			return withClient(cfg, func(client *api.Client) error {
				f, err := os.Open(inputPath)
				if err != nil {
					return err
				}
				defer f.Close()

				resp, err := client.ImportStream(cmd.Context(), f, dryRun, mode)
				if err != nil {
					return err
				}

				if *jsonOutput {
					return writeJSON(resp)
				}

				if err := writePlain("created: %d, updated: %d, skipped: %d, errors: %d\n",
					resp.Created, resp.Updated, resp.Skipped, resp.Errors); err != nil {
					return err
				}
				for _, message := range resp.Messages {
					if err := writePlain("  %s\n", message); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input JSONL file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview without making changes")
	cmd.Flags().StringVar(&mode, "mode", "", "duplicate handling: merge, skip or strict (default merge)")

	return cmd
}
