package main

import (
	"github.com/spf13/cobra"

	"tagvault/internal/api"
	"tagvault/internal/config"
)

func newShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id> [<id>...]",
		Short: "Show record details",
		Args:  requireAtLeastOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				if len(args) == 1 {
					resp, err := client.GetRecord(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					if *jsonOutput {
						return writeJSON(resp)
					}
					return writeRecordDetail(resp)
				}

				responses := make([]api.RecordResponse, 0, len(args))
				for _, id := range args {
					resp, err := client.GetRecord(cmd.Context(), id)
					if err != nil {
						return err
					}
					responses = append(responses, resp)
				}
				if *jsonOutput {
					return writeJSON(responses)
				}
				return writeRecordList(responses)
			})
		},
	}

	return cmd
}
