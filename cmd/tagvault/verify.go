package main

import (
	"strings"

	"github.com/spf13/cobra"

	"tagvault/internal/api"
	"tagvault/internal/config"
)

func newVerifyCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var revoke bool

	cmd := &cobra.Command{
		Use:   "verify <id> [<id>...]",
		Short: "Mark records as verified (or revoke verification)",
		Args:  requireAtLeastOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				req := api.RecordVerifyRequest{Verified: !revoke}

				responses := make([]api.RecordResponse, 0, len(args))
				for _, id := range args {
					resp, err := client.VerifyRecord(cmd.Context(), id, req)
					if err != nil {
						return err
					}
					responses = append(responses, resp)
				}
				if *jsonOutput {
					if len(responses) == 1 {
						return writeJSON(responses[0])
					}
					return writeJSON(responses)
				}
				return writePlain("%s\n", strings.Join(args, ","))
			})
		},
	}

	cmd.Flags().BoolVar(&revoke, "revoke", false, "revoke verification and return the record to pending")

	return cmd
}
