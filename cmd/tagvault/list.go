package main

import (
	"net/url"

	"github.com/spf13/cobra"

	"tagvault/internal/api"
	"tagvault/internal/config"
)

func newListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		status    string
		material  string
		color     string
		archive   string
		variantID string
		uid       string
		label     string
		labelAny  string
		search    string
		limit     int
		offset    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				query := url.Values{}
				setIfNotEmpty(query, "status", status)
				setIfNotEmpty(query, "material", material)
				setIfNotEmpty(query, "color", color)
				setIfNotEmpty(query, "archive", archive)
				setIfNotEmpty(query, "variant_id", variantID)
				setIfNotEmpty(query, "uid", uid)
				setIfNotEmpty(query, "labels", label)
				setIfNotEmpty(query, "labels_any", labelAny)
				setIfNotEmpty(query, "search", search)
				if limit > 0 {
					query.Set("limit", intToString(limit))
				}
				if offset > 0 {
					query.Set("offset", intToString(offset))
				}

				resp, err := client.ListRecords(cmd.Context(), query)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writeRecordList(resp)
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "status filter (comma separated, or all)")
	cmd.Flags().StringVarP(&material, "material", "m", "", "material filter")
	cmd.Flags().StringVarP(&color, "color", "c", "", "color filter")
	cmd.Flags().StringVar(&archive, "archive", "", "archive name filter")
	cmd.Flags().StringVar(&variantID, "variant", "", "variant id filter")
	cmd.Flags().StringVar(&uid, "uid", "", "tag UID filter")
	cmd.Flags().StringVarP(&label, "label", "l", "", "labels filter (all must match)")
	cmd.Flags().StringVar(&labelAny, "label-any", "", "labels filter (any may match)")
	cmd.Flags().StringVarP(&search, "search", "s", "", "full text search over description and notes")
	cmd.Flags().IntVar(&limit, "limit", 0, "limit results")
	cmd.Flags().IntVar(&offset, "offset", 0, "offset results")

	return cmd
}
