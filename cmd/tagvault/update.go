package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tagvault/internal/api"
	"tagvault/internal/config"
	"tagvault/internal/models"
)

type updateCmdOptions struct {
	variantID    string
	status       string
	material     string
	color        string
	filename     string
	sourceURL    string
	archiveName  string
	description  string
	fileSize     int64
	downloadedAt string
	notes        string
	uid          string
	blobID       string
}

func newUpdateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	opts := &updateCmdOptions{}
	cmd := &cobra.Command{
		Use:   "update <id> [<id>...]",
		Short: "Update records",
		Args:  requireAtLeastOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, cfg, opts, jsonOutput, args)
		},
	}

	bindUpdateFlags(cmd, opts)
	return cmd
}

func runUpdate(cmd *cobra.Command, cfg *config.Config, opts *updateCmdOptions, jsonOutput *bool, args []string) error {
	return withClient(cfg, func(client *api.Client) error {
		req, err := buildUpdateRequest(cmd, opts)
		if err != nil {
			return err
		}
		if !hasRecordUpdateFields(req) {
			return errors.New("no fields to update")
		}

		responses := make([]api.RecordResponse, 0, len(args))
		for _, id := range args {
			resp, err := client.UpdateRecord(cmd.Context(), id, req)
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
}

func buildUpdateRequest(cmd *cobra.Command, opts *updateCmdOptions) (api.RecordUpdateRequest, error) {
	req := api.RecordUpdateRequest{}
	if cmd.Flags().Changed("variant") {
		req.VariantID = &opts.variantID
	}
	if cmd.Flags().Changed("status") {
		req.Status = &opts.status
	}
	if cmd.Flags().Changed("material") {
		req.Material = &opts.material
	}
	if cmd.Flags().Changed("color") {
		req.Color = &opts.color
	}
	if cmd.Flags().Changed("filename") {
		req.Filename = &opts.filename
	}
	if cmd.Flags().Changed("source-url") {
		req.SourceURL = &opts.sourceURL
	}
	if cmd.Flags().Changed("archive") {
		req.ArchiveName = &opts.archiveName
	}
	if cmd.Flags().Changed("description") {
		req.Description = &opts.description
	}
	if cmd.Flags().Changed("size") {
		req.FileSizeBytes = &opts.fileSize
	}
	if cmd.Flags().Changed("downloaded") {
		date, err := models.ParseDate(opts.downloadedAt)
		if err != nil {
			return api.RecordUpdateRequest{}, err
		}
		req.DownloadedAt = &date
	}
	if cmd.Flags().Changed("notes") {
		req.Notes = &opts.notes
	}
	if cmd.Flags().Changed("uid") {
		req.UID = &opts.uid
	}
	if cmd.Flags().Changed("blob") {
		req.BlobID = &opts.blobID
	}

	return req, nil
}

func hasRecordUpdateFields(req api.RecordUpdateRequest) bool {
	return req.VariantID != nil ||
		req.Status != nil ||
		req.Material != nil ||
		req.Color != nil ||
		req.Filename != nil ||
		req.SourceURL != nil ||
		req.ArchiveName != nil ||
		req.Description != nil ||
		req.FileSizeBytes != nil ||
		req.DownloadedAt != nil ||
		req.Notes != nil ||
		req.UID != nil ||
		req.BlobID != nil
}

func bindUpdateFlags(cmd *cobra.Command, opts *updateCmdOptions) {
	cmd.Flags().StringVar(&opts.variantID, "variant", "", "variant id")
	cmd.Flags().StringVar(&opts.status, "status", "", "status")
	cmd.Flags().StringVarP(&opts.material, "material", "m", "", "filament material")
	cmd.Flags().StringVarP(&opts.color, "color", "c", "", "filament color")
	cmd.Flags().StringVar(&opts.filename, "filename", "", "dump filename")
	cmd.Flags().StringVar(&opts.sourceURL, "source-url", "", "source URL")
	cmd.Flags().StringVar(&opts.archiveName, "archive", "", "archive name")
	cmd.Flags().StringVarP(&opts.description, "description", "d", "", "source description")
	cmd.Flags().Int64Var(&opts.fileSize, "size", 0, "dump file size in bytes")
	cmd.Flags().StringVar(&opts.downloadedAt, "downloaded", "", "download date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.notes, "notes", "", "notes")
	cmd.Flags().StringVar(&opts.uid, "uid", "", "tag UID (8 hex chars)")
	cmd.Flags().StringVar(&opts.blobID, "blob", "", "vaulted dump blob id")
}
