package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tagvault/internal/api"
	"tagvault/internal/attribution"
	"tagvault/internal/config"
	"tagvault/internal/models"
)

type addCmdOptions struct {
	id           string
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
	labels       []string
	filePath     string
}

func newAddCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	opts := &addCmdOptions{}
	cmd := &cobra.Command{
		Use:   "add <variant-id>",
		Short: "Add a new attribution record",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, cfg, opts, jsonOutput, args)
		},
	}

	bindAddFlags(cmd, opts)
	return cmd
}

func runAdd(cmd *cobra.Command, cfg *config.Config, opts *addCmdOptions, jsonOutput *bool, args []string) error {
	return withClient(cfg, func(client *api.Client) error {
		if opts.filePath != "" {
			return runAddFromFile(cmd.Context(), client, opts.filePath, cfg.ImportBatchSize, jsonOutput)
		}

		req, err := buildAddRequest(cmd, opts, args)
		if err != nil {
			return err
		}

		resp, err := client.CreateRecord(cmd.Context(), req)
		if err != nil {
			return err
		}
		if *jsonOutput {
			return writeJSON(resp)
		}
		return writePlain("%s\n", resp.ID)
	})
}

func buildAddRequest(cmd *cobra.Command, opts *addCmdOptions, args []string) (api.RecordCreateRequest, error) {
	if len(args) == 0 {
		return api.RecordCreateRequest{}, errors.New("variant id is required")
	}

	req := api.RecordCreateRequest{
		ID:        opts.id,
		VariantID: strings.TrimSpace(args[0]),
	}
	if opts.status != "" {
		req.Status = &opts.status
	}
	if opts.material != "" {
		req.Material = &opts.material
	}
	if opts.color != "" {
		req.Color = &opts.color
	}
	if opts.filename != "" {
		req.Filename = &opts.filename
	}
	if opts.sourceURL != "" {
		req.SourceURL = &opts.sourceURL
	}
	if opts.archiveName != "" {
		req.ArchiveName = &opts.archiveName
	}
	if opts.description != "" {
		req.Description = &opts.description
	}
	if cmd.Flags().Changed("size") {
		req.FileSizeBytes = &opts.fileSize
	}
	if opts.downloadedAt != "" {
		date, err := models.ParseDate(opts.downloadedAt)
		if err != nil {
			return api.RecordCreateRequest{}, err
		}
		req.DownloadedAt = &date
	}
	if opts.notes != "" {
		req.Notes = &opts.notes
	}
	if opts.uid != "" {
		req.UID = &opts.uid
	}
	if opts.blobID != "" {
		req.BlobID = &opts.blobID
	}
	if len(opts.labels) > 0 {
		req.Labels = opts.labels
	}

	return req, nil
}

func bindAddFlags(cmd *cobra.Command, opts *addCmdOptions) {
	cmd.Flags().StringVar(&opts.id, "id", "", "explicit record id")
	cmd.Flags().StringVar(&opts.status, "status", "", "record status")
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
	cmd.Flags().StringSliceVarP(&opts.labels, "label", "l", nil, "labels")
	cmd.Flags().StringSliceVar(&opts.labels, "labels", nil, "labels")
	cmd.Flags().StringVarP(&opts.filePath, "file", "f", "", "attribution markdown file for batch add")
}

// batchCreateAll sends create requests in config-sized batches so one
// oversized file cannot blow the server's batch limit.
func batchCreateAll(ctx context.Context, client *api.Client, requests []api.RecordCreateRequest, batchSize int) ([]api.RecordResponse, error) {
	responses := make([]api.RecordResponse, 0, len(requests))
	for _, chunk := range splitRequests(requests, batchSize) {
		resp, err := client.BatchCreate(ctx, chunk)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp...)
	}
	return responses, nil
}

func splitRequests(requests []api.RecordCreateRequest, size int) [][]api.RecordCreateRequest {
	if size <= 0 {
		size = config.DefaultImportBatchSize
	}
	var chunks [][]api.RecordCreateRequest
	for start := 0; start < len(requests); start += size {
		end := start + size
		if end > len(requests) {
			end = len(requests)
		}
		chunks = append(chunks, requests[start:end])
	}
	return chunks
}

func runAddFromFile(ctx context.Context, client *api.Client, filePath string, batchSize int, jsonOutput *bool) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	records, _, err := attribution.ParseDocuments(string(data))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no attribution documents found in %s", filePath)
	}

	requests := make([]api.RecordCreateRequest, 0, len(records))
	for _, rec := range records {
		requests = append(requests, createRequestFromRecord(rec))
	}

	resp, err := batchCreateAll(ctx, client, requests, batchSize)
	if err != nil {
		return err
	}

	if *jsonOutput {
		return writeJSON(resp)
	}
	for _, rec := range resp {
		if err := writePlain("%s\n", rec.ID); err != nil {
			return err
		}
	}
	return nil
}

// createRequestFromRecord converts a parsed attribution document into
// a create request. Front matter defaults are already folded in by
// ParseDocuments.
func createRequestFromRecord(rec *models.Record) api.RecordCreateRequest {
	req := api.RecordCreateRequest{VariantID: rec.VariantID}

	setIfNotEmptyStr := func(dst **string, value string) {
		if value != "" {
			v := value
			*dst = &v
		}
	}

	setIfNotEmptyStr(&req.Material, rec.Material)
	setIfNotEmptyStr(&req.Color, rec.Color)
	setIfNotEmptyStr(&req.Filename, rec.Filename)
	setIfNotEmptyStr(&req.SourceURL, rec.SourceURL)
	setIfNotEmptyStr(&req.ArchiveName, rec.ArchiveName)
	setIfNotEmptyStr(&req.Description, rec.Description)
	setIfNotEmptyStr(&req.Notes, rec.Notes)
	setIfNotEmptyStr(&req.UID, rec.UID)
	if rec.FileSizeBytes > 0 {
		size := rec.FileSizeBytes
		req.FileSizeBytes = &size
	}
	if !rec.DownloadedAt.IsZero() {
		date := rec.DownloadedAt
		req.DownloadedAt = &date
	}
	if rec.Status != "" {
		status := rec.Status
		req.Status = &status
	}
	if len(rec.Labels) > 0 {
		req.Labels = rec.Labels
	}

	return req
}
