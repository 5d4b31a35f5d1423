package api

import "tagvault/internal/models"

// RecordCreateRequest defines the payload for creating a record.
type RecordCreateRequest struct {
	ID            string       `json:"id,omitempty"`
	VariantID     string       `json:"variant_id"`
	Status        *string      `json:"status,omitempty"`
	Material      *string      `json:"material,omitempty"`
	Color         *string      `json:"color,omitempty"`
	Filename      *string      `json:"filename,omitempty"`
	SourceURL     *string      `json:"source_url,omitempty"`
	ArchiveName   *string      `json:"archive_name,omitempty"`
	Description   *string      `json:"description,omitempty"`
	FileSizeBytes *int64       `json:"file_size_bytes,omitempty"`
	DownloadedAt  *models.Date `json:"downloaded_at,omitempty"`
	Notes         *string      `json:"notes,omitempty"`
	UID           *string      `json:"uid,omitempty"`
	BlobID        *string      `json:"blob_id,omitempty"`
	Labels        []string     `json:"labels,omitempty"`
}

// RecordUpdateRequest defines the payload for updating a record.
type RecordUpdateRequest struct {
	VariantID     *string      `json:"variant_id,omitempty"`
	Status        *string      `json:"status,omitempty"`
	Material      *string      `json:"material,omitempty"`
	Color         *string      `json:"color,omitempty"`
	Filename      *string      `json:"filename,omitempty"`
	SourceURL     *string      `json:"source_url,omitempty"`
	ArchiveName   *string      `json:"archive_name,omitempty"`
	Description   *string      `json:"description,omitempty"`
	FileSizeBytes *int64       `json:"file_size_bytes,omitempty"`
	DownloadedAt  *models.Date `json:"downloaded_at,omitempty"`
	Notes         *string      `json:"notes,omitempty"`
	UID           *string      `json:"uid,omitempty"`
	BlobID        *string      `json:"blob_id,omitempty"`
}

// RecordResponse wraps a record with its labels.
type RecordResponse struct {
	models.Record
	Labels []string `json:"labels"`
}

// RecordVerifyRequest defines the payload for verifying a record.
type RecordVerifyRequest struct {
	Verified bool `json:"verified"`
}

// LabelsRequest defines label add/remove payloads.
type LabelsRequest struct {
	Labels []string `json:"labels"`
}

// InfoResponse is the response from GET /v1/info.
type InfoResponse struct {
	RecordPrefix  string         `json:"record_prefix"`
	SchemaVersion int            `json:"schema_version"`
	RecordCounts  map[string]int `json:"record_counts"`
	TotalRecords  int            `json:"total_records"`
}

// BlobResponse describes a vaulted dump file.
type BlobResponse struct {
	models.Blob
	RefCount int `json:"ref_count"`
}

// BlobVerifyResponse reports a digest check of vaulted content.
type BlobVerifyResponse struct {
	ID     string `json:"id"`
	SHA256 string `json:"sha256"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// BlobGCResponse reports a garbage-collection pass over
// unreferenced blobs.
type BlobGCResponse struct {
	Removed    int      `json:"removed"`
	FreedBytes int64    `json:"freed_bytes"`
	BlobIDs    []string `json:"blob_ids,omitempty"`
	DryRun     bool     `json:"dry_run"`
}

// RecordImportRecord represents one record in an import payload.
type RecordImportRecord struct {
	models.Record
	Labels []string `json:"labels"`
}

// ImportResponse is the response from POST /v1/import.
type ImportResponse struct {
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Skipped   int      `json:"skipped"`
	Errors    int      `json:"errors"`
	DryRun    bool     `json:"dry_run"`
	RecordIDs []string `json:"record_ids"`
	Messages  []string `json:"messages,omitempty"`
}
