package models

import "time"

// Record is an attribution record: the provenance metadata for one
// binary tag dump artifact.
type Record struct {
	ID            string     `json:"id"`
	VariantID     string     `json:"variant_id"`
	Material      string     `json:"material,omitempty"`
	Color         string     `json:"color,omitempty"`
	Filename      string     `json:"filename"`
	SourceURL     string     `json:"source_url,omitempty"`
	ArchiveName   string     `json:"archive_name,omitempty"`
	Description   string     `json:"description,omitempty"`
	FileSizeBytes int64      `json:"file_size_bytes,omitempty"`
	DownloadedAt  Date       `json:"downloaded_at,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	UID           string     `json:"uid,omitempty"`
	Status        string     `json:"status"`
	BlobID        string     `json:"blob_id,omitempty"`
	Labels        []string   `json:"labels,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
}
