package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"tagvault/internal/api"
	"tagvault/internal/format"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeRecordList(records []api.RecordResponse) error {
	for _, rec := range records {
		if err := writePlain("%s\n", formatRecordLine(rec)); err != nil {
			return err
		}
	}
	return nil
}

func writeRecordDetail(rec api.RecordResponse) error {
	lines := []string{
		fmt.Sprintf("id: %s", rec.ID),
		fmt.Sprintf("variant_id: %s", rec.VariantID),
		fmt.Sprintf("status: %s", rec.Status),
		fmt.Sprintf("created_at: %s", formatTime(rec.CreatedAt)),
		fmt.Sprintf("updated_at: %s", formatTime(rec.UpdatedAt)),
	}

	if rec.Material != "" {
		lines = append(lines, fmt.Sprintf("material: %s", rec.Material))
	}
	if rec.Color != "" {
		lines = append(lines, fmt.Sprintf("color: %s", rec.Color))
	}
	if rec.UID != "" {
		lines = append(lines, fmt.Sprintf("uid: %s", rec.UID))
	}
	if rec.Filename != "" {
		lines = append(lines, fmt.Sprintf("filename: %s", rec.Filename))
	}
	if rec.FileSizeBytes > 0 {
		lines = append(lines, fmt.Sprintf("file_size_bytes: %d", rec.FileSizeBytes))
	}
	if rec.SourceURL != "" {
		lines = append(lines, fmt.Sprintf("source_url: %s", rec.SourceURL))
	}
	if rec.ArchiveName != "" {
		lines = append(lines, fmt.Sprintf("archive_name: %s", rec.ArchiveName))
	}
	if rec.Description != "" {
		lines = append(lines, fmt.Sprintf("description: %s", rec.Description))
	}
	if !rec.DownloadedAt.IsZero() {
		lines = append(lines, fmt.Sprintf("downloaded_at: %s", rec.DownloadedAt.String()))
	}
	if rec.Notes != "" {
		lines = append(lines, fmt.Sprintf("notes: %s", rec.Notes))
	}
	if rec.BlobID != "" {
		lines = append(lines, fmt.Sprintf("blob_id: %s", rec.BlobID))
	}
	if rec.VerifiedAt != nil {
		lines = append(lines, fmt.Sprintf("verified_at: %s", formatTime(*rec.VerifiedAt)))
	}
	if len(rec.Labels) > 0 {
		lines = append(lines, fmt.Sprintf("labels: %s", strings.Join(rec.Labels, ", ")))
	}

	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func formatRecordLine(rec api.RecordResponse) string {
	summary := rec.Material
	if rec.Color != "" {
		if summary != "" {
			summary += " "
		}
		summary += rec.Color
	}
	if summary == "" {
		summary = rec.Filename
	}
	return fmt.Sprintf("%s [%s] %s - %s", rec.ID, rec.Status, rec.VariantID, summary)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
