package attribution

import (
	"strings"
	"testing"
	"time"

	"tagvault/internal/models"
)

func sampleRecord() *models.Record {
	return &models.Record{
		VariantID:     "3DE605F4",
		Material:      "PETG/PETG Basic",
		Color:         "Red",
		Filename:      "3DE605F4-key.bin",
		SourceURL:     "https://discord.com/channels/123/456/789",
		ArchiveName:   "petg-dumps.zip",
		Description:   "Key file recovered from a fresh spool",
		FileSizeBytes: 192,
		DownloadedAt:  models.NewDate(2025, time.August, 28),
		Notes:         "Verified against a second read of the same tag.",
	}
}

func TestRenderLayout(t *testing.T) {
	doc := Render(sampleRecord())

	wantLines := []string{
		"# 3DE605F4 - Red",
		"## File Information",
		"- **Material**: PETG/PETG Basic",
		"- **Color**: Red",
		"- **Filename**: 3DE605F4-key.bin",
		"## Discord Source",
		"- **Source URL**: https://discord.com/channels/123/456/789",
		"- **Archive**: petg-dumps.zip",
		"- **Description**: Key file recovered from a fresh spool",
		"## File Details",
		"- **File Size**: 192 bytes",
		"- **Downloaded**: Thu Aug 28 2025",
		"## Notes",
		"Verified against a second read of the same tag.",
	}
	pos := 0
	for _, want := range wantLines {
		idx := strings.Index(doc[pos:], want)
		if idx < 0 {
			t.Fatalf("missing or out-of-order line %q in:\n%s", want, doc)
		}
		pos += idx + len(want)
	}
}

func TestParseRenderedDocument(t *testing.T) {
	original := sampleRecord()
	parsed, err := Parse(Render(original))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if parsed.VariantID != "3DE605F4" {
		t.Errorf("variant id = %q", parsed.VariantID)
	}
	if parsed.Color != "Red" {
		t.Errorf("color = %q", parsed.Color)
	}
	if parsed.FileSizeBytes != 192 {
		t.Errorf("file size = %d", parsed.FileSizeBytes)
	}
	if parsed.Material != original.Material {
		t.Errorf("material = %q", parsed.Material)
	}
	if parsed.Filename != original.Filename {
		t.Errorf("filename = %q", parsed.Filename)
	}
	if parsed.SourceURL != original.SourceURL {
		t.Errorf("source url = %q", parsed.SourceURL)
	}
	if parsed.ArchiveName != original.ArchiveName {
		t.Errorf("archive = %q", parsed.ArchiveName)
	}
	if parsed.Description != original.Description {
		t.Errorf("description = %q", parsed.Description)
	}
	if !parsed.DownloadedAt.Equal(original.DownloadedAt) {
		t.Errorf("downloaded = %v, want %v", parsed.DownloadedAt, original.DownloadedAt)
	}
	if parsed.Notes != original.Notes {
		t.Errorf("notes = %q", parsed.Notes)
	}
}

func TestRenderOmitsEmptySections(t *testing.T) {
	rec := &models.Record{VariantID: "A1B2C3D4", Material: "PLA"}
	doc := Render(rec)

	if !strings.Contains(doc, "# A1B2C3D4\n") {
		t.Errorf("title should omit color separator:\n%s", doc)
	}
	for _, section := range []string{"## Discord Source", "## File Details", "## Notes"} {
		if strings.Contains(doc, section) {
			t.Errorf("empty section %q should be omitted:\n%s", section, doc)
		}
	}

	parsed, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.VariantID != "A1B2C3D4" || parsed.Material != "PLA" || parsed.Color != "" {
		t.Errorf("round trip mismatch: %+v", parsed)
	}
}

func TestParseRejectsUnknownField(t *testing.T) {
	doc := "# 3DE605F4 - Red\n\n## File Information\n\n- **Weight**: 1kg\n"
	if _, err := Parse(doc); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestParseRejectsUnknownSection(t *testing.T) {
	doc := "# 3DE605F4 - Red\n\n## Shipping\n\n- **Material**: PLA\n"
	if _, err := Parse(doc); err == nil {
		t.Fatal("expected error for unknown section")
	}
}

func TestParseRejectsMissingTitle(t *testing.T) {
	if _, err := Parse("## File Information\n\n- **Material**: PLA\n"); err == nil {
		t.Fatal("expected error for missing title")
	}
}

func TestParseFileSizeVariants(t *testing.T) {
	doc := "# 3DE605F4\n\n## File Details\n\n- **File Size**: 1024 bytes\n"
	rec, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.FileSizeBytes != 1024 {
		t.Errorf("file size = %d, want 1024", rec.FileSizeBytes)
	}

	bad := "# 3DE605F4\n\n## File Details\n\n- **File Size**: lots\n"
	if _, err := Parse(bad); err == nil {
		t.Fatal("expected error for non-numeric size")
	}
}

func TestParseDocumentsWithFrontMatter(t *testing.T) {
	input := `---
material: PETG/PETG Basic
archive_name: batch-2025-08.zip
labels: [discord, batch]
---
# 3DE605F4 - Red

## File Information

- **Filename**: 3DE605F4-key.bin

# 7C11A986 - Black

## File Information

- **Material**: PLA Basic
- **Filename**: hf-mf-7C11A986-dump.bin
`
	records, defaults, err := ParseDocuments(input)
	if err != nil {
		t.Fatalf("ParseDocuments: %v", err)
	}
	if defaults.ArchiveName != "batch-2025-08.zip" {
		t.Errorf("defaults archive = %q", defaults.ArchiveName)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Material != "PETG/PETG Basic" {
		t.Errorf("first record should inherit material, got %q", records[0].Material)
	}
	if records[1].Material != "PLA Basic" {
		t.Errorf("explicit material should win, got %q", records[1].Material)
	}
	if records[0].ArchiveName != "batch-2025-08.zip" || records[1].ArchiveName != "batch-2025-08.zip" {
		t.Error("archive default should apply to both records")
	}
	if len(records[0].Labels) != 2 {
		t.Errorf("labels default not applied: %v", records[0].Labels)
	}
}

func TestParseDocumentsUnclosedFrontMatter(t *testing.T) {
	if _, _, err := ParseDocuments("---\nmaterial: PLA\n# X\n"); err == nil {
		t.Fatal("expected error for unclosed front matter")
	}
}
