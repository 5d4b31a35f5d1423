// Package attribution renders and parses the markdown attribution
// documents the archive publishes next to each dump artifact. The
// format is fixed: a title line with variant id and color, then the
// headed sections File Information, Discord Source, File Details and
// Notes with bullet key/value pairs. Rendering is deterministic and
// Parse is its inverse.
package attribution

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"tagvault/internal/models"
)

// DocDateLayout is how download dates appear in documents, e.g.
// "Thu Aug 28 2025".
const DocDateLayout = "Mon Jan 2 2006"

const (
	sectionFileInfo = "File Information"
	sectionSource   = "Discord Source"
	sectionDetails  = "File Details"
	sectionNotes    = "Notes"
)

const (
	fieldMaterial    = "Material"
	fieldColor       = "Color"
	fieldFilename    = "Filename"
	fieldUID         = "UID"
	fieldSourceURL   = "Source URL"
	fieldArchive     = "Archive"
	fieldDescription = "Description"
	fieldFileSize    = "File Size"
	fieldDownloaded  = "Downloaded"
)

var (
	titleRegex   = regexp.MustCompile(`^#\s+(\S+)(?:\s+-\s+(.*))?$`)
	sectionRegex = regexp.MustCompile(`^##\s+(.*)$`)
	bulletRegex  = regexp.MustCompile(`^\s*[-*]\s+\*\*(.+?)\*\*:\s*(.*)$`)
)

// Render emits the attribution document for a record. Sections and
// fields appear in fixed order; empty fields are omitted, empty
// sections disappear entirely. Field values are written verbatim so
// that Parse(Render(r)) reproduces r exactly.
func Render(rec *models.Record) string {
	var b strings.Builder

	title := rec.VariantID
	if rec.Color != "" {
		title += " - " + rec.Color
	}
	b.WriteString("# " + title + "\n")

	writeSection(&b, sectionFileInfo, []field{
		{fieldMaterial, rec.Material},
		{fieldColor, rec.Color},
		{fieldFilename, rec.Filename},
		{fieldUID, rec.UID},
	})

	writeSection(&b, sectionSource, []field{
		{fieldSourceURL, rec.SourceURL},
		{fieldArchive, rec.ArchiveName},
		{fieldDescription, rec.Description},
	})

	details := []field{}
	if rec.FileSizeBytes > 0 {
		details = append(details, field{fieldFileSize, fmt.Sprintf("%d bytes", rec.FileSizeBytes)})
	}
	if !rec.DownloadedAt.IsZero() {
		details = append(details, field{fieldDownloaded, rec.DownloadedAt.Format(DocDateLayout)})
	}
	writeSection(&b, sectionDetails, details)

	if rec.Notes != "" {
		b.WriteString("\n## " + sectionNotes + "\n\n")
		b.WriteString(rec.Notes)
		b.WriteString("\n")
	}

	return b.String()
}

type field struct {
	label string
	value string
}

func writeSection(b *strings.Builder, name string, fields []field) {
	any := false
	for _, f := range fields {
		if f.value != "" {
			any = true
			break
		}
	}
	if !any {
		return
	}
	b.WriteString("\n## " + name + "\n\n")
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		b.WriteString("- **" + f.label + "**: " + f.value + "\n")
	}
}

// Parse reads a single attribution document back into a record. Field
// labels are strict: an unknown bullet label or section header is an
// error, since it usually means a silently dropped value.
func Parse(input string) (*models.Record, error) {
	rec := &models.Record{}
	section := ""
	var notes []string
	sawTitle := false

	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimRight(line, " \t")

		if match := titleRegex.FindStringSubmatch(trimmed); match != nil && !sawTitle {
			rec.VariantID = match[1]
			rec.Color = strings.TrimSpace(match[2])
			sawTitle = true
			continue
		}

		if match := sectionRegex.FindStringSubmatch(trimmed); match != nil {
			name := strings.TrimSpace(match[1])
			switch name {
			case sectionFileInfo, sectionSource, sectionDetails, sectionNotes:
				section = name
			default:
				return nil, fmt.Errorf("unknown section %q", name)
			}
			continue
		}

		if section == sectionNotes {
			notes = append(notes, line)
			continue
		}

		match := bulletRegex.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}
		label := strings.TrimSpace(match[1])
		value := strings.TrimSpace(match[2])
		if err := applyField(rec, section, label, value); err != nil {
			return nil, err
		}
	}

	if !sawTitle {
		return nil, fmt.Errorf("document has no title line")
	}

	rec.Notes = strings.TrimSpace(strings.Join(notes, "\n"))
	return rec, nil
}

func applyField(rec *models.Record, section, label, value string) error {
	switch label {
	case fieldMaterial:
		rec.Material = value
	case fieldColor:
		rec.Color = value
	case fieldFilename:
		rec.Filename = value
	case fieldUID:
		rec.UID = value
	case fieldSourceURL:
		rec.SourceURL = value
	case fieldArchive:
		rec.ArchiveName = value
	case fieldDescription:
		rec.Description = value
	case fieldFileSize:
		size, err := parseFileSize(value)
		if err != nil {
			return err
		}
		rec.FileSizeBytes = size
	case fieldDownloaded:
		date, err := ParseDocDate(value)
		if err != nil {
			return err
		}
		rec.DownloadedAt = date
	default:
		return fmt.Errorf("unknown field %q in section %q", label, section)
	}
	return nil
}

func parseFileSize(value string) (int64, error) {
	value = strings.TrimSuffix(strings.TrimSpace(value), " bytes")
	size, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || size < 0 {
		return 0, fmt.Errorf("invalid file size %q", value)
	}
	return size, nil
}

// ParseDocDate parses the document date form ("Thu Aug 28 2025").
func ParseDocDate(value string) (models.Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return models.Date{}, nil
	}
	t, err := time.Parse(DocDateLayout, value)
	if err != nil {
		return models.Date{}, fmt.Errorf("invalid date %q: expected e.g. %q", value, "Thu Aug 28 2025")
	}
	return models.DateOf(t), nil
}
