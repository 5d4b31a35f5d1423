package attribution

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"tagvault/internal/models"
)

// Defaults carries values from a document's YAML front matter. They
// fill in fields a record left empty, so a batch file can state the
// shared archive or material once up top.
type Defaults struct {
	Material    string   `yaml:"material"`
	Color       string   `yaml:"color"`
	ArchiveName string   `yaml:"archive_name"`
	SourceURL   string   `yaml:"source_url"`
	Status      string   `yaml:"status"`
	Labels      []string `yaml:"labels"`
}

// ParseDocuments reads a markdown file holding one or more attribution
// documents, each starting at a level-1 header. Optional YAML front
// matter supplies defaults applied to every record in the file.
func ParseDocuments(input string) ([]*models.Record, Defaults, error) {
	defaults := Defaults{}
	content := input

	lines := strings.Split(input, "\n")
	if len(lines) >= 3 && strings.TrimSpace(lines[0]) == "---" {
		end := -1
		for i := 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == "---" {
				end = i
				break
			}
		}
		if end == -1 {
			return nil, defaults, fmt.Errorf("front matter not closed")
		}
		frontText := strings.Join(lines[1:end], "\n")
		if err := yaml.Unmarshal([]byte(frontText), &defaults); err != nil {
			return nil, defaults, err
		}
		content = strings.Join(lines[end+1:], "\n")
	}

	chunks := splitDocuments(content)
	if len(chunks) == 0 {
		return nil, defaults, fmt.Errorf("no attribution documents found")
	}

	records := make([]*models.Record, 0, len(chunks))
	for i, chunk := range chunks {
		rec, err := Parse(chunk)
		if err != nil {
			return nil, defaults, fmt.Errorf("document %d: %w", i+1, err)
		}
		applyDefaults(rec, defaults)
		records = append(records, rec)
	}
	return records, defaults, nil
}

func splitDocuments(content string) []string {
	var chunks []string
	var current []string
	for _, line := range strings.Split(content, "\n") {
		if titleRegex.MatchString(strings.TrimRight(line, " \t")) {
			if len(current) > 0 {
				chunks = append(chunks, strings.Join(current, "\n"))
			}
			current = []string{line}
			continue
		}
		if current != nil {
			current = append(current, line)
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}
	return chunks
}

func applyDefaults(rec *models.Record, defaults Defaults) {
	if rec.Material == "" {
		rec.Material = defaults.Material
	}
	if rec.Color == "" {
		rec.Color = defaults.Color
	}
	if rec.ArchiveName == "" {
		rec.ArchiveName = defaults.ArchiveName
	}
	if rec.SourceURL == "" {
		rec.SourceURL = defaults.SourceURL
	}
	if rec.Status == "" {
		rec.Status = defaults.Status
	}
	if len(rec.Labels) == 0 && len(defaults.Labels) > 0 {
		rec.Labels = append([]string{}, defaults.Labels...)
	}
}
