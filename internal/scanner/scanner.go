// Package scanner walks an archive tree, classifies the artifacts it
// finds and pairs dumps with their key and tag info sidecars. The
// result feeds bulk record ingestion: each usable dump yields a
// proposed record prefilled from the file itself.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"tagvault/internal/keys"
	"tagvault/internal/mifare"
	"tagvault/internal/models"
)

// Kind classifies a scanned file.
type Kind string

const (
	KindDump       Kind = "dump"
	KindKeyFile    Kind = "keyfile"
	KindDictionary Kind = "dictionary"
	KindTagInfo    Kind = "taginfo"
	KindUnknown    Kind = "unknown"
)

// Entry describes one artifact found under the archive root.
// Cataloged and Vaulted are left nil by Scan; callers with catalog
// access fill them in (a record exists for the UID, and that record
// points at a vaulted blob).
type Entry struct {
	Path       string   `json:"path"`
	Kind       Kind     `json:"kind"`
	SizeBytes  int64    `json:"size_bytes"`
	UID        string   `json:"uid,omitempty"`
	CardType   string   `json:"card_type,omitempty"`
	Companions []string `json:"companions,omitempty"`
	Missing    []string `json:"missing,omitempty"`
	Problem    string   `json:"problem,omitempty"`
	Cataloged  *bool    `json:"cataloged,omitempty"`
	Vaulted    *bool    `json:"vaulted,omitempty"`
}

// Summary is the result of a scan.
type Summary struct {
	Root         string  `json:"root"`
	Entries      []Entry `json:"entries"`
	Dumps        int     `json:"dumps"`
	KeyFiles     int     `json:"key_files"`
	Dictionaries int     `json:"dictionaries"`
	TagInfoFiles int     `json:"tag_info_files"`
	Unknown      int     `json:"unknown"`
}

var proxmarkNameRegex = regexp.MustCompile(`(?i)^hf-mf-([0-9A-F]{8})`)

// Scan walks root and classifies every regular file it can recognize.
// Dump entries carry the UID read from block 0 and the sidecars found
// (or missed) next to them.
func Scan(root string) (*Summary, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	summary := &Summary{Root: root}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		entry, ok := classify(path, d)
		if !ok {
			return nil
		}
		summary.Entries = append(summary.Entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(summary.Entries, func(i, j int) bool {
		return summary.Entries[i].Path < summary.Entries[j].Path
	})
	for i := range summary.Entries {
		entry := &summary.Entries[i]
		switch entry.Kind {
		case KindDump:
			summary.Dumps++
			findCompanions(entry)
		case KindKeyFile:
			summary.KeyFiles++
		case KindDictionary:
			summary.Dictionaries++
		case KindTagInfo:
			summary.TagInfoFiles++
		default:
			summary.Unknown++
		}
	}
	return summary, nil
}

func classify(path string, d fs.DirEntry) (Entry, bool) {
	name := d.Name()
	ext := strings.ToLower(filepath.Ext(name))
	entry := Entry{Path: path}

	info, err := d.Info()
	if err != nil {
		entry.Kind = KindUnknown
		entry.Problem = err.Error()
		return entry, true
	}
	entry.SizeBytes = info.Size()

	switch ext {
	case ".dic":
		entry.Kind = KindDictionary
		entry.UID = uidFromName(name)
		return entry, true
	case ".json":
		if strings.Contains(strings.ToLower(name), "key") {
			entry.Kind = KindKeyFile
		} else {
			entry.Kind = KindTagInfo
		}
		return entry, true
	case ".bin":
		return classifyBin(entry, name), true
	}
	return entry, false
}

func classifyBin(entry Entry, name string) Entry {
	size := entry.SizeBytes
	lower := strings.ToLower(name)

	if size == keys.KeyFileSize || size == keys.KeyFileSizeSingle {
		entry.Kind = KindKeyFile
		entry.UID = uidFromName(name)
		return entry
	}
	if strings.Contains(lower, "key") || strings.Contains(lower, "nonce") {
		entry.Kind = KindKeyFile
		entry.UID = uidFromName(name)
		return entry
	}

	cardType, err := mifare.GeometryForSize(int(size))
	if err != nil {
		entry.Kind = KindUnknown
		entry.Problem = err.Error()
		return entry
	}
	entry.Kind = KindDump
	entry.CardType = string(cardType)

	data, err := os.ReadFile(entry.Path)
	if err != nil {
		entry.Problem = err.Error()
		return entry
	}
	dump, err := mifare.ParseDump(data)
	if err != nil {
		entry.Problem = err.Error()
		return entry
	}
	entry.UID = dump.UID()
	return entry
}

// uidFromName pulls a UID out of Proxmark-style filenames such as
// hf-mf-3DE605F4-key.bin or a bare 3DE605F4.dic.
func uidFromName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if match := proxmarkNameRegex.FindStringSubmatch(base); match != nil {
		return strings.ToUpper(match[1])
	}
	base = strings.TrimSuffix(base, "-key")
	if uid, err := models.NormalizeUID(base); err == nil {
		return uid
	}
	return ""
}

// findCompanions looks for the sidecars a dump conventionally ships
// with and records which expected ones are absent.
func findCompanions(entry *Entry) {
	dir := filepath.Dir(entry.Path)
	base := strings.TrimSuffix(filepath.Base(entry.Path), filepath.Ext(entry.Path))
	base = strings.TrimSuffix(base, "-dump")

	candidates := []string{
		base + "-key.bin",
		base + ".json",
		base + ".dic",
	}
	if entry.UID != "" {
		candidates = append(candidates,
			entry.UID+"-key.bin",
			entry.UID+".dic",
			"hf-mf-"+entry.UID+"-key.bin",
			"hf-mf-"+entry.UID+"-key.dic",
		)
	}

	seen := map[string]bool{}
	foundKey := false
	foundInfo := false
	for _, name := range candidates {
		if seen[name] {
			continue
		}
		seen[name] = true
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		entry.Companions = append(entry.Companions, path)
		switch {
		case strings.HasSuffix(name, ".json"):
			foundInfo = true
		case strings.HasSuffix(name, "-key.bin"), strings.HasSuffix(name, ".dic"):
			foundKey = true
		}
	}
	if !foundKey {
		entry.Missing = append(entry.Missing, "key material ("+base+"-key.bin or .dic)")
	}
	if !foundInfo {
		entry.Missing = append(entry.Missing, "tag info ("+base+".json)")
	}
}

// ProposedRecord drafts an attribution record for a scanned dump,
// prefilled from the file alone. Callers fill in provenance.
func (e *Entry) ProposedRecord(archiveName string) *models.Record {
	return &models.Record{
		VariantID:     e.UID,
		UID:           e.UID,
		Filename:      filepath.Base(e.Path),
		FileSizeBytes: e.SizeBytes,
		ArchiveName:   archiveName,
		Status:        string(models.StatusPending),
	}
}
