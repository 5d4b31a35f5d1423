// Package validate checks tag info documents and dump artifacts for
// completeness and internal consistency. Errors make a file invalid,
// warnings flag gaps worth a look but do not fail validation.
package validate

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tagvault/internal/keys"
	"tagvault/internal/mifare"
	"tagvault/internal/models"
)

var requiredTagInfoFields = []string{
	"uid", "filament_type", "filament_color",
	"spool_weight", "filament_diameter", "filename",
}

var commonTagInfoFields = []string{
	"material_id", "variant_id", "detailed_filament_type",
	"spool_width", "filament_length", "tray_uid",
}

// Result holds the outcome for one file.
type Result struct {
	File     string   `json:"file"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Valid reports whether the file passed, warnings aside.
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Report aggregates results over a directory tree.
type Report struct {
	TotalFiles    int      `json:"total_files"`
	ValidFiles    int      `json:"valid_files"`
	InvalidFiles  int      `json:"invalid_files"`
	TotalErrors   int      `json:"total_errors"`
	TotalWarnings int      `json:"total_warnings"`
	Results       []Result `json:"results"`
}

// TagInfo validates a decoded tag info document. The raw map is used
// for presence checks so an absent field and an empty field are told
// apart the same way the JSON on disk would show them.
func TagInfo(name string, info *models.TagInfo, raw map[string]json.RawMessage) Result {
	result := Result{File: name}

	for _, field := range requiredTagInfoFields {
		if _, ok := raw[field]; !ok {
			result.errorf("missing required field %q", field)
		}
	}
	for _, field := range commonTagInfoFields {
		if _, ok := raw[field]; !ok {
			result.warnf("missing common field %q", field)
		}
	}

	if _, ok := raw["uid"]; ok {
		if _, err := models.NormalizeUID(info.UID); err != nil {
			result.errorf("uid %q is not an 8-character hex string", info.UID)
		}
	}

	if rawTemps, ok := raw["temperatures"]; !ok {
		result.warnf("no temperature section found")
	} else {
		checkTemperatures(&result, info.Temperatures, rawTemps)
	}

	return result
}

var temperatureFields = []string{
	"min_hotend", "max_hotend", "bed_temp",
	"bed_temp_type", "drying_time", "drying_temp",
}

func checkTemperatures(result *Result, temps *models.Temperatures, rawTemps json.RawMessage) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(rawTemps, &fields); err != nil {
		result.errorf("temperature section should be an object")
		return
	}
	for _, field := range temperatureFields {
		if _, ok := fields[field]; !ok {
			result.warnf("temperature section missing %s", field)
		}
	}
	if temps == nil {
		return
	}
	min, okMin := parseTemp(temps.MinHotend)
	max, okMax := parseTemp(temps.MaxHotend)
	if okMin && okMax && min > max {
		result.warnf("min_hotend %d exceeds max_hotend %d", min, max)
	}
}

func parseTemp(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	var v int
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		return 0, false
	}
	return v, true
}

// TagInfoJSON validates raw tag info JSON, covering decode failures.
func TagInfoJSON(name string, data []byte) Result {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Result{File: name, Errors: []string{fmt.Sprintf("invalid JSON: %v", err)}}
	}
	// A type mismatch in one section should not hide diagnostics for
	// the rest of the document, so fall back to decoding just the
	// fields the checks below consume.
	var info models.TagInfo
	if err := json.Unmarshal(data, &info); err != nil {
		info = models.TagInfo{}
		if uidRaw, ok := raw["uid"]; ok {
			_ = json.Unmarshal(uidRaw, &info.UID)
		}
		if tempsRaw, ok := raw["temperatures"]; ok {
			_ = json.Unmarshal(tempsRaw, &info.Temperatures)
		}
	}
	return TagInfo(name, &info, raw)
}

// BinFile validates a raw .bin artifact by size: either a full card
// dump or a key file with one or both key planes.
func BinFile(name string, size int64) Result {
	result := Result{File: name}
	switch size {
	case keys.KeyFileSize, keys.KeyFileSizeSingle:
		return result
	}
	if _, err := mifare.GeometryForSize(int(size)); err != nil {
		result.errorf("unrecognized .bin size %d bytes: not a card dump (1024/1152/4096) or key file (96/192)", size)
	}
	return result
}

// Directory walks root validating every tag info JSON file found,
// skipping key material JSON, and warns when a tag info file has no
// companion .bin dump next to it.
func Directory(root string) (*Report, error) {
	report := &Report{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		if strings.Contains(strings.ToLower(d.Name()), "key") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			report.Results = append(report.Results, Result{
				File:   path,
				Errors: []string{fmt.Sprintf("read: %v", err)},
			})
			return nil
		}
		result := TagInfoJSON(path, data)

		binPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".bin"
		if _, statErr := os.Stat(binPath); statErr != nil {
			result.warnf("companion .bin file not found: %s", filepath.Base(binPath))
		}

		report.Results = append(report.Results, result)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].File < report.Results[j].File
	})
	for _, result := range report.Results {
		report.TotalFiles++
		if result.Valid() {
			report.ValidFiles++
		} else {
			report.InvalidFiles++
		}
		report.TotalErrors += len(result.Errors)
		report.TotalWarnings += len(result.Warnings)
	}
	return report, nil
}
