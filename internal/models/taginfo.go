package models

// Temperatures holds the printing temperature block decoded from a
// filament tag. Values stay strings except bed_temp_type, matching the
// sidecar JSON interchange format.
type Temperatures struct {
	MinHotend   string `json:"min_hotend,omitempty"`
	MaxHotend   string `json:"max_hotend,omitempty"`
	BedTemp     string `json:"bed_temp,omitempty"`
	BedTempType int    `json:"bed_temp_type,omitempty"`
	DryingTime  string `json:"drying_time,omitempty"`
	DryingTemp  string `json:"drying_temp,omitempty"`
}

// TagInfo is the decoded filament metadata sidecar for one dump.
type TagInfo struct {
	UID                  string        `json:"uid"`
	FilamentType         string        `json:"filament_type"`
	DetailedFilamentType string        `json:"detailed_filament_type,omitempty"`
	FilamentColor        string        `json:"filament_color"`
	MaterialID           string        `json:"material_id,omitempty"`
	VariantID            string        `json:"variant_id,omitempty"`
	SpoolWeight          int           `json:"spool_weight,omitempty"`
	SpoolWidth           int           `json:"spool_width,omitempty"`
	FilamentDiameter     string        `json:"filament_diameter,omitempty"`
	FilamentLength       int           `json:"filament_length,omitempty"`
	TrayUID              string        `json:"tray_uid,omitempty"`
	Filename             string        `json:"filename"`
	Temperatures         *Temperatures `json:"temperatures,omitempty"`
}
