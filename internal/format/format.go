package format

import (
	"encoding/json"
	"io"
)

// Formatter abstracts output formatting for CLI payloads.
type Formatter interface {
	Write(w io.Writer, payload any) error
}

// JSONFormatter writes compact JSON, one payload per line.
type JSONFormatter struct{}

func (f JSONFormatter) Write(w io.Writer, payload any) error {
	return json.NewEncoder(w).Encode(payload)
}

// IndentedJSONFormatter writes two-space indented JSON, the layout the
// upstream archive uses for sidecar files.
type IndentedJSONFormatter struct{}

func (f IndentedJSONFormatter) Write(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
