package models

import (
	"fmt"
	"regexp"
	"strings"
)

// RecordStatus defines allowed curation states for attribution records.
type RecordStatus string

const (
	StatusPending  RecordStatus = "pending"
	StatusVerified RecordStatus = "verified"
	StatusRejected RecordStatus = "rejected"
	StatusRetired  RecordStatus = "retired"
)

const (
	// UIDHexLength is the length of a tag UID in hex characters.
	UIDHexLength = 8
)

var validRecordStatuses = map[RecordStatus]struct{}{
	StatusPending:  {},
	StatusVerified: {},
	StatusRejected: {},
	StatusRetired:  {},
}

var activeRecordStatuses = []RecordStatus{
	StatusPending,
	StatusVerified,
}

var uidPattern = regexp.MustCompile(`^[0-9A-Fa-f]{8}$`)

func IsValidRecordStatus(status RecordStatus) bool {
	_, ok := validRecordStatuses[status]
	return ok
}

func ParseRecordStatus(raw string) (RecordStatus, error) {
	value := RecordStatus(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("status is required")
	}
	if !IsValidRecordStatus(value) {
		return "", fmt.Errorf("invalid status: %s", value)
	}
	return value, nil
}

// ActiveRecordStatusStrings returns statuses that count as live catalog
// entries for default listings.
func ActiveRecordStatusStrings() []string {
	out := make([]string, 0, len(activeRecordStatuses))
	for _, status := range activeRecordStatuses {
		out = append(out, string(status))
	}
	return out
}

// NormalizeUID uppercases a tag UID and checks the 8-hex-char form.
func NormalizeUID(raw string) (string, error) {
	uid := strings.ToUpper(strings.TrimSpace(raw))
	if uid == "" {
		return "", fmt.Errorf("uid is required")
	}
	if !uidPattern.MatchString(uid) {
		return "", fmt.Errorf("uid must be %d hex characters, got %q", UIDHexLength, raw)
	}
	return uid, nil
}
