package server

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"tagvault/internal/models"
)

var (
	idRegex     = regexp.MustCompile(`^[a-z]{2}-[0-9a-z]{4}$`)
	blobIDRegex = regexp.MustCompile(`^bl-[0-9a-z]{4}$`)
)

func validateID(id string) bool {
	return idRegex.MatchString(id)
}

func validateBlobID(id string) bool {
	return blobIDRegex.MatchString(id)
}

func normalizeStatus(value string) (string, error) {
	status, err := models.ParseRecordStatus(value)
	if err != nil {
		return "", badRequestCode(err, ErrCodeInvalidStatus)
	}
	return string(status), nil
}

func normalizeUID(value string) (string, error) {
	uid, err := models.NormalizeUID(value)
	if err != nil {
		return "", badRequestCode(err, ErrCodeInvalidUID)
	}
	return uid, nil
}

func normalizeLabel(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", badRequestCode(fmt.Errorf("label is required"), ErrCodeMissingRequired)
	}
	for _, r := range value {
		if r > unicode.MaxASCII || unicode.IsSpace(r) {
			return "", badRequestCode(fmt.Errorf("label must be ascii and non-space"), ErrCodeInvalidLabel)
		}
	}
	return strings.ToLower(value), nil
}

func normalizeLabels(values []string) ([]string, error) {
	labels := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, value := range values {
		label, err := normalizeLabel(value)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels, nil
}

func normalizePrefix(prefix string) (string, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if len(prefix) != 2 {
		return "", fmt.Errorf("record prefix must be 2 letters")
	}
	for _, r := range prefix {
		if r < 'a' || r > 'z' {
			return "", fmt.Errorf("record prefix must be lowercase letters")
		}
	}
	return prefix, nil
}
