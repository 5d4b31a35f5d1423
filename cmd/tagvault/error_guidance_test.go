package main

import (
	"errors"
	"strings"
	"testing"

	"tagvault/internal/api"
)

func TestFormatCLIErrorNil(t *testing.T) {
	if lines := formatCLIError(nil); lines != nil {
		t.Fatalf("expected nil for nil error, got %v", lines)
	}
}

func TestFormatCLIErrorResourceExhausted(t *testing.T) {
	err := &api.APIError{Status: 429, Code: "resource_exhausted", Message: "too many concurrent import requests"}
	lines := formatCLIError(err)
	if len(lines) < 2 {
		t.Fatalf("expected hint line, got %v", lines)
	}
	if !strings.Contains(lines[1], "retry shortly") {
		t.Fatalf("unexpected hint: %q", lines[1])
	}
}

func TestFormatCLIErrorServerError(t *testing.T) {
	err := &api.APIError{Status: 500, Code: "internal", Message: "internal error"}
	lines := formatCLIError(err)
	found := false
	for _, line := range lines {
		if strings.Contains(line, "check server logs") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected server log hint, got %v", lines)
	}
}

func TestFormatCLIErrorPlain(t *testing.T) {
	lines := formatCLIError(errors.New("boom"))
	if len(lines) != 1 || lines[0] != "boom" {
		t.Fatalf("expected plain error only, got %v", lines)
	}
}

func TestUniqueLines(t *testing.T) {
	got := uniqueLines([]string{"a", "", "b", "a", "b"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected result: %v", got)
	}
}
