package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseRecordStatus(t *testing.T) {
	cases := []struct {
		raw     string
		want    RecordStatus
		wantErr bool
	}{
		{"pending", StatusPending, false},
		{" Verified ", StatusVerified, false},
		{"REJECTED", StatusRejected, false},
		{"retired", StatusRetired, false},
		{"", "", true},
		{"open", "", true},
	}

	for _, tc := range cases {
		got, err := ParseRecordStatus(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseRecordStatus(%q): expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseRecordStatus(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseRecordStatus(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeUID(t *testing.T) {
	uid, err := NormalizeUID("3de605f4")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if uid != "3DE605F4" {
		t.Fatalf("expected uppercase uid, got %q", uid)
	}

	for _, bad := range []string{"", "XYZ", "3DE605F", "3DE605F4A"} {
		if _, err := NormalizeUID(bad); err == nil {
			t.Fatalf("expected error for uid %q", bad)
		}
	}
}

func TestDateRoundTrip(t *testing.T) {
	d := NewDate(2025, time.August, 28)
	if d.String() != "2025-08-28" {
		t.Fatalf("expected 2025-08-28, got %q", d.String())
	}

	parsed, err := ParseDate("2025-08-28")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.Equal(d) {
		t.Fatalf("expected equal dates, got %v and %v", parsed, d)
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Fatalf("json round trip changed date: %v -> %v", d, back)
	}
}

func TestDateZero(t *testing.T) {
	var d Date
	if !d.IsZero() {
		t.Fatal("expected zero date")
	}
	if d.String() != "" {
		t.Fatalf("expected empty string for zero date, got %q", d.String())
	}
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `""` {
		t.Fatalf("expected empty json string, got %s", data)
	}
}
