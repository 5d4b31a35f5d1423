package main

import (
	"testing"

	"tagvault/internal/api"
	"tagvault/internal/scanner"
)

func boolPtr(v bool) *bool { return &v }

func TestSelectDumpsForRegistration(t *testing.T) {
	summary := &scanner.Summary{
		Entries: []scanner.Entry{
			{Path: "a.bin", Kind: scanner.KindDump, UID: "3DE605F4", Cataloged: boolPtr(true)},
			{Path: "b.bin", Kind: scanner.KindDump, UID: "AABBCCDD", Cataloged: boolPtr(false)},
			{Path: "c.bin", Kind: scanner.KindDump, UID: "11223344"},
			{Path: "a-key.bin", Kind: scanner.KindKeyFile},
			{Path: "broken.bin", Kind: scanner.KindDump},
		},
		Dumps: 4,
	}

	selected := selectDumpsForRegistration(summary, false)
	if len(selected) != 2 {
		t.Fatalf("selected %d dumps, want 2", len(selected))
	}
	if selected[0].UID != "AABBCCDD" || selected[1].UID != "11223344" {
		t.Fatalf("selected %q and %q, want AABBCCDD and 11223344", selected[0].UID, selected[1].UID)
	}

	// Re-running after registration must select nothing.
	summary.Entries[1].Cataloged = boolPtr(true)
	summary.Entries[2].Cataloged = boolPtr(true)
	if again := selectDumpsForRegistration(summary, false); len(again) != 0 {
		t.Fatalf("selected %d dumps on replay, want 0", len(again))
	}

	// force re-registers cataloged dumps but still skips non-dumps
	// and dumps without a UID.
	forced := selectDumpsForRegistration(summary, true)
	if len(forced) != 3 {
		t.Fatalf("selected %d dumps with force, want 3", len(forced))
	}
}

func TestSplitRequests(t *testing.T) {
	requests := make([]api.RecordCreateRequest, 5)
	for i := range requests {
		requests[i].VariantID = "GFA00"
	}

	chunks := splitRequests(requests, 2)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if len(chunks[0]) != 2 || len(chunks[1]) != 2 || len(chunks[2]) != 1 {
		t.Fatalf("chunk sizes %d/%d/%d, want 2/2/1", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}

	// Non-positive size falls back to the configured default.
	whole := splitRequests(requests, 0)
	if len(whole) != 1 || len(whole[0]) != 5 {
		t.Fatalf("got %d chunks with default size, want 1 of 5", len(whole))
	}

	if empty := splitRequests(nil, 2); empty != nil {
		t.Fatalf("got %d chunks for empty input, want none", len(empty))
	}
}
