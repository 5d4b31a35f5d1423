package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tagvault/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tagvault.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testRecord(id string) *models.Record {
	now := time.Now().UTC()
	return &models.Record{
		ID:            id,
		VariantID:     "3DE605F4",
		Status:        string(models.StatusPending),
		Material:      "PETG/PETG Basic",
		Color:         "Red",
		Filename:      "3DE605F4-key.bin",
		SourceURL:     "https://discord.com/channels/123/456/789",
		ArchiveName:   "petg-dumps.zip",
		Description:   "Key file from a fresh spool",
		FileSizeBytes: 192,
		DownloadedAt:  models.NewDate(2025, time.August, 28),
		Notes:         "double checked",
		UID:           "3DE605F4",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestCreateAndGetRecord(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	rec := testRecord("td-a1b2")
	if err := s.CreateRecord(ctx, rec, []string{"discord", "petg"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetRecord(ctx, "td-a1b2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("record not found")
	}
	if got.VariantID != "3DE605F4" || got.Color != "Red" || got.FileSizeBytes != 192 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.DownloadedAt.Equal(rec.DownloadedAt) {
		t.Errorf("downloaded_at = %v, want %v", got.DownloadedAt, rec.DownloadedAt)
	}

	labels, err := s.ListLabels(ctx, "td-a1b2")
	if err != nil {
		t.Fatalf("labels: %v", err)
	}
	if len(labels) != 2 || labels[0] != "discord" || labels[1] != "petg" {
		t.Errorf("labels = %v", labels)
	}
}

func TestGetRecordMissing(t *testing.T) {
	s := testStore(t)
	got, err := s.GetRecord(context.Background(), "td-none")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing record, got %+v", got)
	}
}

func TestRecordExists(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	ok, err := s.RecordExists("td-a1b2")
	if err != nil || ok {
		t.Fatalf("exists before create = %v, %v", ok, err)
	}
	if err := s.CreateRecord(ctx, testRecord("td-a1b2"), nil); err != nil {
		t.Fatal(err)
	}
	ok, err = s.RecordExists("td-a1b2")
	if err != nil || !ok {
		t.Fatalf("exists after create = %v, %v", ok, err)
	}
}

func TestUpdateRecord(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.CreateRecord(ctx, testRecord("td-a1b2"), nil); err != nil {
		t.Fatal(err)
	}

	status := string(models.StatusVerified)
	color := "Dark Red"
	size := int64(1024)
	verified := time.Now().UTC()
	err := s.UpdateRecord(ctx, "td-a1b2", RecordUpdate{
		Status:        &status,
		Color:         &color,
		FileSizeBytes: &size,
		VerifiedAt:    &verified,
		UpdatedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.GetRecord(ctx, "td-a1b2")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != "verified" || got.Color != "Dark Red" || got.FileSizeBytes != 1024 {
		t.Errorf("update not applied: %+v", got)
	}
	if got.VerifiedAt == nil {
		t.Error("verified_at not set")
	}
	if got.Material != "PETG/PETG Basic" {
		t.Errorf("untouched field changed: %q", got.Material)
	}
}

func TestUpdateRecordClearVerified(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	rec := testRecord("td-a1b2")
	now := time.Now().UTC()
	rec.VerifiedAt = &now
	if err := s.CreateRecord(ctx, rec, nil); err != nil {
		t.Fatal(err)
	}

	err := s.UpdateRecord(ctx, "td-a1b2", RecordUpdate{
		ClearVerified: true,
		UpdatedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.GetRecord(ctx, "td-a1b2")
	if err != nil {
		t.Fatal(err)
	}
	if got.VerifiedAt != nil {
		t.Errorf("verified_at should be cleared, got %v", got.VerifiedAt)
	}
}

func TestLabelAddRemove(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.CreateRecord(ctx, testRecord("td-a1b2"), []string{"discord"}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddLabels(ctx, "td-a1b2", []string{"petg", "discord"}); err != nil {
		t.Fatal(err)
	}
	labels, _ := s.ListLabels(ctx, "td-a1b2")
	if len(labels) != 2 {
		t.Errorf("labels = %v, duplicates should be ignored", labels)
	}

	if err := s.RemoveLabels(ctx, "td-a1b2", []string{"discord"}); err != nil {
		t.Fatal(err)
	}
	labels, _ = s.ListLabels(ctx, "td-a1b2")
	if len(labels) != 1 || labels[0] != "petg" {
		t.Errorf("labels after remove = %v", labels)
	}
}

func TestGetRecordByUID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.CreateRecord(ctx, testRecord("td-a1b2"), nil); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetRecordByUID(ctx, "3DE605F4")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != "td-a1b2" {
		t.Errorf("got %+v", got)
	}

	none, err := s.GetRecordByUID(ctx, "00000000")
	if err != nil {
		t.Fatal(err)
	}
	if none != nil {
		t.Errorf("expected nil, got %+v", none)
	}
}

func TestBlobUpsertAndLookup(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	blob, err := s.UpsertBlob(ctx, &models.Blob{
		SHA256:    "AB12cd34ab12cd34ab12cd34ab12cd34ab12cd34ab12cd34ab12cd34ab12cd34",
		SizeBytes: 1024,
		VaultKey:  "sha256/ab/12/ab12cd34",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if blob.ID == "" {
		t.Fatal("blob id not generated")
	}
	if blob.SHA256 != "ab12cd34ab12cd34ab12cd34ab12cd34ab12cd34ab12cd34ab12cd34ab12cd34" {
		t.Errorf("sha not normalized: %q", blob.SHA256)
	}

	// Second upsert of the same content returns the original row.
	again, err := s.UpsertBlob(ctx, &models.Blob{
		SHA256:    blob.SHA256,
		SizeBytes: 1024,
		VaultKey:  blob.VaultKey,
	})
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != blob.ID {
		t.Errorf("dedupe failed: %q vs %q", again.ID, blob.ID)
	}

	got, err := s.GetBlob(ctx, blob.ID)
	if err != nil || got == nil {
		t.Fatalf("get blob: %v %v", got, err)
	}

	count, err := s.BlobRefCount(ctx, blob.ID)
	if err != nil || count != 0 {
		t.Fatalf("ref count = %d, %v", count, err)
	}
}
