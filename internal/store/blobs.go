package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"tagvault/internal/models"
)

const blobColumns = "id, sha256, size_bytes, vault_key, created_at"

// UpsertBlob inserts a blob if absent and returns the canonical row by sha256.
func (s *Store) UpsertBlob(ctx context.Context, blob *models.Blob) (*models.Blob, error) {
	if blob == nil {
		return nil, fmt.Errorf("blob is required")
	}
	blob.SHA256 = strings.ToLower(strings.TrimSpace(blob.SHA256))
	blob.VaultKey = strings.TrimSpace(blob.VaultKey)
	if blob.SHA256 == "" {
		return nil, fmt.Errorf("sha256 is required")
	}
	if blob.VaultKey == "" {
		return nil, fmt.Errorf("vault_key is required")
	}
	if blob.SizeBytes < 0 {
		return nil, fmt.Errorf("size_bytes must be non-negative")
	}

	if strings.TrimSpace(blob.ID) == "" {
		generated, err := GenerateBlobID(func(id string) (bool, error) {
			return s.blobIDExists(ctx, id)
		})
		if err != nil {
			return nil, err
		}
		blob.ID = generated
	}
	if blob.CreatedAt.IsZero() {
		blob.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO blobs (`+blobColumns+`)
		VALUES (?, ?, ?, ?, ?)
	`, blob.ID, blob.SHA256, blob.SizeBytes, blob.VaultKey, formatTime(blob.CreatedAt))
	if err != nil {
		return nil, err
	}

	return s.GetBlobBySHA256(ctx, blob.SHA256)
}

// GetBlob returns a blob by id, or nil when absent.
func (s *Store) GetBlob(ctx context.Context, id string) (*models.Blob, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+blobColumns+" FROM blobs WHERE id = ?", id)
	return scanBlob(row)
}

// GetBlobBySHA256 returns a blob by content digest, or nil when absent.
func (s *Store) GetBlobBySHA256(ctx context.Context, sha256 string) (*models.Blob, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+blobColumns+" FROM blobs WHERE sha256 = ?", strings.ToLower(strings.TrimSpace(sha256)))
	return scanBlob(row)
}

// BlobRefCount counts records referencing a blob.
func (s *Store) BlobRefCount(ctx context.Context, id string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE blob_id = ?", id).Scan(&count)
	return count, err
}

// ListUnreferencedBlobs returns blobs no record points at, the
// garbage-collection candidates.
func (s *Store) ListUnreferencedBlobs(ctx context.Context) ([]models.Blob, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+blobColumns+` FROM blobs
		WHERE id NOT IN (SELECT blob_id FROM records WHERE blob_id IS NOT NULL)
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blobs []models.Blob
	for rows.Next() {
		blob, err := scanBlob(rows)
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, *blob)
	}
	return blobs, rows.Err()
}

// DeleteBlob removes a blob row. The caller is responsible for the
// vaulted bytes.
func (s *Store) DeleteBlob(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM blobs WHERE id = ?", id)
	return err
}

func (s *Store) blobIDExists(ctx context.Context, id string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM blobs WHERE id = ? LIMIT 1", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func scanBlob(scanner interface {
	Scan(dest ...any) error
}) (*models.Blob, error) {
	var blob models.Blob
	var createdAt string

	if err := scanner.Scan(&blob.ID, &blob.SHA256, &blob.SizeBytes, &blob.VaultKey, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	parsed, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	blob.CreatedAt = parsed
	return &blob, nil
}
