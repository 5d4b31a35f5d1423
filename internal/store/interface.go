package store

import (
	"context"

	"tagvault/internal/models"
)

// RecordStore abstracts attribution record storage backends.
type RecordStore interface {
	RecordExists(id string) (bool, error)
	CreateRecord(ctx context.Context, rec *models.Record, labels []string) error
	GetRecord(ctx context.Context, id string) (*models.Record, error)
	GetRecordByUID(ctx context.Context, uid string) (*models.Record, error)
	FindRecordByVariantFilename(ctx context.Context, variantID, filename string) (*models.Record, error)
	UpdateRecord(ctx context.Context, id string, update RecordUpdate) error
	ListRecords(ctx context.Context, filter ListFilter) ([]models.Record, error)
	AddLabels(ctx context.Context, id string, labels []string) error
	RemoveLabels(ctx context.Context, id string, labels []string) error
	ListLabels(ctx context.Context, id string) ([]string, error)
	ListAllLabels(ctx context.Context) ([]string, error)
	ListLabelsForRecords(ctx context.Context, ids []string) (map[string][]string, error)
	GetStoreInfo(ctx context.Context) (*StoreInfo, error)
}

// BlobStore is the metadata persistence surface for vaulted dump files.
//
// Kept separate from RecordStore so record curation and blob bookkeeping
// stay decoupled.
type BlobStore interface {
	UpsertBlob(ctx context.Context, blob *models.Blob) (*models.Blob, error)
	GetBlob(ctx context.Context, id string) (*models.Blob, error)
	GetBlobBySHA256(ctx context.Context, sha string) (*models.Blob, error)
	BlobRefCount(ctx context.Context, id string) (int, error)
	ListUnreferencedBlobs(ctx context.Context) ([]models.Blob, error)
	DeleteBlob(ctx context.Context, id string) error
}

var _ RecordStore = (*Store)(nil)
var _ BlobStore = (*Store)(nil)
