package vault

import (
	"context"
	"io"
)

// PutResult describes one persisted dump payload.
type PutResult struct {
	SHA256    string
	SizeBytes int64
	Key       string
}

// Vault is the byte-storage abstraction for dump payloads. Content is
// immutable and addressed by digest: storing the same bytes twice
// yields the same key.
type Vault interface {
	Put(ctx context.Context, r io.Reader) (PutResult, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Verify(ctx context.Context, key string) error
	Delete(ctx context.Context, key string) error
}
