package models

import "time"

// Blob is an immutable vaulted dump payload referenced by records.
type Blob struct {
	ID        string    `json:"id"`
	SHA256    string    `json:"sha256"`
	SizeBytes int64     `json:"size_bytes"`
	VaultKey  string    `json:"vault_key"`
	CreatedAt time.Time `json:"created_at"`
}
