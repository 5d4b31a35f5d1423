package vault

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const digestAlgorithm = "sha256"

// Local stores dump payloads in a content-addressed directory tree:
// sha256/<aa>/<bb>/<digest>.
type Local struct {
	root string
}

// NewLocal creates a local vault rooted at root.
func NewLocal(root string) (*Local, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("vault root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, "tmp"), 0o755); err != nil {
		return nil, err
	}
	return &Local{root: abs}, nil
}

// Put streams bytes, computes SHA-256, and stores content by digest.
// Re-putting existing content is a no-op that returns the same key.
func (v *Local) Put(ctx context.Context, r io.Reader) (PutResult, error) {
	var zero PutResult
	if v == nil {
		return zero, fmt.Errorf("vault is not configured")
	}
	if r == nil {
		return zero, fmt.Errorf("reader is required")
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	tmp, err := os.CreateTemp(filepath.Join(v.root, "tmp"), "put-*")
	if err != nil {
		return zero, err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), r)
	if err != nil {
		cleanup()
		return zero, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return zero, err
	}

	digest := hex.EncodeToString(h.Sum(nil))
	key := keyFromDigest(digest)
	dst := filepath.Join(v.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		cleanup()
		return zero, err
	}

	if _, err := os.Stat(dst); err == nil {
		_ = os.Remove(tmpPath)
		return PutResult{SHA256: digest, SizeBytes: n, Key: key}, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		cleanup()
		return zero, err
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		if _, statErr := os.Stat(dst); statErr == nil {
			_ = os.Remove(tmpPath)
			return PutResult{SHA256: digest, SizeBytes: n, Key: key}, nil
		}
		cleanup()
		return zero, err
	}

	return PutResult{SHA256: digest, SizeBytes: n, Key: key}, nil
}

// Open returns a reader for vaulted content.
func (v *Local) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if v == nil {
		return nil, fmt.Errorf("vault is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := v.pathFromKey(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Verify re-hashes stored content and checks it against the digest
// embedded in the key. Detects bit rot and manual tampering.
func (v *Local) Verify(ctx context.Context, key string) error {
	rc, err := v.Open(ctx, key)
	if err != nil {
		return err
	}
	defer rc.Close()

	want := digestFromKey(key)
	if want == "" {
		return fmt.Errorf("key %q carries no digest", key)
	}

	h := sha256.New()
	if _, err := io.Copy(h, rc); err != nil {
		return err
	}
	got := hex.EncodeToString(h.Sum(nil))
	if got != want {
		return fmt.Errorf("digest mismatch for %s: stored content hashes to %s", key, got)
	}
	return nil
}

// Delete removes a vaulted object. Missing files are ignored.
func (v *Local) Delete(ctx context.Context, key string) error {
	if v == nil {
		return fmt.Errorf("vault is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := v.pathFromKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func keyFromDigest(digest string) string {
	return fmt.Sprintf("%s/%s/%s/%s", digestAlgorithm, digest[0:2], digest[2:4], digest)
}

func digestFromKey(key string) string {
	parts := strings.Split(key, "/")
	if len(parts) == 0 {
		return ""
	}
	last := parts[len(parts)-1]
	if len(last) != sha256.Size*2 {
		return ""
	}
	return last
}

func (v *Local) pathFromKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("vault key is required")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("vault key must be relative")
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || strings.Contains(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid vault key")
	}
	return filepath.Join(v.root, clean), nil
}
