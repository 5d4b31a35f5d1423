package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"tagvault/internal/api"
	"tagvault/internal/models"
)

const defaultMaxUploadBytes = 16 << 20 // 16 MiB

func (s *Server) handleUploadBlob(w http.ResponseWriter, r *http.Request) {
	if s.vault == nil || s.blobs == nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, internalError(fmt.Errorf("blob storage not configured")))
		return
	}

	s.withLimiter(w, r, s.uploadLimiter, "upload", func() {
		maxBytes := s.maxUploadBytes
		if maxBytes <= 0 {
			maxBytes = defaultMaxUploadBytes
		}
		body := http.MaxBytesReader(w, r.Body, maxBytes)

		result, err := s.vault.Put(r.Context(), body)
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("upload exceeds %d bytes", maxBytes), ErrCodeRequestTooLarge))
				return
			}
			s.writeErrorReq(w, r, http.StatusInternalServerError, vaultFailure(err))
			return
		}
		if result.SizeBytes == 0 {
			s.writeErrorReq(w, r, http.StatusBadRequest, badRequest(fmt.Errorf("empty upload")))
			return
		}

		blob, err := s.blobs.UpsertBlob(r.Context(), &models.Blob{
			SHA256:    result.SHA256,
			SizeBytes: result.SizeBytes,
			VaultKey:  result.Key,
		})
		if err != nil {
			s.writeStoreError(w, r, err)
			return
		}

		s.log().Info("blob stored", "blob_id", blob.ID, "sha256", blob.SHA256, "size_bytes", blob.SizeBytes)
		s.writeJSON(w, http.StatusCreated, api.BlobResponse{Blob: *blob})
	})
}

func (s *Server) handleDownloadBlob(w http.ResponseWriter, r *http.Request) {
	blob, ok := s.blobFromPath(w, r)
	if !ok {
		return
	}

	reader, err := s.vault.Open(r.Context(), blob.VaultKey)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(fmt.Errorf("blob content missing from vault"), ErrCodeBlobNotFound))
			return
		}
		s.writeErrorReq(w, r, http.StatusInternalServerError, vaultFailure(err))
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(blob.SizeBytes, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, reader); err != nil {
		s.log().Error("stream blob", "blob_id", blob.ID, "error", err)
	}
}

func (s *Server) handleBlobMeta(w http.ResponseWriter, r *http.Request) {
	blob, ok := s.blobFromPath(w, r)
	if !ok {
		return
	}

	refs, err := s.blobs.BlobRefCount(r.Context(), blob.ID)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.BlobResponse{Blob: *blob, RefCount: refs})
}

// handleVerifyBlob re-hashes the vaulted bytes against the recorded
// digest. Failures surface as ok=false rather than an error status so
// a sweep over many blobs can keep going.
func (s *Server) handleVerifyBlob(w http.ResponseWriter, r *http.Request) {
	blob, ok := s.blobFromPath(w, r)
	if !ok {
		return
	}

	resp := api.BlobVerifyResponse{ID: blob.ID, SHA256: blob.SHA256, OK: true}
	if err := s.vault.Verify(r.Context(), blob.VaultKey); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(fmt.Errorf("blob content missing from vault"), ErrCodeBlobNotFound))
			return
		}
		resp.OK = false
		resp.Detail = err.Error()
		s.log().Warn("blob verification failed", "blob_id", blob.ID, "error", err)
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleBlobGC removes blobs no record references: the vaulted bytes
// first, then the row. dry_run reports candidates without deleting.
func (s *Server) handleBlobGC(w http.ResponseWriter, r *http.Request) {
	if s.vault == nil || s.blobs == nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, internalError(fmt.Errorf("blob storage not configured")))
		return
	}

	dryRun, err := queryBool(r, "dry_run")
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	candidates, err := s.blobs.ListUnreferencedBlobs(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	resp := api.BlobGCResponse{DryRun: dryRun}
	for _, blob := range candidates {
		if !dryRun {
			if err := s.vault.Delete(r.Context(), blob.VaultKey); err != nil {
				s.writeErrorReq(w, r, http.StatusInternalServerError, vaultFailure(err))
				return
			}
			if err := s.blobs.DeleteBlob(r.Context(), blob.ID); err != nil {
				s.writeStoreError(w, r, err)
				return
			}
		}
		resp.Removed++
		resp.FreedBytes += blob.SizeBytes
		resp.BlobIDs = append(resp.BlobIDs, blob.ID)
	}

	if !dryRun && resp.Removed > 0 {
		s.log().Info("blob gc", "removed", resp.Removed, "freed_bytes", resp.FreedBytes)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) blobFromPath(w http.ResponseWriter, r *http.Request) (*models.Blob, bool) {
	if s.vault == nil || s.blobs == nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, internalError(fmt.Errorf("blob storage not configured")))
		return nil, false
	}

	id := r.PathValue("id")
	if !validateBlobID(id) {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("invalid blob id"), ErrCodeInvalidID))
		return nil, false
	}

	blob, err := s.blobs.GetBlob(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return nil, false
	}
	if blob == nil {
		s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(fmt.Errorf("blob %s not found", id), ErrCodeBlobNotFound))
		return nil, false
	}
	return blob, true
}
