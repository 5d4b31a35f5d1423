package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tagvault/internal/api"
	"tagvault/internal/models"
	"tagvault/internal/store"
)

const (
	exportPageSize    = 500
	importMaxMessages = 20
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.withLimiter(w, r, s.exportLimiter, "export", func() {
		ctx := r.Context()

		// The first page is fetched before the header goes out so a
		// broken store still yields a proper error response.
		lines, err := s.exportPage(ctx, 0)
		if err != nil {
			s.writeErrorReq(w, r, http.StatusInternalServerError,
				makeAPIError(http.StatusInternalServerError, "internal", ErrCodeExportFailed, err))
			return
		}

		w.Header().Set("Content-Type", "application/x-ndjson")
		w.WriteHeader(http.StatusOK)
		enc := json.NewEncoder(w)

		offset := 0
		for len(lines) > 0 {
			for _, line := range lines {
				if err := enc.Encode(line); err != nil {
					s.log().Error("export encode", "record_id", line.ID, "error", err)
					return
				}
				if flusher, ok := w.(http.Flusher); ok {
					flusher.Flush()
				}
			}
			offset += len(lines)
			lines, err = s.exportPage(ctx, offset)
			if err != nil {
				s.log().Error("export list records", "offset", offset, "error", err)
				return
			}
		}
	})
}

func (s *Server) exportPage(ctx context.Context, offset int) ([]api.RecordImportRecord, error) {
	records, err := s.store.ListRecords(ctx, store.ListFilter{Limit: exportPageSize, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	labelMap, err := s.store.ListLabelsForRecords(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}

	lines := make([]api.RecordImportRecord, 0, len(records))
	for _, rec := range records {
		labels := labelMap[rec.ID]
		if labels == nil {
			labels = []string{}
		}
		rec.Labels = labels
		lines = append(lines, api.RecordImportRecord{Record: rec, Labels: labels})
	}
	return lines, nil
}

type importMode int

const (
	// importModeMerge folds duplicate lines into the record they match.
	importModeMerge importMode = iota
	// importModeSkip leaves matched records untouched.
	importModeSkip
	// importModeStrict fails the import on the first duplicate.
	importModeStrict
)

func parseImportMode(value string) (importMode, error) {
	switch value {
	case "", "merge":
		return importModeMerge, nil
	case "skip":
		return importModeSkip, nil
	case "strict":
		return importModeStrict, nil
	default:
		return importModeMerge, badRequestCode(fmt.Errorf("invalid import mode %q: expected merge, skip or strict", value), ErrCodeInvalidImportMode)
	}
}

// errImportConflict marks a line whose record is already in the catalog.
var errImportConflict = errors.New("already in catalog")

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	s.withLimiter(w, r, s.importLimiter, "import", func() {
		dryRun, err := queryBool(r, "dry_run")
		if err != nil {
			s.writeErrorReq(w, r, http.StatusBadRequest, err)
			return
		}
		mode, err := parseImportMode(r.URL.Query().Get("mode"))
		if err != nil {
			s.writeErrorReq(w, r, http.StatusBadRequest, err)
			return
		}

		resp := api.ImportResponse{DryRun: dryRun}
		scanner := bufio.NewScanner(r.Body)
		scanner.Buffer(make([]byte, 64*1024), importStreamMaxLine)

		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			var rec api.RecordImportRecord
			if err := json.Unmarshal([]byte(line), &rec); err != nil {
				resp.Errors++
				addImportMessage(&resp, fmt.Sprintf("line %d: invalid JSON: %v", lineNo, err))
				continue
			}

			outcome, recordID, err := s.importRecord(r.Context(), rec, dryRun, mode)
			if err != nil {
				if errors.Is(err, errImportConflict) {
					s.writeErrorReq(w, r, http.StatusConflict, conflict(fmt.Errorf("line %d: %v", lineNo, err)))
					return
				}
				resp.Errors++
				addImportMessage(&resp, fmt.Sprintf("line %d: %v", lineNo, err))
				continue
			}
			switch outcome {
			case importCreated:
				resp.Created++
				resp.RecordIDs = append(resp.RecordIDs, recordID)
			case importUpdated:
				resp.Updated++
				resp.RecordIDs = append(resp.RecordIDs, recordID)
			case importSkipped:
				resp.Skipped++
			}
		}
		if err := scanner.Err(); err != nil {
			s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("read import stream: %w", err), ErrCodeImportFailed))
			return
		}

		s.log().Info("import complete",
			"created", resp.Created, "updated", resp.Updated,
			"skipped", resp.Skipped, "errors", resp.Errors, "dry_run", dryRun)
		s.writeJSON(w, http.StatusOK, resp)
	})
}

type importOutcome int

const (
	importCreated importOutcome = iota
	importUpdated
	importSkipped
)

// importRecord lands one exported record. Existing ids are updated in
// place so an export can be replayed into another catalog; lines with a
// fresh id but a known variant_id+filename pair are folded into the
// record they duplicate instead of inserting a second copy. Returns
// the id of the record actually touched.
func (s *Server) importRecord(ctx context.Context, rec api.RecordImportRecord, dryRun bool, mode importMode) (importOutcome, string, error) {
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		return importSkipped, "", fmt.Errorf("id is required")
	}
	if !validateID(id) {
		return importSkipped, "", fmt.Errorf("invalid id %q", id)
	}
	if strings.TrimSpace(rec.VariantID) == "" {
		return importSkipped, "", fmt.Errorf("variant_id is required")
	}
	status := rec.Status
	if status == "" {
		status = defaultStatus
	}
	if _, err := models.ParseRecordStatus(status); err != nil {
		return importSkipped, "", err
	}
	labels, err := normalizeLabels(rec.Labels)
	if err != nil {
		return importSkipped, "", err
	}
	if rec.UID != "" {
		uid, err := normalizeUID(rec.UID)
		if err != nil {
			return importSkipped, "", err
		}
		rec.UID = uid
	}

	exists, err := s.store.RecordExists(id)
	if err != nil {
		return importSkipped, "", err
	}

	targetID := id
	if !exists {
		// Dedupe by variant_id+filename before inserting under a new id.
		if rec.Filename != "" {
			match, err := s.store.FindRecordByVariantFilename(ctx, strings.TrimSpace(rec.VariantID), rec.Filename)
			if err != nil {
				return importSkipped, "", err
			}
			if match != nil {
				switch mode {
				case importModeSkip:
					return importSkipped, "", nil
				case importModeStrict:
					return importSkipped, "", fmt.Errorf("%w: %s holds %s/%s", errImportConflict, match.ID, rec.VariantID, rec.Filename)
				}
				exists = true
				targetID = match.ID
			}
		}
	} else {
		switch mode {
		case importModeSkip:
			return importSkipped, "", nil
		case importModeStrict:
			return importSkipped, "", fmt.Errorf("%w: id %s", errImportConflict, id)
		}
	}

	if dryRun {
		if exists {
			return importUpdated, targetID, nil
		}
		return importCreated, targetID, nil
	}

	if exists {
		update := store.RecordUpdate{
			VariantID:     &rec.VariantID,
			Status:        &status,
			Material:      &rec.Material,
			Color:         &rec.Color,
			Filename:      &rec.Filename,
			SourceURL:     &rec.SourceURL,
			ArchiveName:   &rec.ArchiveName,
			Description:   &rec.Description,
			FileSizeBytes: &rec.FileSizeBytes,
			DownloadedAt:  &rec.DownloadedAt,
			Notes:         &rec.Notes,
			UID:           &rec.UID,
			UpdatedAt:     time.Now().UTC(),
		}
		if rec.VerifiedAt != nil {
			update.VerifiedAt = rec.VerifiedAt
		} else {
			update.ClearVerified = true
		}
		if err := s.store.UpdateRecord(ctx, targetID, update); err != nil {
			return importSkipped, "", err
		}
		if err := s.store.AddLabels(ctx, targetID, labels); err != nil {
			return importSkipped, "", err
		}
		return importUpdated, targetID, nil
	}

	record := rec.Record
	record.Status = status
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	if err := s.store.CreateRecord(ctx, &record, labels); err != nil {
		return importSkipped, "", err
	}
	return importCreated, record.ID, nil
}

func addImportMessage(resp *api.ImportResponse, message string) {
	if len(resp.Messages) >= importMaxMessages {
		return
	}
	resp.Messages = append(resp.Messages, message)
}
