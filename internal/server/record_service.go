package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tagvault/internal/api"
	"tagvault/internal/models"
	"tagvault/internal/store"
)

const defaultStatus = string(models.StatusPending)

// RecordService centralizes record validation and defaults.
type RecordService struct {
	store        store.RecordStore
	recordPrefix string
}

// NewRecordService constructs a RecordService.
func NewRecordService(store store.RecordStore, recordPrefix string) *RecordService {
	return &RecordService{store: store, recordPrefix: recordPrefix}
}

// Create creates a record from a request.
func (s *RecordService) Create(ctx context.Context, req api.RecordCreateRequest) (api.RecordResponse, error) {
	var resp api.RecordResponse

	if strings.TrimSpace(req.VariantID) == "" {
		return resp, badRequestCode(fmt.Errorf("variant_id is required"), ErrCodeMissingRequired)
	}

	prefix, err := normalizePrefix(s.recordPrefix)
	if err != nil {
		return resp, err
	}

	status := defaultStatus
	if req.Status != nil {
		status, err = normalizeStatus(*req.Status)
		if err != nil {
			return resp, err
		}
	}

	uid := ""
	if req.UID != nil && strings.TrimSpace(*req.UID) != "" {
		uid, err = normalizeUID(*req.UID)
		if err != nil {
			return resp, err
		}
	}

	var size int64
	if req.FileSizeBytes != nil {
		if *req.FileSizeBytes < 0 {
			return resp, badRequestCode(fmt.Errorf("file_size_bytes must be non-negative"), ErrCodeInvalidFileSize)
		}
		size = *req.FileSizeBytes
	}

	labels, err := normalizeLabels(req.Labels)
	if err != nil {
		return resp, err
	}

	id := strings.TrimSpace(req.ID)
	if id != "" {
		if !validateID(id) || !strings.HasPrefix(id, prefix+"-") {
			return resp, badRequestCode(fmt.Errorf("invalid id"), ErrCodeInvalidID)
		}
		exists, err := s.store.RecordExists(id)
		if err != nil {
			return resp, err
		}
		if exists {
			return resp, makeAPIError(409, "conflict", ErrCodeRecordIDExists, fmt.Errorf("id already exists"))
		}
	} else {
		id, err = store.GenerateID(prefix, s.store.RecordExists)
		if err != nil {
			return resp, err
		}
	}

	var downloaded models.Date
	if req.DownloadedAt != nil {
		downloaded = *req.DownloadedAt
	}

	now := time.Now().UTC()
	rec := &models.Record{
		ID:            id,
		VariantID:     strings.TrimSpace(req.VariantID),
		Status:        status,
		Material:      valueOrEmpty(req.Material),
		Color:         valueOrEmpty(req.Color),
		Filename:      valueOrEmpty(req.Filename),
		SourceURL:     valueOrEmpty(req.SourceURL),
		ArchiveName:   valueOrEmpty(req.ArchiveName),
		Description:   valueOrEmpty(req.Description),
		FileSizeBytes: size,
		DownloadedAt:  downloaded,
		Notes:         valueOrEmpty(req.Notes),
		UID:           uid,
		BlobID:        valueOrEmpty(req.BlobID),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if status == string(models.StatusVerified) {
		rec.VerifiedAt = &now
	}

	if err := s.store.CreateRecord(ctx, rec, labels); err != nil {
		if isUniqueConstraint(err) {
			return resp, makeAPIError(409, "conflict", ErrCodeRecordIDExists, fmt.Errorf("id already exists"))
		}
		return resp, storeFailure(err)
	}

	rec.Labels = labels
	resp = api.RecordResponse{Record: *rec, Labels: labels}
	return resp, nil
}

// Get returns a record with its labels.
func (s *RecordService) Get(ctx context.Context, id string) (api.RecordResponse, error) {
	var resp api.RecordResponse

	rec, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return resp, storeFailure(err)
	}
	if rec == nil {
		return resp, notFound(fmt.Errorf("record %s not found", id))
	}

	labels, err := s.store.ListLabels(ctx, id)
	if err != nil {
		return resp, storeFailure(err)
	}

	rec.Labels = labels
	return api.RecordResponse{Record: *rec, Labels: labels}, nil
}

// GetByUID returns the newest record for a tag UID with its labels.
func (s *RecordService) GetByUID(ctx context.Context, uid string) (api.RecordResponse, error) {
	var resp api.RecordResponse

	rec, err := s.store.GetRecordByUID(ctx, uid)
	if err != nil {
		return resp, storeFailure(err)
	}
	if rec == nil {
		return resp, notFound(fmt.Errorf("no record for uid %s", uid))
	}

	return s.Get(ctx, rec.ID)
}

// Update applies a partial update and returns the updated record.
func (s *RecordService) Update(ctx context.Context, id string, req api.RecordUpdateRequest) (api.RecordResponse, error) {
	var resp api.RecordResponse

	existing, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return resp, storeFailure(err)
	}
	if existing == nil {
		return resp, notFound(fmt.Errorf("record %s not found", id))
	}

	update := store.RecordUpdate{UpdatedAt: time.Now().UTC()}

	if req.VariantID != nil {
		trimmed := strings.TrimSpace(*req.VariantID)
		if trimmed == "" {
			return resp, badRequestCode(fmt.Errorf("variant_id cannot be empty"), ErrCodeMissingRequired)
		}
		update.VariantID = &trimmed
	}
	if req.Status != nil {
		status, err := normalizeStatus(*req.Status)
		if err != nil {
			return resp, err
		}
		update.Status = &status
		// Dropping out of verified clears the verification stamp.
		if existing.Status == string(models.StatusVerified) && status != string(models.StatusVerified) {
			update.ClearVerified = true
		}
		if status == string(models.StatusVerified) && existing.VerifiedAt == nil {
			now := update.UpdatedAt
			update.VerifiedAt = &now
		}
	}
	if req.Material != nil {
		value := strings.TrimSpace(*req.Material)
		update.Material = &value
	}
	if req.Color != nil {
		value := strings.TrimSpace(*req.Color)
		update.Color = &value
	}
	if req.Filename != nil {
		value := strings.TrimSpace(*req.Filename)
		update.Filename = &value
	}
	if req.SourceURL != nil {
		value := strings.TrimSpace(*req.SourceURL)
		update.SourceURL = &value
	}
	if req.ArchiveName != nil {
		value := strings.TrimSpace(*req.ArchiveName)
		update.ArchiveName = &value
	}
	if req.Description != nil {
		value := strings.TrimSpace(*req.Description)
		update.Description = &value
	}
	if req.FileSizeBytes != nil {
		if *req.FileSizeBytes < 0 {
			return resp, badRequestCode(fmt.Errorf("file_size_bytes must be non-negative"), ErrCodeInvalidFileSize)
		}
		update.FileSizeBytes = req.FileSizeBytes
	}
	if req.DownloadedAt != nil {
		update.DownloadedAt = req.DownloadedAt
	}
	if req.Notes != nil {
		value := strings.TrimSpace(*req.Notes)
		update.Notes = &value
	}
	if req.UID != nil {
		value := strings.TrimSpace(*req.UID)
		if value != "" {
			value, err = normalizeUID(value)
			if err != nil {
				return resp, err
			}
		}
		update.UID = &value
	}
	if req.BlobID != nil {
		value := strings.TrimSpace(*req.BlobID)
		if value != "" && !validateBlobID(value) {
			return resp, badRequestCode(fmt.Errorf("invalid blob_id"), ErrCodeInvalidID)
		}
		update.BlobID = &value
	}

	if err := s.store.UpdateRecord(ctx, id, update); err != nil {
		return resp, storeFailure(err)
	}

	return s.Get(ctx, id)
}

// List returns records matching a filter with labels attached.
func (s *RecordService) List(ctx context.Context, filter store.ListFilter) ([]api.RecordResponse, error) {
	records, err := s.store.ListRecords(ctx, filter)
	if err != nil {
		if isInvalidSearchQuery(err) {
			return nil, badRequestCode(fmt.Errorf("invalid search query"), ErrCodeInvalidQuery)
		}
		return nil, storeFailure(err)
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	labelMap, err := s.store.ListLabelsForRecords(ctx, ids)
	if err != nil {
		return nil, storeFailure(err)
	}

	responses := make([]api.RecordResponse, 0, len(records))
	for _, rec := range records {
		labels := labelMap[rec.ID]
		if labels == nil {
			labels = []string{}
		}
		rec.Labels = labels
		responses = append(responses, api.RecordResponse{Record: rec, Labels: labels})
	}
	return responses, nil
}

// Verify flips a record's verification state.
func (s *RecordService) Verify(ctx context.Context, id string, verified bool) (api.RecordResponse, error) {
	var resp api.RecordResponse

	existing, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return resp, storeFailure(err)
	}
	if existing == nil {
		return resp, notFound(fmt.Errorf("record %s not found", id))
	}

	now := time.Now().UTC()
	update := store.RecordUpdate{UpdatedAt: now}
	if verified {
		status := string(models.StatusVerified)
		update.Status = &status
		update.VerifiedAt = &now
	} else {
		status := defaultStatus
		update.Status = &status
		update.ClearVerified = true
	}

	if err := s.store.UpdateRecord(ctx, id, update); err != nil {
		return resp, storeFailure(err)
	}

	return s.Get(ctx, id)
}

// AddLabels attaches labels and returns the full label set.
func (s *RecordService) AddLabels(ctx context.Context, id string, values []string) ([]string, error) {
	labels, err := normalizeLabels(values)
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, badRequestCode(fmt.Errorf("labels are required"), ErrCodeMissingRequired)
	}

	if err := s.requireRecord(ctx, id); err != nil {
		return nil, err
	}
	if err := s.store.AddLabels(ctx, id, labels); err != nil {
		return nil, storeFailure(err)
	}
	result, err := s.store.ListLabels(ctx, id)
	if err != nil {
		return nil, storeFailure(err)
	}
	return result, nil
}

// RemoveLabels detaches labels and returns the remaining label set.
func (s *RecordService) RemoveLabels(ctx context.Context, id string, values []string) ([]string, error) {
	labels, err := normalizeLabels(values)
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, badRequestCode(fmt.Errorf("labels are required"), ErrCodeMissingRequired)
	}

	if err := s.requireRecord(ctx, id); err != nil {
		return nil, err
	}
	if err := s.store.RemoveLabels(ctx, id, labels); err != nil {
		return nil, storeFailure(err)
	}
	result, err := s.store.ListLabels(ctx, id)
	if err != nil {
		return nil, storeFailure(err)
	}
	return result, nil
}

func (s *RecordService) requireRecord(ctx context.Context, id string) error {
	exists, err := s.store.RecordExists(id)
	if err != nil {
		return storeFailure(err)
	}
	if !exists {
		return notFound(fmt.Errorf("record %s not found", id))
	}
	return nil
}
