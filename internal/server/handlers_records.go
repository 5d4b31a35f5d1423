package server

import (
	"fmt"
	"net/http"
	"strings"

	"tagvault/internal/api"
	"tagvault/internal/attribution"
	"tagvault/internal/models"
	"tagvault/internal/store"
)

const maxBatchCreate = 500

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req api.RecordCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	resp, err := s.service.Create(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleBatchCreate(w http.ResponseWriter, r *http.Request) {
	var reqs []api.RecordCreateRequest
	if !s.decodeJSONReq(w, r, &reqs) {
		return
	}
	if len(reqs) == 0 {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("at least one record is required"), ErrCodeMissingRequired))
		return
	}
	if len(reqs) > maxBatchCreate {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("batch exceeds %d records", maxBatchCreate), ErrCodeInvalidArgument))
		return
	}

	responses := make([]api.RecordResponse, 0, len(reqs))
	for i, req := range reqs {
		resp, err := s.service.Create(r.Context(), req)
		if err != nil {
			s.writeServiceError(w, r, makeAPIError(httpStatusFromError(err), errorCode(httpStatusFromError(err), err), errorNumericCode(httpStatusFromError(err), err), fmt.Errorf("record %d: %w", i+1, err)))
			return
		}
		responses = append(responses, resp)
	}

	s.writeJSON(w, http.StatusCreated, responses)
}

// handleGetRecord resolves a record id, or a bare tag UID to the
// newest record for that tag.
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.PathValue("id"))

	var (
		resp api.RecordResponse
		err  error
	)
	switch {
	case validateID(key):
		resp, err = s.service.Get(r.Context(), key)
	default:
		uid, uidErr := normalizeUID(key)
		if uidErr != nil {
			s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("invalid id"), ErrCodeInvalidID))
			return
		}
		resp, err = s.service.GetByUID(r.Context(), uid)
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}

	var req api.RecordUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	resp, err := s.service.Update(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVerifyRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}

	var req api.RecordVerifyRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	resp, err := s.service.Verify(r.Context(), id, req.Verified)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleRecordDoc serves the attribution document rendering of a record.
func (s *Server) handleRecordDoc(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}

	resp, err := s.service.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, attribution.Render(&resp.Record))
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilterFromQuery(r)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	responses, err := s.service.List(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, responses)
}

func listFilterFromQuery(r *http.Request) (store.ListFilter, error) {
	filter := store.ListFilter{
		Materials: splitCSV(r.URL.Query().Get("material")),
		Colors:    splitCSV(r.URL.Query().Get("color")),
		Archive:   r.URL.Query().Get("archive"),
		VariantID: r.URL.Query().Get("variant_id"),
		Labels:    splitCSV(r.URL.Query().Get("labels")),
		LabelsAny: splitCSV(r.URL.Query().Get("labels_any")),
		Search:    r.URL.Query().Get("search"),
	}

	statuses := splitCSV(r.URL.Query().Get("status"))
	if len(statuses) == 1 && statuses[0] == "all" {
		statuses = nil
	} else if len(statuses) == 0 {
		// Retired and rejected records are hidden unless asked for.
		statuses = models.ActiveRecordStatusStrings()
	} else {
		normalized := make([]string, 0, len(statuses))
		for _, status := range statuses {
			value, err := normalizeStatus(status)
			if err != nil {
				return filter, err
			}
			normalized = append(normalized, value)
		}
		statuses = normalized
	}
	filter.Statuses = statuses

	if uid := r.URL.Query().Get("uid"); uid != "" {
		normalized, err := normalizeUID(uid)
		if err != nil {
			return filter, err
		}
		filter.UID = normalized
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		return filter, err
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		return filter, err
	}
	filter.Limit = limit
	filter.Offset = offset

	return filter, nil
}

func (s *Server) handleListRecordLabels(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}

	if err := s.service.requireRecord(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	labels, err := s.store.ListLabels(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, labels)
}

func (s *Server) handleAddRecordLabels(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}

	var req api.LabelsRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	labels, err := s.service.AddLabels(r.Context(), id, req.Labels)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, labels)
}

func (s *Server) handleRemoveRecordLabels(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}

	var req api.LabelsRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	labels, err := s.service.RemoveLabels(r.Context(), id, req.Labels)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, labels)
}

func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	labels, err := s.store.ListAllLabels(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, labels)
}
