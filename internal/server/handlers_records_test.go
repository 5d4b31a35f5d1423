package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tagvault/internal/api"
)

func doJSON(t *testing.T, srv *Server, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)
	return w
}

func createTestRecord(t *testing.T, srv *Server, payload map[string]any) api.RecordResponse {
	t.Helper()
	w := doJSON(t, srv, http.MethodPost, "/v1/records", payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("create record: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var resp api.RecordResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp
}

func TestCreateAndGetRecord(t *testing.T) {
	srv := newTestServer(t)

	created := createTestRecord(t, srv, map[string]any{
		"variant_id":      "3DE605F4",
		"material":        "PLA Basic",
		"color":           "Red",
		"filename":        "3DE605F4_dump.bin",
		"file_size_bytes": 192,
		"uid":             "1d8e4f2a",
		"downloaded_at":   "2025-08-28",
		"labels":          []string{"Proxmark", "batch-1"},
	})

	if !strings.HasPrefix(created.ID, "td-") {
		t.Fatalf("expected generated id with td- prefix, got %q", created.ID)
	}
	if created.Status != "pending" {
		t.Fatalf("expected default status pending, got %q", created.Status)
	}
	if created.UID != "1D8E4F2A" {
		t.Fatalf("expected normalized uid, got %q", created.UID)
	}

	w := doJSON(t, srv, http.MethodGet, "/v1/records/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var got api.RecordResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if got.VariantID != "3DE605F4" || got.Color != "Red" || got.FileSizeBytes != 192 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if len(got.Labels) != 2 || got.Labels[0] != "batch-1" || got.Labels[1] != "proxmark" {
		t.Fatalf("expected normalized sorted labels, got %v", got.Labels)
	}
}

func TestCreateRecordValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		payload  map[string]any
		wantCode int
	}{
		{name: "missing variant_id", payload: map[string]any{"color": "Red"}, wantCode: ErrCodeMissingRequired},
		{name: "bad status", payload: map[string]any{"variant_id": "A", "status": "archived"}, wantCode: ErrCodeInvalidStatus},
		{name: "bad uid", payload: map[string]any{"variant_id": "A", "uid": "xyz"}, wantCode: ErrCodeInvalidUID},
		{name: "negative size", payload: map[string]any{"variant_id": "A", "file_size_bytes": -1}, wantCode: ErrCodeInvalidFileSize},
		{name: "bad explicit id", payload: map[string]any{"variant_id": "A", "id": "nope"}, wantCode: ErrCodeInvalidID},
		{name: "bad downloaded_at", payload: map[string]any{"variant_id": "A", "downloaded_at": "28/08/2025"}, wantCode: ErrCodeInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, srv, http.MethodPost, "/v1/records", tt.payload)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
			}
			var errResp api.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.ErrorCode != tt.wantCode {
				t.Fatalf("expected error_code %d, got %d (%s)", tt.wantCode, errResp.ErrorCode, w.Body.String())
			}
		})
	}
}

func TestCreateRecordExplicitIDConflict(t *testing.T) {
	srv := newTestServer(t)

	createTestRecord(t, srv, map[string]any{"variant_id": "A", "id": "td-ab12"})

	w := doJSON(t, srv, http.MethodPost, "/v1/records", map[string]any{"variant_id": "B", "id": "td-ab12"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d (%s)", w.Code, w.Body.String())
	}
	var errResp api.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.ErrorCode != ErrCodeRecordIDExists {
		t.Fatalf("expected error_code %d, got %d", ErrCodeRecordIDExists, errResp.ErrorCode)
	}
}

func TestUpdateRecordPartial(t *testing.T) {
	srv := newTestServer(t)
	created := createTestRecord(t, srv, map[string]any{
		"variant_id": "3DE605F4",
		"color":      "Red",
		"material":   "PLA Basic",
	})

	w := doJSON(t, srv, http.MethodPatch, "/v1/records/"+created.ID, map[string]any{
		"color": "Jade White",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var updated api.RecordResponse
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode update response: %v", err)
	}
	if updated.Color != "Jade White" {
		t.Fatalf("expected updated color, got %q", updated.Color)
	}
	if updated.Material != "PLA Basic" {
		t.Fatalf("expected material untouched, got %q", updated.Material)
	}
}

func TestVerifyRecordLifecycle(t *testing.T) {
	srv := newTestServer(t)
	created := createTestRecord(t, srv, map[string]any{"variant_id": "3DE605F4"})

	w := doJSON(t, srv, http.MethodPost, "/v1/records/"+created.ID+"/verify", map[string]any{"verified": true})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var verified api.RecordResponse
	if err := json.Unmarshal(w.Body.Bytes(), &verified); err != nil {
		t.Fatalf("decode verify response: %v", err)
	}
	if verified.Status != "verified" {
		t.Fatalf("expected status verified, got %q", verified.Status)
	}
	if verified.VerifiedAt == nil {
		t.Fatal("expected verified_at to be set")
	}

	w = doJSON(t, srv, http.MethodPost, "/v1/records/"+created.ID+"/verify", map[string]any{"verified": false})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var reverted api.RecordResponse
	if err := json.Unmarshal(w.Body.Bytes(), &reverted); err != nil {
		t.Fatalf("decode unverify response: %v", err)
	}
	if reverted.Status != "pending" {
		t.Fatalf("expected status pending, got %q", reverted.Status)
	}
	if reverted.VerifiedAt != nil {
		t.Fatalf("expected verified_at cleared, got %v", reverted.VerifiedAt)
	}
}

func TestRecordDocEndpoint(t *testing.T) {
	srv := newTestServer(t)
	created := createTestRecord(t, srv, map[string]any{
		"variant_id":      "3DE605F4",
		"color":           "Red",
		"material":        "PLA Basic",
		"filename":        "3DE605F4_dump.bin",
		"file_size_bytes": 192,
		"downloaded_at":   "2025-08-28",
	})

	w := doJSON(t, srv, http.MethodGet, "/v1/records/"+created.ID+"/doc", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Fatalf("expected markdown content type, got %q", ct)
	}
	body := w.Body.String()
	if !strings.HasPrefix(body, "# 3DE605F4 - Red") {
		t.Fatalf("unexpected doc title: %q", body)
	}
	if !strings.Contains(body, "- **File Size**: 192 bytes") {
		t.Fatalf("expected file size bullet in doc:\n%s", body)
	}
	if !strings.Contains(body, "- **Downloaded**: Thu Aug 28 2025") {
		t.Fatalf("expected download date bullet in doc:\n%s", body)
	}
}

func TestListRecordsStatusFiltering(t *testing.T) {
	srv := newTestServer(t)
	createTestRecord(t, srv, map[string]any{"variant_id": "A", "status": "pending"})
	createTestRecord(t, srv, map[string]any{"variant_id": "B", "status": "verified"})
	createTestRecord(t, srv, map[string]any{"variant_id": "C", "status": "rejected"})
	createTestRecord(t, srv, map[string]any{"variant_id": "D", "status": "retired"})

	listRecords := func(query string) []api.RecordResponse {
		t.Helper()
		w := doJSON(t, srv, http.MethodGet, "/v1/records"+query, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("list %q: expected 200, got %d (%s)", query, w.Code, w.Body.String())
		}
		var got []api.RecordResponse
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode list response: %v", err)
		}
		return got
	}

	if got := listRecords(""); len(got) != 2 {
		t.Fatalf("default list should hide rejected and retired, got %d records", len(got))
	}
	if got := listRecords("?status=all"); len(got) != 4 {
		t.Fatalf("status=all should return everything, got %d records", len(got))
	}
	if got := listRecords("?status=rejected"); len(got) != 1 || got[0].VariantID != "C" {
		t.Fatalf("unexpected rejected list: %+v", got)
	}
}

func TestListRecordsInvalidQuery(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		query    string
		wantCode int
	}{
		{name: "invalid limit", query: "limit=abc", wantCode: ErrCodeInvalidQuery},
		{name: "negative offset", query: "offset=-1", wantCode: ErrCodeInvalidQuery},
		{name: "invalid status", query: "status=bogus", wantCode: ErrCodeInvalidStatus},
		{name: "invalid uid", query: "uid=zz", wantCode: ErrCodeInvalidUID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, srv, http.MethodGet, "/v1/records?"+tt.query, nil)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
			}
			var errResp api.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.ErrorCode != tt.wantCode {
				t.Fatalf("expected error_code %d, got %d", tt.wantCode, errResp.ErrorCode)
			}
		})
	}
}

func TestBatchCreateAllOrNothing(t *testing.T) {
	srv := newTestServer(t)

	payload := []map[string]any{
		{"variant_id": "A"},
		{"color": "Red"}, // missing variant_id
	}
	w := doJSON(t, srv, http.MethodPost, "/v1/records/batch", payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
	}
	var errResp api.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if !strings.Contains(errResp.Error, "record 2:") {
		t.Fatalf("expected error naming the failing record, got %q", errResp.Error)
	}

	payload = []map[string]any{
		{"variant_id": "A"},
		{"variant_id": "B"},
	}
	w = doJSON(t, srv, http.MethodPost, "/v1/records/batch", payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var created []api.RecordResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode batch response: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 created records, got %d", len(created))
	}
}

func TestRecordLabelEndpoints(t *testing.T) {
	srv := newTestServer(t)
	created := createTestRecord(t, srv, map[string]any{"variant_id": "A"})

	w := doJSON(t, srv, http.MethodPost, "/v1/records/"+created.ID+"/labels", map[string]any{
		"labels": []string{"Proxmark", "flipper"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("add labels: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var labels []string
	if err := json.Unmarshal(w.Body.Bytes(), &labels); err != nil {
		t.Fatalf("decode labels: %v", err)
	}
	if len(labels) != 2 || labels[0] != "flipper" || labels[1] != "proxmark" {
		t.Fatalf("unexpected labels after add: %v", labels)
	}

	w = doJSON(t, srv, http.MethodDelete, "/v1/records/"+created.ID+"/labels", map[string]any{
		"labels": []string{"flipper"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("remove labels: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &labels); err != nil {
		t.Fatalf("decode labels: %v", err)
	}
	if len(labels) != 1 || labels[0] != "proxmark" {
		t.Fatalf("unexpected labels after remove: %v", labels)
	}

	w = doJSON(t, srv, http.MethodGet, "/v1/labels", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list all labels: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &labels); err != nil {
		t.Fatalf("decode labels: %v", err)
	}
	if len(labels) != 1 || labels[0] != "proxmark" {
		t.Fatalf("unexpected catalog labels: %v", labels)
	}
}

func TestGetRecordByUID(t *testing.T) {
	srv := newTestServer(t)
	created := createTestRecord(t, srv, map[string]any{
		"variant_id": "3DE605F4",
		"uid":        "3DE605F4",
		"color":      "Red",
	})

	w := doJSON(t, srv, http.MethodGet, "/v1/records/3de605f4", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected uid lookup to resolve, got %d (%s)", w.Code, w.Body.String())
	}
	var resp api.RecordResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if resp.ID != created.ID {
		t.Fatalf("expected record %s, got %s", created.ID, resp.ID)
	}

	w = doJSON(t, srv, http.MethodGet, "/v1/records/AABBCCDD", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown uid, got %d", w.Code)
	}

	w = doJSON(t, srv, http.MethodGet, "/v1/records/not-an-id", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed key, got %d", w.Code)
	}
}

func TestGetMissingRecord(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/v1/records/td-zzzz", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (%s)", w.Code, w.Body.String())
	}
	var errResp api.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.ErrorCode != ErrCodeRecordNotFound {
		t.Fatalf("expected error_code %d, got %d", ErrCodeRecordNotFound, errResp.ErrorCode)
	}
}
