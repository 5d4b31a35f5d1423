package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "TAGVAULT_HTTP_TIMEOUT"
)

// Client is a simple HTTP client for the tagvault API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: httpTimeoutFromEnv()},
	}
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func (c *Client) GetInfo(ctx context.Context) (InfoResponse, error) {
	var resp InfoResponse
	err := c.do(ctx, http.MethodGet, "/v1/info", nil, nil, &resp)
	return resp, err
}

func (c *Client) CreateRecord(ctx context.Context, req RecordCreateRequest) (RecordResponse, error) {
	var resp RecordResponse
	err := c.do(ctx, http.MethodPost, "/v1/records", nil, req, &resp)
	return resp, err
}

func (c *Client) BatchCreate(ctx context.Context, req []RecordCreateRequest) ([]RecordResponse, error) {
	var resp []RecordResponse
	err := c.do(ctx, http.MethodPost, "/v1/records/batch", nil, req, &resp)
	return resp, err
}

func (c *Client) GetRecord(ctx context.Context, id string) (RecordResponse, error) {
	var resp RecordResponse
	err := c.do(ctx, http.MethodGet, "/v1/records/"+url.PathEscape(id), nil, nil, &resp)
	return resp, err
}

func (c *Client) UpdateRecord(ctx context.Context, id string, req RecordUpdateRequest) (RecordResponse, error) {
	var resp RecordResponse
	err := c.do(ctx, http.MethodPatch, "/v1/records/"+url.PathEscape(id), nil, req, &resp)
	return resp, err
}

func (c *Client) ListRecords(ctx context.Context, query url.Values) ([]RecordResponse, error) {
	var resp []RecordResponse
	err := c.do(ctx, http.MethodGet, "/v1/records", query, nil, &resp)
	return resp, err
}

func (c *Client) VerifyRecord(ctx context.Context, id string, req RecordVerifyRequest) (RecordResponse, error) {
	var resp RecordResponse
	err := c.do(ctx, http.MethodPost, "/v1/records/"+url.PathEscape(id)+"/verify", nil, req, &resp)
	return resp, err
}

func (c *Client) GetRecordDoc(ctx context.Context, id string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/records/"+url.PathEscape(id)+"/doc", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", decodeError(resp)
	}
	body, err := io.ReadAll(resp.Body)
	return string(body), err
}

func (c *Client) AddLabels(ctx context.Context, id string, req LabelsRequest) ([]string, error) {
	var resp []string
	err := c.do(ctx, http.MethodPost, "/v1/records/"+url.PathEscape(id)+"/labels", nil, req, &resp)
	return resp, err
}

func (c *Client) RemoveLabels(ctx context.Context, id string, req LabelsRequest) ([]string, error) {
	var resp []string
	err := c.do(ctx, http.MethodDelete, "/v1/records/"+url.PathEscape(id)+"/labels", nil, req, &resp)
	return resp, err
}

func (c *Client) ListLabels(ctx context.Context, id string) ([]string, error) {
	var resp []string
	err := c.do(ctx, http.MethodGet, "/v1/records/"+url.PathEscape(id)+"/labels", nil, nil, &resp)
	return resp, err
}

func (c *Client) ListAllLabels(ctx context.Context) ([]string, error) {
	var resp []string
	err := c.do(ctx, http.MethodGet, "/v1/labels", nil, nil, &resp)
	return resp, err
}

// UploadBlob streams dump file content to the vault and returns its
// registered metadata.
func (c *Client) UploadBlob(ctx context.Context, filename string, content io.Reader) (BlobResponse, error) {
	var resp BlobResponse
	query := url.Values{}
	if filename != "" {
		query.Set("filename", filename)
	}
	endpoint := c.baseURL + "/v1/blobs"
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, content)
	if err != nil {
		return resp, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	httpResp, err := c.http.Do(req)
	if err != nil {
		return resp, err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode >= 400 {
		return resp, decodeError(httpResp)
	}
	err = json.NewDecoder(httpResp.Body).Decode(&resp)
	return resp, err
}

// DownloadBlob streams blob content to a writer.
func (c *Client) DownloadBlob(ctx context.Context, id string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/blobs/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

func (c *Client) GetBlob(ctx context.Context, id string) (BlobResponse, error) {
	var resp BlobResponse
	err := c.do(ctx, http.MethodGet, "/v1/blobs/"+url.PathEscape(id)+"/meta", nil, nil, &resp)
	return resp, err
}

// VerifyBlob re-hashes vaulted content against its recorded digest.
func (c *Client) VerifyBlob(ctx context.Context, id string) (BlobVerifyResponse, error) {
	var resp BlobVerifyResponse
	err := c.do(ctx, http.MethodPost, "/v1/blobs/"+url.PathEscape(id)+"/verify", nil, nil, &resp)
	return resp, err
}

// GCBlobs removes blobs no record references.
func (c *Client) GCBlobs(ctx context.Context, dryRun bool) (BlobGCResponse, error) {
	var resp BlobGCResponse
	query := url.Values{}
	if dryRun {
		query.Set("dry_run", "true")
	}
	err := c.do(ctx, http.MethodPost, "/v1/blobs/gc", query, nil, &resp)
	return resp, err
}

// Export streams JSONL export to a writer.
func (c *Client) Export(ctx context.Context, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/export", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

// ImportStream sends JSONL import records to the import endpoint.
// mode selects the duplicate handling (merge, skip or strict); empty
// means the server default.
func (c *Client) ImportStream(ctx context.Context, records io.Reader, dryRun bool, mode string) (ImportResponse, error) {
	var resp ImportResponse
	query := url.Values{}
	if dryRun {
		query.Set("dry_run", "true")
	}
	if mode != "" {
		query.Set("mode", mode)
	}
	endpoint := c.baseURL + "/v1/import"
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, records)
	if err != nil {
		return resp, err
	}
	req.Header.Set("Content-Type", "application/x-ndjson")

	httpResp, err := c.http.Do(req)
	if err != nil {
		return resp, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 400 {
		return resp, decodeError(httpResp)
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return resp, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		return &APIError{
			Status:    resp.StatusCode,
			Code:      errResp.Code,
			ErrorCode: errResp.ErrorCode,
			Message:   errResp.Error,
		}
	}
	return &APIError{Status: resp.StatusCode}
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
