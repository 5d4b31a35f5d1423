package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check, info and metrics.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/info", s.handleInfo)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Records collection.
	mux.HandleFunc("POST /v1/records", s.handleCreateRecord)
	mux.HandleFunc("GET /v1/records", s.handleListRecords)
	mux.HandleFunc("POST /v1/records/batch", s.handleBatchCreate)

	// Single record.
	mux.HandleFunc("GET /v1/records/{id}", s.handleGetRecord)
	mux.HandleFunc("PATCH /v1/records/{id}", s.handleUpdateRecord)
	mux.HandleFunc("POST /v1/records/{id}/verify", s.handleVerifyRecord)
	mux.HandleFunc("GET /v1/records/{id}/doc", s.handleRecordDoc)

	// Record labels.
	mux.HandleFunc("GET /v1/records/{id}/labels", s.handleListRecordLabels)
	mux.HandleFunc("POST /v1/records/{id}/labels", s.handleAddRecordLabels)
	mux.HandleFunc("DELETE /v1/records/{id}/labels", s.handleRemoveRecordLabels)

	mux.HandleFunc("GET /v1/labels", s.handleLabels)

	// Vaulted dump files.
	mux.HandleFunc("POST /v1/blobs", s.handleUploadBlob)
	mux.HandleFunc("GET /v1/blobs/{id}", s.handleDownloadBlob)
	mux.HandleFunc("GET /v1/blobs/{id}/meta", s.handleBlobMeta)
	mux.HandleFunc("POST /v1/blobs/{id}/verify", s.handleVerifyBlob)
	mux.HandleFunc("POST /v1/blobs/gc", s.handleBlobGC)

	// Import/Export.
	mux.HandleFunc("GET /v1/export", s.handleExport)
	mux.HandleFunc("POST /v1/import", s.handleImport)

	return s.withRequestLogging(s.withMetrics(mux))
}
