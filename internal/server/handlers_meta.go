package server

import (
	"net/http"

	"tagvault/internal/api"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.store.GetStoreInfo(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	resp := api.InfoResponse{
		RecordPrefix:  s.recordPrefix,
		SchemaVersion: info.SchemaVersion,
		RecordCounts:  info.RecordCounts,
		TotalRecords:  info.TotalRecords,
	}

	s.writeJSON(w, http.StatusOK, resp)
}
