package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/faqbase/internal/store"
)

func (s *Server) searchLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.store.SearchLogs(r.Context(), queryInt(r, "limit", store.DefaultLogLimit))
	if err != nil {
		s.writeStoreError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.Stats(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, st)
}
