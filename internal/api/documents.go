package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/MikeSquared-Agency/faqbase/internal/store"
)

const documentNotFound = "ドキュメントが見つかりません"

func (s *Server) searchDocuments(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusOK, []store.Document{})
		return
	}
	docs, err := s.store.SearchDocuments(r.Context(), q, store.DefaultDocSearchLimit)
	if err != nil {
		s.writeStoreError(w, r, err, documentNotFound)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.ListDocuments(r.Context(),
		queryInt(r, "limit", store.DefaultListLimit),
		queryInt(r, "offset", 0),
	)
	if err != nil {
		s.writeStoreError(w, r, err, documentNotFound)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// createDocument accepts form fields, or an uploaded file whose content
// replaces the content field and whose base name is the default title.
func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	data, name, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	in := store.DocumentInput{
		Title:    strings.TrimSpace(r.FormValue("title")),
		Content:  r.FormValue("content"),
		Category: strings.TrimSpace(r.FormValue("category")),
		Tags:     strings.TrimSpace(r.FormValue("tags")),
	}
	if data != nil {
		in.Content = string(data)
		if in.Title == "" {
			in.Title = strings.TrimSuffix(name, filepath.Ext(name))
		}
	}
	if in.Title == "" || strings.TrimSpace(in.Content) == "" {
		writeError(w, http.StatusBadRequest, "タイトルとコンテンツが必要です")
		return
	}

	doc, err := s.store.CreateDocument(r.Context(), in)
	if err != nil {
		s.writeStoreError(w, r, err, documentNotFound)
		return
	}
	s.audit(r, "document created", "id", doc.ID)
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteDocument(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err, documentNotFound)
		return
	}
	s.audit(r, "document deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "ドキュメントが削除されました"})
}
