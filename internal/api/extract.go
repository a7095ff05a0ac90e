package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/MikeSquared-Agency/faqbase/internal/extractor"
)

type extractResponse struct {
	Success bool               `json:"success"`
	Count   int                `json:"count"`
	Pairs   []extractor.QAPair `json:"pairs"`
}

// extractQA runs the transcript extractor over an uploaded file. An
// optional min_confidence form or query value drops weaker pairs.
func (s *Server) extractQA(w http.ResponseWriter, r *http.Request) {
	data, _, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	if data == nil {
		writeError(w, http.StatusBadRequest, "ファイルがアップロードされていません")
		return
	}

	pairs := extractor.Extract(string(data))
	if v := r.FormValue("min_confidence"); v != "" {
		minConf, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid min_confidence")
			return
		}
		pairs = extractor.Filter(pairs, minConf)
	}

	writeJSON(w, http.StatusOK, extractResponse{Success: true, Count: len(pairs), Pairs: pairs})
}

// readUpload parses a multipart or url-encoded form bounded by
// MaxUploadBytes and returns the "file" part, if any, with its file name.
// On a parse failure it writes the error response and returns ok=false.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (data []byte, name string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	err := r.ParseMultipartForm(s.opts.MaxUploadBytes)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "ファイルサイズが大きすぎます")
			return nil, "", false
		}
		writeError(w, http.StatusBadRequest, "invalid form: "+err.Error())
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, "", true
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file: "+err.Error())
		return nil, "", false
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read file: "+err.Error())
		return nil, "", false
	}
	if data == nil {
		data = []byte{}
	}
	return data, header.Filename, true
}
