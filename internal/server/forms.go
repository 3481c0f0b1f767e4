// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sigil-dev/filesearch/internal/pipeline"
	fserr "github.com/sigil-dev/filesearch/pkg/errors"
)

// RootMessage is returned by GET /.
const RootMessage = "Gemini File Search API is running."

// ingestFailedMessage heads a partial upload response.
const ingestFailedMessage = "Some embeddings failed"

type errorBody struct {
	Error string `json:"error"`
}

type createStoreBody struct {
	Success bool   `json:"success"`
	StoreID string `json:"store_id"`
}

type uploadBody struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Details []string `json:"details,omitempty"`
	Files   []string `json:"files"`
	StoreID string   `json:"store_id,omitempty"`
}

type queryBody struct {
	Answer           string          `json:"llm_answer"`
	SupportingChunks []string        `json:"supporting_chunks"`
	Status           pipeline.Status `json:"status"`
}

// registerFormRoutes mounts the form and multipart endpoints used by the
// browser front end.
func (s *Server) registerFormRoutes() {
	s.router.Get("/", s.handleRoot)
	s.router.Post("/api/create-store", s.handleCreateStoreForm)
	s.router.Post("/api/upload", s.handleUpload)
	s.router.Post("/api/query", s.handleQueryForm)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": RootMessage})
}

func (s *Server) handleCreateStoreForm(w http.ResponseWriter, r *http.Request) {
	id, err := s.pipeline.CreateStore(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, createStoreBody{Success: true, StoreID: id})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "upload exceeds the size limit"})
			return
		}
		writeError(w, r, fserr.Wrap(err, fserr.CodeServerRequestInvalid, "parsing multipart form"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	storeID := strings.TrimSpace(r.FormValue("store_id"))
	if storeID == "" {
		writeError(w, r, fserr.New(fserr.CodeServerRequestInvalid, "store_id is required"))
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, r, fserr.New(fserr.CodeServerRequestInvalid, "files is required"))
		return
	}
	if len(headers) > s.cfg.MaxUploadFiles {
		writeError(w, r, fserr.Errorf(fserr.CodeServerRequestInvalid,
			"too many files: got %d, limit is %d per upload", len(headers), s.cfg.MaxUploadFiles))
		return
	}

	files := make([]pipeline.File, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			writeError(w, r, fserr.Wrap(err, fserr.CodeServerRequestInvalid, "opening upload", fserr.FieldFile(h.Filename)))
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeError(w, r, fserr.Wrap(err, fserr.CodeServerRequestInvalid, "reading upload", fserr.FieldFile(h.Filename)))
			return
		}
		files = append(files, pipeline.File{Name: h.Filename, Data: data})
	}

	res, err := s.pipeline.Ingest(r.Context(), storeID, files)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !res.Success() {
		writeJSON(w, http.StatusOK, uploadBody{
			Error:   ingestFailedMessage,
			Details: res.Errors,
			Files:   res.Files,
		})
		return
	}
	writeJSON(w, http.StatusOK, uploadBody{Success: true, Files: res.Files, StoreID: storeID})
}

func (s *Server) handleQueryForm(w http.ResponseWriter, r *http.Request) {
	question := r.FormValue("query")
	storeID := strings.TrimSpace(r.FormValue("store_id"))
	switch {
	case strings.TrimSpace(question) == "":
		writeError(w, r, fserr.New(fserr.CodeServerRequestInvalid, "query is required"))
		return
	case storeID == "":
		writeError(w, r, fserr.New(fserr.CodeServerRequestInvalid, "store_id is required"))
		return
	}

	res := s.pipeline.Query(r.Context(), storeID, question)
	writeJSON(w, http.StatusOK, queryBody{
		Answer:           res.Answer,
		SupportingChunks: res.SupportingChunks,
		Status:           res.Status,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to its HTTP status and a {"error": ...} body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := fserr.HTTPStatus(err)
	ev := zerolog.Ctx(r.Context()).Debug()
	if status >= http.StatusInternalServerError {
		ev = zerolog.Ctx(r.Context()).Error()
	}
	ev.Err(err).Str("code", string(fserr.CodeOf(err))).Int("status", status).Msg("request failed")
	writeJSON(w, status, errorBody{Error: err.Error()})
}
