package server

import (
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/labelsmith/labelsmith/pkg/errors"
	"github.com/labelsmith/labelsmith/pkg/io"
	"github.com/labelsmith/labelsmith/pkg/library"
)

func (s *Server) handleLayoutList(w http.ResponseWriter, r *http.Request) {
	infos, err := s.library.List(r.Context())
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "list layouts"))
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleLayoutGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	doc, err := s.library.Load(r.Context(), name)
	if err != nil {
		s.writeLibraryError(w, name, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleLayoutPut stores the uploaded layout under the path name. The
// body goes through the same import path as layout files, so ids are
// generated and per-type defaults filled before the document lands in
// the store.
func (s *Server) handleLayoutPut(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	layout, err := io.ReadJSON(http.MaxBytesReader(w, r.Body, requestBodyLimit))
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeInvalidPayload, err, "parse layout")
		}
		s.writeError(w, err)
		return
	}

	doc := &library.Document{Name: name, Media: layout.Media, Items: layout.Items}
	if err := s.library.Save(r.Context(), doc); err != nil {
		s.writeLibraryError(w, name, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleLayoutDelete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.library.Delete(r.Context(), name); err != nil {
		s.writeLibraryError(w, name, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeLibraryError maps store errors: the not-found sentinel becomes a
// 404, coded validation errors pass through, anything else is a store
// failure.
func (s *Server) writeLibraryError(w http.ResponseWriter, name string, err error) {
	switch {
	case stderrors.Is(err, library.ErrNotFound):
		s.writeError(w, errors.New(errors.ErrCodeLayoutNotFound, "layout %q not found", name))
	case errors.GetCode(err) != "":
		s.writeError(w, err)
	default:
		s.writeError(w, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "layout store"))
	}
}
