package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/labelsmith/labelsmith/pkg/bridge"
	"github.com/labelsmith/labelsmith/pkg/errors"
	"github.com/labelsmith/labelsmith/pkg/pipeline"
	"github.com/labelsmith/labelsmith/pkg/session"
)

// maxPreviewScale bounds the scale query so one request cannot ask for
// an arbitrarily large raster.
const maxPreviewScale = 8.0

// sessionLocks serializes batches per session id. Entries are dropped
// when the session is deleted.
type sessionLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{m: make(map[string]*sync.Mutex)}
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	m, ok := l.m[id]
	if !ok {
		m = &sync.Mutex{}
		l.m[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func (l *sessionLocks) forget(id string) {
	l.mu.Lock()
	delete(l.m, id)
	l.mu.Unlock()
}

type createSessionRequest struct {
	Media string `json:"media"`
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSONBody(r, &req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidPayload, err, "decode session request"))
		return
	}

	profile := s.registry.Default()
	if req.Media != "" {
		p, err := s.registry.Get(req.Media)
		if err != nil {
			s.writeError(w, err)
			return
		}
		profile = p
	}

	sess := session.New(profile.ID)
	if err := s.sessions.Put(r.Context(), sess); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "store session"))
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// decodeJSONBody decodes an optional JSON body; an empty body leaves dst
// at its zero value.
func decodeJSONBody(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || stderrors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// loadSession fetches the session from the path id, writing the error
// response itself when it fails.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		if stderrors.Is(err, session.ErrNotFound) {
			s.writeError(w, errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id))
		} else {
			s.writeError(w, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "load session %s", id))
		}
		return nil, false
	}
	return sess, true
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "delete session %s", id))
		return
	}
	s.locks.forget(id)
	w.WriteHeader(http.StatusNoContent)
}

type batchResponse struct {
	Errors   []string         `json:"errors"`
	Warnings []string         `json:"warnings"`
	Session  *session.Session `json:"session"`
}

func (s *Server) handleSessionActions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, requestBodyLimit))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidPayload, err, "read action batch"))
		return
	}
	batch, err := bridge.ParseBatch(body)
	if err != nil {
		s.writeError(w, err)
		return
	}

	unlock := s.locks.lock(id)
	defer unlock()

	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	res, err := s.runBatch(r.Context(), sess, batch)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.sessions.Put(r.Context(), sess); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "store session %s", id))
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{
		Errors:   res.Errors,
		Warnings: res.Warnings,
		Session:  sess,
	})
}

// runBatch runs the batch through the shared runner and writes the
// outcome back into sess. The caller holds the session lock.
func (s *Server) runBatch(ctx context.Context, sess *session.Session, batch bridge.Batch) (bridge.Result, error) {
	st, res, err := s.runner.Apply(ctx, sessionState(sess), batch)
	if err != nil {
		return bridge.Result{}, err
	}

	sess.Media = st.Media
	sess.Items = st.Items
	sess.SelectedIDs = st.SelectedIDs
	return res, nil
}

// sessionState adapts a stored session to the runner's state shape.
func sessionState(sess *session.Session) pipeline.State {
	return pipeline.State{
		Media:       sess.Media,
		Items:       sess.Items,
		SelectedIDs: sess.SelectedIDs,
	}
}

func (s *Server) handleSessionPreview(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}

	var scale float64
	if q := r.URL.Query().Get("scale"); q != "" {
		parsed, err := strconv.ParseFloat(q, 64)
		if err != nil || parsed <= 0 || parsed > maxPreviewScale {
			s.writeError(w, errors.New(errors.ErrCodeInvalidFormat, "scale %q out of range", q))
			return
		}
		scale = parsed
	}

	png, _, err := s.runner.Preview(r.Context(), sessionState(sess), pipeline.PreviewOptions{
		Format: pipeline.FormatPNG,
		Scale:  scale,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	_, _ = w.Write(png)
}
