package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/labelsmith/labelsmith/pkg/errors"
	"github.com/labelsmith/labelsmith/pkg/library"
	"github.com/labelsmith/labelsmith/pkg/render"
	"github.com/labelsmith/labelsmith/pkg/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := log.New(io.Discard)
	lib, err := library.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	srv, err := New(Config{
		Sessions: session.NewMemoryStore(time.Minute),
		Library:  lib,
		Measurer: render.NewHeadless(render.HeadlessOptions{EstimateOnly: true, Logger: logger}),
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func createSession(t *testing.T, h http.Handler, mediaID string) *session.Session {
	t.Helper()
	body := ""
	if mediaID != "" {
		body = `{"media":"` + mediaID + `"}`
	}
	rec := doRequest(t, h, http.MethodPost, "/v1/sessions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var sess session.Session
	decodeBody(t, rec, &sess)
	return &sess
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := doRequest(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("body = %q, want it to report ok", rec.Body.String())
	}
}

func TestCapabilities(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := doRequest(t, h, http.MethodGet, "/v1/capabilities", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var caps struct {
		ItemProperties map[string]any `json:"itemProperties"`
	}
	decodeBody(t, rec, &caps)
	if len(caps.ItemProperties) == 0 {
		t.Error("capabilities report no item properties")
	}
}

func TestSessionLifecycle(t *testing.T) {
	h := newTestServer(t).Handler()

	sess := createSession(t, h, "tape-12")
	if sess.ID == "" {
		t.Fatal("created session has no id")
	}
	if sess.Media != "tape-12" {
		t.Errorf("media = %q, want tape-12", sess.Media)
	}

	rec := doRequest(t, h, http.MethodGet, "/v1/sessions/"+sess.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}
	var got session.Session
	decodeBody(t, rec, &got)
	if got.ID != sess.ID {
		t.Errorf("get returned id %q, want %q", got.ID, sess.ID)
	}

	rec = doRequest(t, h, http.MethodDelete, "/v1/sessions/"+sess.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	rec = doRequest(t, h, http.MethodGet, "/v1/sessions/"+sess.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	var errResp errorResponse
	decodeBody(t, rec, &errResp)
	if errResp.Code != string(errors.ErrCodeSessionNotFound) {
		t.Errorf("error code = %q, want %q", errResp.Code, errors.ErrCodeSessionNotFound)
	}
}

func TestSessionCreateUnknownMedia(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := doRequest(t, h, http.MethodPost, "/v1/sessions", `{"media":"tape-999"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var errResp errorResponse
	decodeBody(t, rec, &errResp)
	if errResp.Code != string(errors.ErrCodeInvalidMedia) {
		t.Errorf("error code = %q, want %q", errResp.Code, errors.ErrCodeInvalidMedia)
	}
}

func TestSessionActions(t *testing.T) {
	h := newTestServer(t).Handler()
	sess := createSession(t, h, "tape-12")

	batch := `[{"action":"add_item","itemType":"text","item":{"content":"Hello"}}]`
	rec := doRequest(t, h, http.MethodPost, "/v1/sessions/"+sess.ID+"/actions", batch)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var out batchResponse
	decodeBody(t, rec, &out)
	if len(out.Errors) != 0 {
		t.Fatalf("batch errors: %v", out.Errors)
	}
	if got := len(out.Session.Items); got != 1 {
		t.Fatalf("session has %d items, want 1", got)
	}
	if got := out.Session.Items[0].Text; got != "Hello" {
		t.Errorf("item text = %q, want Hello", got)
	}

	// The result must be persisted, not only echoed.
	rec = doRequest(t, h, http.MethodGet, "/v1/sessions/"+sess.ID, "")
	var stored session.Session
	decodeBody(t, rec, &stored)
	if got := len(stored.Items); got != 1 {
		t.Errorf("stored session has %d items, want 1", got)
	}
}

func TestSessionActionsBadBatch(t *testing.T) {
	h := newTestServer(t).Handler()
	sess := createSession(t, h, "")

	rec := doRequest(t, h, http.MethodPost, "/v1/sessions/"+sess.ID+"/actions", `{"nonsense":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestSessionActionsUnknownSession(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := doRequest(t, h, http.MethodPost, "/v1/sessions/no-such-id/actions", `[]`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSessionPreviewPNG(t *testing.T) {
	h := newTestServer(t).Handler()
	sess := createSession(t, h, "tape-12")

	batch := `[{"action":"add_item","itemType":"shape","item":{"shapeType":"rect","filled":true}}]`
	rec := doRequest(t, h, http.MethodPost, "/v1/sessions/"+sess.ID+"/actions", batch)
	if rec.Code != http.StatusOK {
		t.Fatalf("actions: status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodGet, "/v1/sessions/"+sess.ID+"/preview.png", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("preview: status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("body is not a PNG")
	}
}

func TestSessionPreviewBadScale(t *testing.T) {
	h := newTestServer(t).Handler()
	sess := createSession(t, h, "")

	rec := doRequest(t, h, http.MethodGet, "/v1/sessions/"+sess.ID+"/preview.png?scale=100", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestLayoutLifecycle(t *testing.T) {
	h := newTestServer(t).Handler()

	layout := `{"media":"tape-12","items":[{"type":"text","text":"Shelf A"}]}`
	rec := doRequest(t, h, http.MethodPut, "/v1/layouts/shelf-a", layout)
	if rec.Code != http.StatusOK {
		t.Fatalf("put: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var doc library.Document
	decodeBody(t, rec, &doc)
	if doc.Name != "shelf-a" {
		t.Errorf("name = %q, want shelf-a", doc.Name)
	}
	if len(doc.Items) != 1 || doc.Items[0].ID == "" {
		t.Errorf("import did not fill item ids: %+v", doc.Items)
	}

	rec = doRequest(t, h, http.MethodGet, "/v1/layouts/shelf-a", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodGet, "/v1/layouts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	var infos []library.Info
	decodeBody(t, rec, &infos)
	if len(infos) != 1 || infos[0].Name != "shelf-a" || infos[0].ItemCount != 1 {
		t.Errorf("list = %+v, want one entry for shelf-a with 1 item", infos)
	}

	rec = doRequest(t, h, http.MethodDelete, "/v1/layouts/shelf-a", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	rec = doRequest(t, h, http.MethodGet, "/v1/layouts/shelf-a", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	var errResp errorResponse
	decodeBody(t, rec, &errResp)
	if errResp.Code != string(errors.ErrCodeLayoutNotFound) {
		t.Errorf("error code = %q, want %q", errResp.Code, errors.ErrCodeLayoutNotFound)
	}
}

func TestLayoutPutRejectsBadName(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := doRequest(t, h, http.MethodPut, "/v1/layouts/.hidden", `{"items":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestLayoutPutRejectsBadBody(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := doRequest(t, h, http.MethodPut, "/v1/layouts/ok-name", `{"media":"Tape 12","items":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestStatusForCode(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidPayload, http.StatusBadRequest},
		{errors.ErrCodeInvalidMedia, http.StatusBadRequest},
		{errors.ErrCodeSessionNotFound, http.StatusNotFound},
		{errors.ErrCodeLayoutNotFound, http.StatusNotFound},
		{errors.ErrCodeStoreUnavailable, http.StatusServiceUnavailable},
		{errors.ErrCodeRenderUnavailable, http.StatusServiceUnavailable},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusForCode(tt.code); got != tt.want {
			t.Errorf("statusForCode(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
