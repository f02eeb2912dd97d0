package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
)

var fixedNow = time.Date(2025, time.May, 10, 9, 30, 0, 0, time.UTC)

func newTestServer(t *testing.T, opts ...Option) (*Server, http.Handler) {
	t.Helper()
	n := 0
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDs(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	}
	s, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return s, s.Handler("")
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body == "" {
		rd = bytes.NewReader(nil)
	} else {
		rd = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestListEmptyIsArray(t *testing.T) {
	_, h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/todos", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestCreateAppliesDefaults(t *testing.T) {
	s, h := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/todos", `{"title":"Buy milk","description":"","dueDate":"","completed":false}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	it := decode[model.Item](t, rec)
	assert.Equal(t, "id-1", it.ID)
	assert.Equal(t, model.PriorityMedium, it.Priority)
	assert.Equal(t, "2025-05-11", it.DueDate.String(), "no due date means tomorrow")
	require.NotNil(t, it.CreatedAt)
	assert.True(t, it.CreatedAt.Equal(fixedNow))
	assert.Len(t, s.Items(), 1)
}

func TestCreateRejectsBadInput(t *testing.T) {
	_, h := newTestServer(t)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/todos", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/todos", `{"title":"x","priority":"urgent"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/todos", `{"title":"x","dueDate":"next week"}`).Code)
}

func TestUpdateKeepsDueDateAndCreatedAt(t *testing.T) {
	s, h := newTestServer(t)
	created := decode[model.Item](t, do(t, h, http.MethodPost, "/todos", `{"title":"A","priority":"low","dueDate":"2025-06-01"}`))

	later := fixedNow.Add(time.Hour)
	s.now = func() time.Time { return later }

	rec := do(t, h, http.MethodPut, "/todos/"+created.ID, `{"title":"A2","description":"more","priority":"high","dueDate":"","completed":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	it := decode[model.Item](t, rec)

	assert.Equal(t, created.ID, it.ID)
	assert.Equal(t, "A2", it.Title)
	assert.Equal(t, model.PriorityHigh, it.Priority)
	assert.Equal(t, "2025-06-01", it.DueDate.String())
	assert.True(t, it.Completed)
	assert.True(t, it.CreatedAt.Equal(fixedNow))
	assert.True(t, it.UpdatedAt.Equal(later))
}

func TestUnknownIDIsNotFound(t *testing.T) {
	_, h := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPut, "/todos/nope", `{"title":"x"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/todos/nope", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPatch, "/todos/nope/toggle", "").Code)
}

func TestToggleAndDelete(t *testing.T) {
	s, h := newTestServer(t)
	created := decode[model.Item](t, do(t, h, http.MethodPost, "/todos", `{"title":"A"}`))

	toggled := decode[model.Item](t, do(t, h, http.MethodPatch, "/todos/"+created.ID+"/toggle", ""))
	assert.True(t, toggled.Completed)
	toggled = decode[model.Item](t, do(t, h, http.MethodPatch, "/todos/"+created.ID+"/toggle", ""))
	assert.False(t, toggled.Completed)

	rec := do(t, h, http.MethodDelete, "/todos/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, s.Items())
}

func TestMethodNotAllowed(t *testing.T) {
	_, h := newTestServer(t)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPatch, "/todos", "").Code)
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler("http://localhost:3000")

	req := httptest.NewRequest(http.MethodOptions, "/todos", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSeed(t *testing.T) {
	s, _ := newTestServer(t)
	require.NoError(t, s.Seed())
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Learn Go", items[0].Title)
	assert.Equal(t, "2025-05-17", items[0].DueDate.String())
}

func TestSeedOnlyFillsEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	for range 3 {
		s, _ := newTestServer(t, WithPersister(jsonstore.New(path)))
		require.NoError(t, s.Seed())
		require.Len(t, s.Items(), 1, "restarts over the same data file keep one sample")
	}

	saved, err := jsonstore.New(path).Load()
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestSeedRollsBackOnSaveFailure(t *testing.T) {
	s, _ := newTestServer(t, WithPersister(brokenPersister{}))
	assert.ErrorContains(t, s.Seed(), "disk full")
	assert.Empty(t, s.Items())
}

func TestRequestsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	_, h := newTestServer(t, WithLogger(logging.New(&buf, "info", "logfmt")))

	do(t, h, http.MethodGet, "/todos", "")
	do(t, h, http.MethodDelete, "/todos/nope", "")

	out := buf.String()
	assert.Contains(t, out, "method=GET")
	assert.Contains(t, out, "status=200")
	assert.Contains(t, out, "path=/todos/nope")
	assert.Contains(t, out, "status=404")
}

func TestPersistsThroughJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	_, h := newTestServer(t, WithPersister(jsonstore.New(path)))
	do(t, h, http.MethodPost, "/todos", `{"title":"kept"}`)

	reopened, _ := newTestServer(t, WithPersister(jsonstore.New(path)))
	items := reopened.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "kept", items[0].Title)
}

type brokenPersister struct{}

func (brokenPersister) Load() ([]model.Item, error) { return nil, nil }
func (brokenPersister) Save([]model.Item) error     { return errors.New("disk full") }

func TestPersistFailureRollsBack(t *testing.T) {
	s, h := newTestServer(t, WithPersister(brokenPersister{}))
	rec := do(t, h, http.MethodPost, "/todos", `{"title":"lost"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, s.Items())
}
