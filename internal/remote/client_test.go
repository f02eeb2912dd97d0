package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/model"
)

func newClientWithServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{APIURL: srv.URL + "/", Timeout: 2 * time.Second}
	return NewClient(cfg, nil)
}

func TestClient_List(t *testing.T) {
	c := newClientWithServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/todos", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`[{"id":"1","title":"A","description":"","priority":"low","dueDate":"2025-01-02","completed":false},
			{"id":"2","title":"B","description":"x","priority":"high","dueDate":"","completed":true}]`))
	})

	items, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "2025-01-02", items[0].DueDate.String())
	assert.True(t, items[1].Completed)
	assert.True(t, items[1].DueDate.IsZero())
}

func TestClient_ListNullIsEmpty(t *testing.T) {
	c := newClientWithServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})
	items, err := c.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestClient_CreateForcesOpen(t *testing.T) {
	c := newClientWithServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/todos", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body, "id")
		assert.Equal(t, false, body["completed"])
		assert.Equal(t, "2025-03-04", body["dueDate"])

		body["id"] = "42"
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(body)
	})

	created, err := c.Create(context.Background(), model.Item{
		Title:     "Write tests",
		Priority:  model.PriorityHigh,
		DueDate:   model.NewDate(2025, 3, 4),
		Completed: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "42", created.ID)
	assert.False(t, created.Completed)
	assert.Equal(t, model.PriorityHigh, created.Priority)
}

func TestClient_DeleteEscapesID(t *testing.T) {
	c := newClientWithServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/todos/a%2Fb", r.URL.EscapedPath())
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, c.Delete(context.Background(), "a/b"))
}

func TestClient_ToggleAndUpdate(t *testing.T) {
	c := newClientWithServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPatch && r.URL.Path == "/todos/7/toggle":
			_, _ = w.Write([]byte(`{"id":"7","title":"T","priority":"medium","dueDate":"2025-01-01","completed":true}`))
		case r.Method == http.MethodPut && r.URL.Path == "/todos/7":
			var in model.Item
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "7", in.ID)
			assert.True(t, in.Completed)
			_ = json.NewEncoder(w).Encode(in)
		default:
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
	})

	toggled, err := c.Toggle(context.Background(), "7")
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	toggled.Title = "T2"
	updated, err := c.Update(context.Background(), "7", toggled)
	require.NoError(t, err)
	assert.Equal(t, "T2", updated.Title)
}

func TestClient_RemoteError(t *testing.T) {
	c := newClientWithServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "todo not found", http.StatusNotFound)
	})

	_, err := c.Toggle(context.Background(), "gone")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsTransport(err))
	assert.Contains(t, err.Error(), "toggle todo failed 404: todo not found")
}

func TestClient_TransportErrors(t *testing.T) {
	t.Run("bad body", func(t *testing.T) {
		c := newClientWithServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		})
		_, err := c.List(context.Background())
		assert.True(t, IsTransport(err))
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c := NewClient(&config.Config{APIURL: srv.URL, Timeout: time.Second}, nil)
		_, err := c.List(context.Background())
		assert.True(t, IsTransport(err))
	})

	t.Run("timeout", func(t *testing.T) {
		block := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-block:
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(func() { close(block); srv.Close() })
		c := NewClient(&config.Config{APIURL: srv.URL, Timeout: 50 * time.Millisecond}, nil)
		_, err := c.List(context.Background())
		assert.True(t, IsTransport(err))
	})
}

func TestClient_BaseURLTrimmed(t *testing.T) {
	c := NewClient(&config.Config{APIURL: "http://localhost:8080/", Timeout: time.Second}, nil)
	assert.Equal(t, "http://localhost:8080", c.BaseURL())
}
