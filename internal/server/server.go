// Package server is a reference implementation of the todo store: the HTTP
// API the client talks to, backed by memory and optionally a JSON file.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
)

// Persister saves the collection after every write.
type Persister interface {
	Load() ([]model.Item, error)
	Save(items []model.Item) error
}

// Server holds the authoritative todo collection.
type Server struct {
	logger  *log.Logger
	persist Persister
	now     func() time.Time
	newID   func() string

	mu    sync.Mutex
	todos []model.Item
}

type Option func(*Server)

func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithPersister loads the initial collection from p and saves every change to it.
func WithPersister(p Persister) Option { return func(s *Server) { s.persist = p } }

func WithClock(now func() time.Time) Option { return func(s *Server) { s.now = now } }

func WithIDs(newID func() string) Option { return func(s *Server) { s.newID = newID } }

// New builds a server. Items loaded from the persister, if any, come first.
func New(opts ...Option) (*Server, error) {
	s := &Server{
		logger: logging.Discard(),
		now:    time.Now,
		newID:  uuid.NewString,
		todos:  []model.Item{},
	}
	for _, o := range opts {
		o(s)
	}
	if s.persist != nil {
		items, err := s.persist.Load()
		if err != nil {
			return nil, fmt.Errorf("load todos: %w", err)
		}
		if items != nil {
			s.todos = items
		}
	}
	return s, nil
}

// Seed adds the sample item the demo store starts with. A collection that
// already has items, such as one loaded from a data file, is left alone.
func (s *Server) Seed() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.todos) > 0 {
		return nil
	}
	now := s.now()
	s.todos = append(s.todos, model.Item{
		ID:          s.newID(),
		Title:       "Learn Go",
		Description: "Complete Go tutorial and build a project",
		Priority:    model.PriorityHigh,
		DueDate:     model.DateOf(now).AddDays(7),
		CreatedAt:   &now,
		UpdatedAt:   &now,
	})
	if err := s.save(); err != nil {
		s.todos = s.todos[:0]
		return err
	}
	return nil
}

// Items returns a copy of the collection.
func (s *Server) Items() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Item(nil), s.todos...)
}

// Handler routes the todo API. allowedOrigin enables CORS for a browser client.
func (s *Server) Handler(allowedOrigin string) http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/todos", s.getTodos).Methods(http.MethodGet)
	r.HandleFunc("/todos", s.createTodo).Methods(http.MethodPost)
	r.HandleFunc("/todos/{id}", s.updateTodo).Methods(http.MethodPut)
	r.HandleFunc("/todos/{id}", s.deleteTodo).Methods(http.MethodDelete)
	r.HandleFunc("/todos/{id}/toggle", s.toggleTodo).Methods(http.MethodPatch)

	if allowedOrigin == "" {
		return r
	}
	return handlers.CORS(
		handlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "Authorization"}),
		handlers.AllowedOrigins([]string{allowedOrigin}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
	)(r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr, allowedOrigin string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(allowedOrigin),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("store listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) getTodos(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Items())
}

func (s *Server) createTodo(w http.ResponseWriter, r *http.Request) {
	todo, ok := decodeTodo(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	todo.ID = s.newID()
	todo.CreatedAt = &now
	todo.UpdatedAt = &now
	// No due date means tomorrow.
	if todo.DueDate.IsZero() {
		todo.DueDate = model.DateOf(now).AddDays(1)
	}
	if todo.Priority == "" {
		todo.Priority = model.PriorityMedium
	}

	s.todos = append(s.todos, todo)
	if err := s.save(); err != nil {
		s.todos = s.todos[:len(s.todos)-1]
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

func (s *Server) updateTodo(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	updated, ok := decodeTodo(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		http.Error(w, "todo not found", http.StatusNotFound)
		return
	}
	prev := s.todos[i]
	now := s.now()
	updated.ID = id
	updated.CreatedAt = prev.CreatedAt
	updated.UpdatedAt = &now
	// Empty due date or priority keep the existing value.
	if updated.DueDate.IsZero() {
		updated.DueDate = prev.DueDate
	}
	if updated.Priority == "" {
		updated.Priority = prev.Priority
	}

	s.todos[i] = updated
	if err := s.save(); err != nil {
		s.todos[i] = prev
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteTodo(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		http.Error(w, "todo not found", http.StatusNotFound)
		return
	}
	prev := s.todos
	s.todos = append(append([]model.Item{}, s.todos[:i]...), s.todos[i+1:]...)
	if err := s.save(); err != nil {
		s.todos = prev
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleTodo(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		http.Error(w, "todo not found", http.StatusNotFound)
		return
	}
	prev := s.todos[i]
	now := s.now()
	s.todos[i].Completed = !prev.Completed
	s.todos[i].UpdatedAt = &now
	if err := s.save(); err != nil {
		s.todos[i] = prev
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.todos[i])
}

func (s *Server) index(id string) int {
	for i, it := range s.todos {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// save must be called with s.mu held.
func (s *Server) save() error {
	if s.persist == nil {
		return nil
	}
	return s.persist.Save(s.todos)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.logger.Error("persist todos", "err", err)
	http.Error(w, "could not save todos", http.StatusInternalServerError)
}

func decodeTodo(w http.ResponseWriter, r *http.Request) (model.Item, bool) {
	var todo model.Item
	if err := json.NewDecoder(r.Body).Decode(&todo); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return model.Item{}, false
	}
	if todo.Priority != "" && !todo.Priority.Valid() {
		http.Error(w, "priority: must be one of low, medium, high", http.StatusBadRequest)
		return model.Item{}, false
	}
	return todo, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
