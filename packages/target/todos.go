package target

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/abdul-hamid-achik/smokespec/packages/store"
	"github.com/gorilla/mux"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const invalidID = "Invalid id"

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := s.store.List(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	todo, ok := decodeTodo(r)
	if !ok || todo.Title == "" {
		writeText(w, http.StatusBadRequest, invalidID)
		return
	}

	created, err := s.store.Create(r.Context(), todo)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/todos/%d", created.ID))
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(r)
	if !ok {
		writeText(w, http.StatusBadRequest, invalidID)
		return
	}

	todo, err := s.store.Get(r.Context(), id)
	s.writeTodo(w, r, http.StatusOK, todo, err)
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(r)
	if !ok {
		writeText(w, http.StatusBadRequest, invalidID)
		return
	}
	todo, ok := decodeTodo(r)
	if !ok {
		writeText(w, http.StatusBadRequest, invalidID)
		return
	}

	updated, err := s.store.Update(r.Context(), id, todo)
	s.writeTodo(w, r, http.StatusOK, updated, err)
}

func (s *Server) handleTodoDone(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(r)
	if !ok {
		writeText(w, http.StatusBadRequest, invalidID)
		return
	}

	todo, err := s.store.SetDone(r.Context(), id, true)
	s.writeTodo(w, r, http.StatusOK, todo, err)
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(r)
	if !ok {
		writeText(w, http.StatusBadRequest, invalidID)
		return
	}

	err := s.store.Delete(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeText(w, http.StatusNotFound, "Not Found")
	case err != nil:
		s.internalError(w, r, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) writeTodo(w http.ResponseWriter, r *http.Request, status int, todo *store.Todo, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeText(w, http.StatusNotFound, "Not Found")
	case err != nil:
		s.internalError(w, r, err)
	default:
		writeJSON(w, status, todo)
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", r.Header.Get(RequestIDHeader)),
		zap.Error(err))
	writeText(w, http.StatusInternalServerError, "failed to read")
}

// todoID parses the {id} path segment, accepting positive integers only
func todoID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// decodeTodo reads a todo from a JSON object body. String values for done
// ("true") are accepted since smoke payloads are string maps.
func decodeTodo(r *http.Request) (store.Todo, bool) {
	body, err := readBody(r)
	if err != nil || !gjson.ValidBytes(body) {
		return store.Todo{}, false
	}

	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return store.Todo{}, false
	}

	return store.Todo{
		Title: doc.Get("title").String(),
		Body:  doc.Get("body").String(),
		Done:  doc.Get("done").Bool(),
	}, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}
