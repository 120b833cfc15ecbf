package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"quiz-builder-service/internal/app"
	"quiz-builder-service/internal/domain"
)

// API exposes the authoring surface: catalog listing and search, quiz
// get/save/delete. Saving goes through the editor so validation failures
// abort the commit with a field-naming message.
type API struct {
	editor  *app.Editor
	catalog *app.Catalog
}

func NewAPI(editor *app.Editor, catalog *app.Catalog) *API {
	return &API{editor: editor, catalog: catalog}
}

// Register mounts the authoring routes on the mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /quizzes", a.listQuizzes)
	mux.HandleFunc("GET /quizzes/{id}", a.getQuiz)
	mux.HandleFunc("POST /quizzes", a.saveQuiz)
	mux.HandleFunc("DELETE /quizzes/{id}", a.deleteQuiz)
}

func (a *API) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := a.catalog.Search(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (a *API) getQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid quiz id", http.StatusBadRequest)
		return
	}
	draft, err := a.editor.Load(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft.Quiz)
}

func (a *API) saveQuiz(w http.ResponseWriter, r *http.Request) {
	var quiz domain.Quiz
	if err := json.NewDecoder(r.Body).Decode(&quiz); err != nil {
		http.Error(w, "invalid quiz payload", http.StatusBadRequest)
		return
	}
	stored, err := a.editor.Save(r.Context(), app.Draft{Quiz: quiz})
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (a *API) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid quiz id", http.StatusBadRequest)
		return
	}
	if err := a.catalog.Remove(r.Context(), id); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuiz):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrQuizNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		log.Printf("quiz api error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
