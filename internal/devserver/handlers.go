package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"taskflow/internal/task"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"message": msg})
}

func decodeJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

// POST /api/auth/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	u, err := s.users.Register(in.Name, in.Email, in.Password, s.now())
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingName), errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrWeakPassword):
			writeErr(w, http.StatusBadRequest, capitalize(err.Error()))
		case errors.Is(err, ErrEmailTaken):
			writeErr(w, http.StatusConflict, "Email is already registered")
		default:
			writeErr(w, http.StatusInternalServerError, "could not register")
		}
		return
	}
	s.logger.Info().Str("email", u.Email).Msg("user registered")
	writeJSON(w, http.StatusCreated, u)
}

// POST /api/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	u, err := s.users.Authenticate(in.Email, in.Password)
	if err != nil {
		writeErr(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	token, exp, err := s.tokens.Issue(u.Email)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":     token,
		"id":        u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"expiresAt": exp.UTC().Format(time.RFC3339),
	})
}

// GET /api/tasks
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, s.tasks.List(u.Email))
}

// POST /api/tasks/create
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromContext(r.Context())
	var d task.Draft
	if err := decodeJSON(r, &d); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	t, err := s.tasks.Create(u.Email, d, s.now())
	if err != nil {
		s.writeTaskErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// PUT /api/tasks/{id}
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromContext(r.Context())
	var d task.Draft
	if err := decodeJSON(r, &d); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	t, err := s.tasks.Update(u.Email, task.ID(mux.Vars(r)["id"]), d)
	if err != nil {
		s.writeTaskErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DELETE /api/tasks/{id}
func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromContext(r.Context())
	if err := s.tasks.Delete(u.Email, task.ID(mux.Vars(r)["id"])); err != nil {
		s.writeTaskErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PUT /api/tasks/reorder
func (s *Server) handleReorderTasks(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromContext(r.Context())
	var ids []task.ID
	if err := decodeJSON(r, &ids); err != nil {
		writeErr(w, http.StatusBadRequest, "expected an array of task ids")
		return
	}
	if err := s.tasks.Reorder(u.Email, ids); err != nil {
		s.writeTaskErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeTaskErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTitleRequired), errors.Is(err, ErrNotPermutation):
		writeErr(w, http.StatusBadRequest, capitalize(err.Error()))
	case errors.Is(err, ErrTaskNotFound):
		writeErr(w, http.StatusNotFound, "Task not found")
	default:
		s.logger.Error().Err(err).Msg("task operation failed")
		writeErr(w, http.StatusInternalServerError, "internal server error")
	}
}

// requireBearer admits requests carrying a valid token for a known user.
// Everything else gets 403, which clients read as an expired session.
func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, raw, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			writeErr(w, http.StatusForbidden, "forbidden")
			return
		}
		email, err := s.tokens.Verify(strings.TrimSpace(raw))
		if err != nil {
			s.logger.Debug().Err(err).Msg("bearer rejected")
			writeErr(w, http.StatusForbidden, "forbidden")
			return
		}
		u, ok := s.users.GetByEmail(email)
		if !ok {
			writeErr(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUserContext(r.Context(), u)))
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
