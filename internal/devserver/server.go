// Package devserver is an in-memory implementation of the task API for local
// development and integration tests. Nothing survives a restart.
package devserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"taskflow/internal/httpmw"
)

type Options struct {
	// Secret signs bearer tokens. Required.
	Secret   string
	TokenTTL time.Duration
	Logger   zerolog.Logger
	Now      func() time.Time
}

type Server struct {
	users  *UserRepo
	tasks  *TaskRepo
	tokens *Issuer
	logger zerolog.Logger
	now    func() time.Time
}

func New(opts Options) (*Server, error) {
	if strings.TrimSpace(opts.Secret) == "" {
		return nil, errors.New("token secret is required")
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Server{
		users:  NewUserRepo(),
		tasks:  NewTaskRepo(),
		tokens: NewIssuer(opts.Secret, opts.TokenTTL, opts.Now),
		logger: opts.Logger,
		now:    opts.Now,
	}, nil
}

// Users exposes the account store, mainly for seeding.
func (s *Server) Users() *UserRepo { return s.users }

func (s *Server) Tokens() *Issuer { return s.tokens }

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "taskflow-devserver",
			"time":    s.now().UTC().Format(time.RFC3339),
		})
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", s.handleLogin).Methods(http.MethodPost)

	api := r.PathPrefix("/api/tasks").Subrouter()
	api.Use(s.requireBearer)
	api.HandleFunc("", s.handleListTasks).Methods(http.MethodGet)
	api.HandleFunc("/create", s.handleCreateTask).Methods(http.MethodPost)
	// registered before /{id} so "reorder" is never read as an id
	api.HandleFunc("/reorder", s.handleReorderTasks).Methods(http.MethodPut)
	api.HandleFunc("/{id}", s.handleUpdateTask).Methods(http.MethodPut)
	api.HandleFunc("/{id}", s.handleDeleteTask).Methods(http.MethodDelete)

	return httpmw.Chain(r,
		httpmw.WithRequestID,
		httpmw.WithRecover(s.logger),
		httpmw.WithAccessLog(s.logger),
	)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("dev server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}
