// Package portalstub serves a stand-in for the members portal so a session
// can be exercised locally. It accepts the account form posts, answers every
// page GET with a small HTML body and keeps an ordered log of requests.
package portalstub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wesleyorama2/memberload/internal/credentials"
)

// AuthCookie is the cookie set by a successful login.
const AuthCookie = ".ASPXAUTH"

// Request is one entry of the request log.
type Request struct {
	Method string
	URI    string
	Form   url.Values
}

// Server is the portal stub. It implements http.Handler.
type Server struct {
	router  *mux.Router
	expect  *credentials.Credentials
	latency time.Duration
	logger  *zap.Logger

	mu   sync.Mutex
	log  []Request
	auth map[string]bool
}

// Option configures a Server.
type Option func(*Server)

// WithCredentials makes login reject any other username/password pair.
func WithCredentials(c credentials.Credentials) Option {
	return func(s *Server) {
		s.expect = &c
	}
}

// WithLatency delays every response.
func WithLatency(d time.Duration) Option {
	return func(s *Server) {
		s.latency = d
	}
}

// WithLogger logs every request at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a portal stub.
func New(opts ...Option) *Server {
	s := &Server{
		router: mux.NewRouter(),
		logger: zap.NewNop(),
		auth:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(s.record)
	s.router.HandleFunc("/Account/Login", s.login).Methods(http.MethodPost)
	s.router.HandleFunc("/Account/Logout", s.logout).Methods(http.MethodPost)
	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	s.router.PathPrefix("/").HandlerFunc(s.page).Methods(http.MethodGet)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Requests returns a copy of the request log.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.log...)
}

// Reset clears the request log.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = nil
}

// ActiveLogins returns the number of sessions logged in and not yet logged out.
func (s *Server) ActiveLogins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.auth)
}

// ListenAndServe serves the stub on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()

		s.mu.Lock()
		s.log = append(s.log, Request{
			Method: r.Method,
			URI:    r.URL.RequestURI(),
			Form:   r.PostForm,
		})
		s.mu.Unlock()

		s.logger.Debug("stub request", zap.String("method", r.Method), zap.String("uri", r.URL.RequestURI()))

		if s.latency > 0 {
			time.Sleep(s.latency)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	username := r.PostForm.Get(credentials.UsernameField)
	password := r.PostForm.Get(credentials.PasswordField)
	if username == "" || password == "" {
		http.Error(w, "missing credentials", http.StatusBadRequest)
		return
	}
	if s.expect != nil && (s.expect.Username != username || s.expect.Password != password) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.auth[token] = true
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: AuthCookie, Value: token, Path: "/", HttpOnly: true})
	fmt.Fprint(w, "<html><body>welcome</body></html>")
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(AuthCookie); err == nil {
		s.mu.Lock()
		delete(s.auth, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: AuthCookie, Value: "", Path: "/", MaxAge: -1})
	fmt.Fprint(w, "<html><body>bye</body></html>")
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, "healthy")
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, "<html><body>%s</body></html>", r.URL.Path)
}
