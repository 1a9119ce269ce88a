// Package httpapi exposes the HTTP surface of the CV backend: the public
// diploma reads, the session-gated admin mutations, and the login flow that
// turns a password into a session cookie.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/pmorel/cv-backend/internal/logging"
	"github.com/pmorel/cv-backend/internal/server/auth"
	sc "github.com/pmorel/cv-backend/internal/server/config"
	"github.com/pmorel/cv-backend/internal/server/diplomas"
)

const sessionCookieName = "admin_session"

// DiplomaService is what the HTTP layer needs from the diploma service.
type DiplomaService interface {
	List(ctx context.Context) ([]*diplomas.Diploma, error)
	Get(ctx context.Context, id int64) (*diplomas.Diploma, error)
	Create(ctx context.Context, session string, in diplomas.CreateInput, file *diplomas.Upload) (*diplomas.Diploma, error)
	Update(ctx context.Context, session string, id int64, in diplomas.UpdateInput) (*diplomas.Diploma, error)
	Delete(ctx context.Context, session string, id int64) error
}

type Server struct {
	addr          string
	corsOrigin    string
	secureCookies bool
	verifier      *auth.Verifier
	sessions      *auth.Sessions
	service       DiplomaService
	logger        logging.Logger
}

func NewServer(cfg *sc.Config, verifier *auth.Verifier, sessions *auth.Sessions, service DiplomaService, logger logging.Logger) *Server {
	return &Server{
		addr:          cfg.EndpointAddr,
		corsOrigin:    cfg.CORSOrigin,
		secureCookies: cfg.SecureCookies,
		verifier:      verifier,
		sessions:      sessions,
		service:       service,
		logger:        logger.With("module", "httpapi"),
	}
}

// Router assembles the full handler chain: chi routes wrapped in request
// logging, metrics, and CORS.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/diplomas", s.handleListDiplomas)
	r.Get("/diplomas/{id}", s.handleGetDiploma)
	r.Post("/diplomas", s.handleCreateDiploma)
	r.Put("/diplomas/{id}", s.handleUpdateDiploma)
	r.Delete("/diplomas/{id}", s.handleDeleteDiploma)

	r.Post("/admin/login", s.handleLogin)
	r.Post("/admin/logout", s.handleLogout)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{s.corsOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.addr)

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

// sessionFromRequest returns the raw session token, or "" when the cookie
// is absent. Validation happens in the service.
func sessionFromRequest(r *http.Request) string {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
