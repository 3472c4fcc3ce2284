package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/vbonduro/estatedocs/internal/domain"
	"github.com/vbonduro/estatedocs/internal/service"
	"github.com/vbonduro/estatedocs/internal/store"
)

type Server struct {
	service      *service.PortalService
	sessions     *store.SessionStore
	templates    embed.FS
	mux          *http.ServeMux
	tmplFuncs    template.FuncMap
	cookieSecure bool
	logger       *slog.Logger
}

func NewServer(svc *service.PortalService, sessions *store.SessionStore, tmpl embed.FS, cookieSecure bool, logger *slog.Logger) *Server {
	s := &Server{
		service:      svc,
		sessions:     sessions,
		templates:    tmpl,
		mux:          http.NewServeMux(),
		cookieSecure: cookieSecure,
		logger:       logger,
		tmplFuncs: template.FuncMap{
			"area":           formatArea,
			"groupContracts": domain.GroupContracts,
			"previewURL":     domain.PreviewURL,
			"contractTypes":  func() []domain.ContractType { return domain.ContractTypes },
		},
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleHome)
	s.mux.HandleFunc("GET /login", s.handleLoginForm)
	s.mux.HandleFunc("POST /login", s.handleLogin)
	s.mux.HandleFunc("GET /register", s.handleRegisterForm)
	s.mux.HandleFunc("POST /register", s.handleRegister)
	s.mux.HandleFunc("GET /admin/login", s.handleAdminLoginForm)
	s.mux.HandleFunc("POST /admin/login", s.handleAdminLogin)
	s.mux.HandleFunc("POST /logout", s.handleLogout)

	s.mux.HandleFunc("GET /dashboard", s.requireUser(s.handleDashboard))
	s.mux.HandleFunc("GET /dashboard/locators", s.requireUser(s.handleLocators))
	s.mux.HandleFunc("POST /dashboard/export", s.requireUser(s.handleExport))
	s.mux.HandleFunc("POST /dashboard/locators", s.requireUser(s.handleAddLocator))
	s.mux.HandleFunc("DELETE /dashboard/locators/{id}", s.requireUser(s.handleDeleteLocator))
	s.mux.HandleFunc("POST /dashboard/locators/{id}/contracts", s.requireUser(s.handleUploadContract))
	s.mux.HandleFunc("DELETE /dashboard/contracts/{id}", s.requireUser(s.handleDeleteContract))
	s.mux.HandleFunc("GET /dashboard/contracts/{id}/view", s.requireUser(s.handleViewContract))

	s.mux.HandleFunc("GET /admin", s.requireAdmin(s.handleAdmin))
}

// securityHeaders adds defensive HTTP response headers to every response.
// Google Drive is the only permitted frame source, for the document viewer.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Cache-Control", "no-store")
		h.Set("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self' 'unsafe-inline' https://unpkg.com; "+
				"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com; "+
				"font-src https://fonts.gstatic.com; "+
				"img-src 'self' data:; "+
				"frame-src https://drive.google.com; "+
				"connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.withSession(s.mux))).ServeHTTP(w, r)
}

const shutdownTimeout = 15 * time.Second

// ListenAndServe serves until ctx is done, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// renderPage parses and executes a full-page template set.
func (s *Server) renderPage(w http.ResponseWriter, data any, files ...string) error {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, files...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, "base", data)
}

// renderPartial parses and executes a single named partial template.
// The file must contain exactly one {{define "name"}}...{{end}} block.
func (s *Server) renderPartial(w http.ResponseWriter, file string, data any) error {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, file)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	basename := file
	if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
		basename = file[idx+1:]
	}
	for _, t := range tmpl.Templates() {
		if n := t.Name(); n != "" && n != basename {
			return t.Execute(w, data)
		}
	}
	return tmpl.ExecuteTemplate(w, basename, data)
}

// isHTMX reports whether r was issued by htmx rather than a full navigation.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect sends the client to path, using HX-Redirect for htmx requests so
// the whole page navigates instead of swapping a fragment.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// formatArea renders a lot area with thousands separators.
func formatArea(v float64) string {
	return humanize.Commaf(v)
}
