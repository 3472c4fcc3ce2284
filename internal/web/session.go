package web

import (
	"net/http"

	"github.com/vbonduro/estatedocs/internal/domain"
	"github.com/vbonduro/estatedocs/internal/session"
)

const sessionCookie = "estatedocs_session"

// withSession resolves the session named by the cookie, creating a fresh
// anonymous one when the cookie is absent, unknown or idle, and injects it
// into the request context. An idle session's row is removed on sight.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sess *session.Session
		if c, err := r.Cookie(sessionCookie); err == nil {
			sess, err = s.sessions.Get(r.Context(), c.Value)
			if err != nil {
				s.logger.Error("load session failed", "error", err)
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}
			if sess == nil {
				if err := s.sessions.Delete(r.Context(), c.Value); err != nil {
					s.logger.Error("delete stale session failed", "error", err)
				}
			}
		}
		if sess == nil {
			created, err := s.sessions.Create(r.Context())
			if err != nil {
				s.logger.Error("create session failed", "error", err)
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}
			sess = created
			s.setSessionCookie(w, sess.Token)
		}
		next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
	})
}

// setSessionCookie issues a browser-session cookie; it has no expiry so the
// identity ends when the browser closes.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// rotate replaces the current session with a new token holding state.
func (s *Server) rotate(w http.ResponseWriter, r *http.Request, state session.State) error {
	sess := session.FromContext(r.Context())
	next, err := s.sessions.Rotate(r.Context(), sess.Token, state)
	if err != nil {
		return err
	}
	s.setSessionCookie(w, next.Token)
	return nil
}

func (s *Server) requireUser(h http.HandlerFunc) http.HandlerFunc {
	return s.requireView(domain.ViewUserDashboard, h)
}

func (s *Server) requireAdmin(h http.HandlerFunc) http.HandlerFunc {
	return s.requireView(domain.ViewAdminDashboard, h)
}

func (s *Server) requireView(view domain.View, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		if sess == nil || sess.State.View() != view {
			redirect(w, r, "/")
			return
		}
		h(w, r)
	}
}
