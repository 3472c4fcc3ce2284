package web

import (
	"net/http"

	"github.com/vbonduro/estatedocs/internal/domain"
	"github.com/vbonduro/estatedocs/internal/remote"
	"github.com/vbonduro/estatedocs/internal/session"
)

const registeredNotice = "Account created. Please contact an admin to grant access to an estate, then log in."

// authForm is the view model shared by the login, register and admin login
// forms.
type authForm struct {
	Form    string
	Estates []domain.Estate
	Estate  domain.Estate
	Email   string
	Error   string
	Notice  string
}

var authFormFiles = []string{
	"partials/login_form.html",
	"partials/register_form.html",
	"partials/admin_login_form.html",
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := s.service.Discard(r.Context(), sess.Token); err != nil {
		s.logger.Error("discard snapshot failed", "error", err)
	}

	if err := s.renderPage(w,
		map[string]any{"Estates": domain.Estates, "State": sess.State, "View": sess.State.View()},
		"base.html", "pages/home.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

// renderAuthForm renders a bare form for htmx modals and a full page
// otherwise.
func (s *Server) renderAuthForm(w http.ResponseWriter, r *http.Request, form authForm) {
	form.Estates = domain.Estates
	var err error
	if isHTMX(r) {
		err = s.renderPartial(w, "partials/"+form.Form+"_form.html", form)
	} else {
		files := append([]string{"base.html", "pages/auth.html"}, authFormFiles...)
		err = s.renderPage(w, form, files...)
	}
	if err != nil {
		s.logger.Error("render form failed", "form", form.Form, "error", err)
	}
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	form := authForm{Form: "login"}
	if v := r.URL.Query().Get("estate"); v != "" {
		estate, err := domain.ParseEstate(v)
		if err != nil {
			http.Error(w, "unknown estate", http.StatusBadRequest)
			return
		}
		form.Estate = estate
	}
	s.renderAuthForm(w, r, form)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	f := parseLoginForm(r)
	form := authForm{Form: "login", Estate: domain.Estate(f.Estate), Email: f.Email}
	if err := formValidate.Struct(f); err != nil {
		form.Error = validationMessage(err)
		s.renderAuthForm(w, r, form)
		return
	}

	user, err := s.service.LoginUser(r.Context(), f.Email, f.Password, form.Estate)
	if err != nil {
		form.Error = remote.UserMessage(err)
		s.renderAuthForm(w, r, form)
		return
	}

	state := session.FromContext(r.Context()).State
	state.LoginUser(*user, form.Estate)
	if err := s.rotate(w, r, state); err != nil {
		s.logger.Error("rotate session failed", "error", err)
		http.Error(w, "failed to start session", http.StatusInternalServerError)
		return
	}
	redirect(w, r, "/dashboard")
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	estate, _ := domain.ParseEstate(r.URL.Query().Get("estate"))
	s.renderAuthForm(w, r, authForm{Form: "register", Estate: estate})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	f := parseRegisterForm(r)
	estate, _ := domain.ParseEstate(r.PostFormValue("estate"))
	form := authForm{Form: "register", Estate: estate, Email: f.Email}
	if err := formValidate.Struct(f); err != nil {
		form.Error = validationMessage(err)
		s.renderAuthForm(w, r, form)
		return
	}

	if err := s.service.Register(r.Context(), f.Email, f.Password); err != nil {
		form.Error = remote.UserMessage(err)
		s.renderAuthForm(w, r, form)
		return
	}
	s.renderAuthForm(w, r, authForm{Form: "login", Estate: estate, Email: f.Email, Notice: registeredNotice})
}

func (s *Server) handleAdminLoginForm(w http.ResponseWriter, r *http.Request) {
	s.renderAuthForm(w, r, authForm{Form: "admin_login"})
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	f := parseAdminLoginForm(r)
	form := authForm{Form: "admin_login", Email: f.Email}
	if err := formValidate.Struct(f); err != nil {
		form.Error = validationMessage(err)
		s.renderAuthForm(w, r, form)
		return
	}

	admin, err := s.service.LoginAdmin(r.Context(), f.Email, f.Password)
	if err != nil {
		form.Error = remote.UserMessage(err)
		s.renderAuthForm(w, r, form)
		return
	}

	state := session.FromContext(r.Context()).State
	state.LoginAdmin(*admin)
	if err := s.rotate(w, r, state); err != nil {
		s.logger.Error("rotate session failed", "error", err)
		http.Error(w, "failed to start session", http.StatusInternalServerError)
		return
	}
	redirect(w, r, "/admin")
}

// handleLogout clears the identity and issues a fresh token; the old
// session's snapshot goes with it.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	state := session.FromContext(r.Context()).State
	state.Logout()
	if err := s.rotate(w, r, state); err != nil {
		s.logger.Error("rotate session failed", "error", err)
		http.Error(w, "failed to log out", http.StatusInternalServerError)
		return
	}
	redirect(w, r, "/")
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := s.renderPage(w,
		map[string]any{"Admin": sess.State.Admin},
		"base.html", "pages/admin.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}
