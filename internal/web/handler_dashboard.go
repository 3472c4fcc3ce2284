package web

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/vbonduro/estatedocs/internal/domain"
	"github.com/vbonduro/estatedocs/internal/remote"
	"github.com/vbonduro/estatedocs/internal/service"
	"github.com/vbonduro/estatedocs/internal/session"
)

// tableView is the locator table plus the outcome of the action that
// produced it.
type tableView struct {
	*service.Dashboard
	Notice string
	Failed bool
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := s.renderPage(w,
		map[string]any{"User": sess.State.User, "Estate": sess.State.Estate},
		"base.html", "pages/dashboard.html", "partials/secure.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

// handleLocators serves the dashboard body. With load=1 it fetches the
// estate afresh and returns the whole ready body; otherwise it filters the
// held collection and returns only the table.
func (s *Server) handleLocators(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	term := r.URL.Query().Get("q")

	if r.URL.Query().Get("load") == "1" {
		dash := s.service.LoadDashboard(r.Context(), sess.Token, sess.State.Estate, term)
		if dash.Status == service.DashboardError {
			s.renderDashboardError(w, dash)
			return
		}
		if err := s.renderFragment(w, "dashboard_body", tableView{Dashboard: dash},
			"partials/dashboard_body.html", "partials/locator_table.html",
		); err != nil {
			s.logger.Error("render fragment failed", "error", err)
		}
		return
	}

	s.renderTable(w, r, tableView{})
}

func (s *Server) renderDashboardError(w http.ResponseWriter, dash *service.Dashboard) {
	w.Header().Set("HX-Retarget", "#dashboard-body")
	w.Header().Set("HX-Reswap", "outerHTML")
	if err := s.renderPartial(w, "partials/dashboard_error.html", dash); err != nil {
		s.logger.Error("render partial failed", "error", err)
	}
}

// renderTable re-renders the locator table for the search term carried by
// the request, annotated with view's notice.
func (s *Server) renderTable(w http.ResponseWriter, r *http.Request, view tableView) {
	sess := session.FromContext(r.Context())
	term := r.FormValue("q")
	dash := s.service.SearchDashboard(r.Context(), sess.Token, sess.State.Estate, term)
	if dash.Status == service.DashboardError {
		s.renderDashboardError(w, dash)
		return
	}
	view.Dashboard = dash
	if err := s.renderFragment(w, "locator_table", view, "partials/locator_table.html"); err != nil {
		s.logger.Error("render fragment failed", "error", err)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	term := r.FormValue("q")

	data := map[string]any{}
	u, err := s.service.Export(r.Context(), sess.Token, sess.State.Estate, term)
	if err != nil {
		s.logger.Error("export failed", "estate", sess.State.Estate, "error", err)
		data["Error"] = "Export failed: " + remote.UserMessage(err)
	} else {
		data["URL"] = u
	}
	if err := s.renderPartial(w, "partials/export_result.html", data); err != nil {
		s.logger.Error("render partial failed", "error", err)
	}
}

func (s *Server) handleViewContract(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	contract, err := s.service.Contract(r.Context(), sess.Token, sess.State.Estate, r.PathValue("id"))
	if errors.Is(err, service.ErrContractNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, remote.UserMessage(err), http.StatusBadGateway)
		return
	}

	if err := s.renderPartial(w, "partials/viewer.html", map[string]any{
		"Contract": contract,
		"Src":      domain.PreviewURL(contract.DocumentURL),
	}); err != nil {
		s.logger.Error("render partial failed", "error", err)
	}
}

// renderFragment executes the named template from a set of partial files.
func (s *Server) renderFragment(w http.ResponseWriter, name string, data any, files ...string) error {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, files...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, name, data)
}
