package web

import (
	"context"
	"net/http"

	"github.com/vbonduro/estatedocs/internal/remote"
	"github.com/vbonduro/estatedocs/internal/session"
)

func (s *Server) handleAddLocator(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	f, err := parseLocatorForm(r)
	if err == nil {
		err = formValidate.Struct(f)
	}
	if err != nil {
		s.renderTable(w, r, tableView{Notice: validationMessage(err), Failed: true})
		return
	}

	loc, err := s.service.AddLocator(context.WithoutCancel(r.Context()), sess.Token, f.fields(sess.State.Estate))
	if err != nil {
		s.renderTable(w, r, tableView{Notice: remote.UserMessage(err), Failed: true})
		return
	}
	s.renderTable(w, r, tableView{Notice: "Added " + loc.Name + "."})
}

func (s *Server) handleDeleteLocator(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	id := r.PathValue("id")

	if err := s.service.DeleteLocator(context.WithoutCancel(r.Context()), sess.Token, sess.State.Estate, id); err != nil {
		s.renderTable(w, r, tableView{Notice: remote.UserMessage(err), Failed: true})
		return
	}
	s.renderTable(w, r, tableView{Notice: "Locator deleted."})
}

func (s *Server) handleDeleteContract(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	id := r.PathValue("id")

	if err := s.service.DeleteContract(context.WithoutCancel(r.Context()), sess.Token, sess.State.Estate, id); err != nil {
		s.renderTable(w, r, tableView{Notice: remote.UserMessage(err), Failed: true})
		return
	}
	s.renderTable(w, r, tableView{Notice: "Contract deleted."})
}
