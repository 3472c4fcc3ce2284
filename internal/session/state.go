package session

import (
	"context"

	"github.com/vbonduro/estatedocs/internal/domain"
)

// State is the authenticated identity of one browser session. At most one
// of User and Admin is set; Estate is only set alongside User.
type State struct {
	User   *domain.User
	Admin  *domain.Admin
	Estate domain.Estate
}

// LoginUser makes user the session identity for estate and clears any admin.
func (s *State) LoginUser(user domain.User, estate domain.Estate) {
	s.User = &user
	s.Estate = estate
	s.Admin = nil
}

// LoginAdmin makes admin the session identity and clears user and estate.
func (s *State) LoginAdmin(admin domain.Admin) {
	s.Admin = &admin
	s.User = nil
	s.Estate = ""
}

func (s *State) Logout() {
	*s = State{}
}

func (s *State) Anonymous() bool {
	return s.User == nil && s.Admin == nil
}

// View reports which top-level screen the state entitles the session to.
func (s *State) View() domain.View {
	switch {
	case s.User != nil && s.Estate != "":
		return domain.ViewUserDashboard
	case s.Admin != nil:
		return domain.ViewAdminDashboard
	default:
		return domain.ViewHome
	}
}

// Session binds a State to the cookie token that identifies it.
type Session struct {
	Token string
	State State
}

type ctxKey struct{}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

// FromContext returns the session injected by WithSession, or nil.
func FromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(ctxKey{}).(*Session)
	return sess
}
