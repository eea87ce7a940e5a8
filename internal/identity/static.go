package identity

import "github.com/Rrens/meeting-buddy/internal/domain"

// Static is an always-authenticated identity, used for stores that serve
// one verified user.
type Static struct {
	user domain.User
}

// NewStatic returns an identity fixed to user
func NewStatic(user domain.User) Static {
	return Static{user: user}
}

func (s Static) Current() domain.AuthState {
	return domain.Authenticated(s.user, "")
}
