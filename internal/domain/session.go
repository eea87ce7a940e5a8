package domain

// AuthState is the identity triple held by the identity provider
type AuthState struct {
	User            *User  `json:"user"`
	Token           string `json:"token,omitempty"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

// Anonymous returns the logged-out state
func Anonymous() AuthState {
	return AuthState{}
}

// Authenticated returns a logged-in state for the user
func Authenticated(user User, token string) AuthState {
	return AuthState{User: &user, Token: token, IsAuthenticated: true}
}
