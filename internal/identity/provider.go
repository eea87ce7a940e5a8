// Package identity authenticates users and holds the current session.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/meeting-buddy/internal/domain"
	"github.com/Rrens/meeting-buddy/internal/storage"
)

// Provider holds one session's identity. Login and Register return
// ErrInvalidCredentials or ErrEmailTaken as negative results; the session
// is persisted under auth_token and auth_user.
type Provider struct {
	mu    sync.RWMutex
	state domain.AuthState
	auth  *Authenticator
	kv    storage.KV
}

// NewProvider creates a logged-out provider
func NewProvider(auth *Authenticator, kv storage.KV) *Provider {
	return &Provider{
		state: domain.Anonymous(),
		auth:  auth,
		kv:    kv,
	}
}

// Login authenticates and starts a session
func (p *Provider) Login(ctx context.Context, input domain.UserLogin) (domain.AuthState, error) {
	state, err := p.auth.Login(ctx, input)
	if err != nil {
		return domain.Anonymous(), err
	}
	p.startSession(ctx, state)
	return state, nil
}

// Register creates an account and logs it in
func (p *Provider) Register(ctx context.Context, input domain.UserCreate) (domain.AuthState, error) {
	state, err := p.auth.Register(ctx, input)
	if err != nil {
		return domain.Anonymous(), err
	}
	p.startSession(ctx, state)
	return state, nil
}

// Logout clears the session
func (p *Provider) Logout(ctx context.Context) {
	p.mu.Lock()
	p.state = domain.Anonymous()
	p.mu.Unlock()

	for _, key := range []string{storage.AuthTokenKey, storage.AuthUserKey} {
		if err := p.kv.Remove(ctx, key); err != nil {
			log.Error().Err(err).Str("key", key).Msg("Failed to clear session")
		}
	}
}

// Current returns the current identity
func (p *Provider) Current() domain.AuthState {
	p.mu.RLock()
	defer p.mu.RUnlock()

	state := p.state
	if state.User != nil {
		user := *state.User
		state.User = &user
	}
	return state
}

// Restore resumes a persisted session. A stored pair whose token is invalid
// or belongs to someone else is removed and the provider stays logged out.
func (p *Provider) Restore(ctx context.Context) (domain.AuthState, error) {
	token, okToken, err := p.kv.Get(ctx, storage.AuthTokenKey)
	if err != nil {
		return domain.Anonymous(), fmt.Errorf("failed to read session token: %w", err)
	}
	raw, okUser, err := p.kv.Get(ctx, storage.AuthUserKey)
	if err != nil {
		return domain.Anonymous(), fmt.Errorf("failed to read session user: %w", err)
	}
	if !okToken || !okUser {
		return domain.Anonymous(), nil
	}

	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		log.Warn().Err(err).Msg("Discarding unreadable session")
		p.Logout(ctx)
		return domain.Anonymous(), nil
	}

	verified, err := p.auth.Verify(token)
	if err != nil || verified.ID != user.ID {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("Discarding invalid session")
		p.Logout(ctx)
		return domain.Anonymous(), nil
	}

	state := domain.Authenticated(user, token)
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
	return state, nil
}

// Verify checks a session token and returns its user
func (p *Provider) Verify(token string) (domain.User, error) {
	return p.auth.Verify(token)
}

// Lookup returns the user registered under email
func (p *Provider) Lookup(ctx context.Context, email string) (domain.User, error) {
	return p.auth.Lookup(ctx, email)
}

func (p *Provider) startSession(ctx context.Context, state domain.AuthState) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()

	data, err := json.Marshal(state.User)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode session user")
		return
	}
	if err := p.kv.Set(ctx, storage.AuthTokenKey, state.Token); err != nil {
		log.Error().Err(err).Msg("Failed to persist session token")
	}
	if err := p.kv.Set(ctx, storage.AuthUserKey, string(data)); err != nil {
		log.Error().Err(err).Msg("Failed to persist session user")
	}
}
