package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rrens/meeting-buddy/internal/domain"
	"github.com/Rrens/meeting-buddy/internal/security"
)

var validate = validator.New()

// Authenticator checks credentials against a Directory and issues session
// tokens. It keeps no session state and is safe for concurrent use.
type Authenticator struct {
	dir  Directory
	jwt  *security.JWTManager
	cost int
}

// NewAuthenticator creates a new authenticator
func NewAuthenticator(dir Directory, jwt *security.JWTManager) *Authenticator {
	return &Authenticator{
		dir:  dir,
		jwt:  jwt,
		cost: bcrypt.DefaultCost,
	}
}

// Login authenticates against the directory. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, input domain.UserLogin) (domain.AuthState, error) {
	if err := validate.Struct(input); err != nil {
		return domain.Anonymous(), fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	acc, err := a.dir.FindByEmail(ctx, input.Email)
	if err != nil {
		return domain.Anonymous(), fmt.Errorf("failed to get user: %w", err)
	}
	if acc == nil {
		return domain.Anonymous(), domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(input.Password)); err != nil {
		return domain.Anonymous(), domain.ErrInvalidCredentials
	}

	return a.issue(acc.User)
}

// Register creates an account and returns its logged-in state
func (a *Authenticator) Register(ctx context.Context, input domain.UserCreate) (domain.AuthState, error) {
	if err := validate.Struct(input); err != nil {
		return domain.Anonymous(), fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	existing, err := a.dir.FindByEmail(ctx, input.Email)
	if err != nil {
		return domain.Anonymous(), fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return domain.Anonymous(), domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), a.cost)
	if err != nil {
		return domain.Anonymous(), fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.User{
		ID:     uuid.New(),
		Email:  NormalizeEmail(input.Email),
		Name:   strings.TrimSpace(input.Name),
		Avatar: DefaultAvatar,
	}
	if err := a.dir.Create(ctx, Account{User: user, PasswordHash: string(hash)}); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return domain.Anonymous(), err
		}
		return domain.Anonymous(), fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().Str("user_id", user.ID.String()).Str("email", user.Email).Msg("User registered")
	return a.issue(user)
}

// Verify checks a session token and returns its user
func (a *Authenticator) Verify(token string) (domain.User, error) {
	claims, err := a.jwt.ValidateToken(token)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %s", domain.ErrUnauthenticated, err.Error())
	}
	return claims.User(), nil
}

// Lookup returns the user registered under email
func (a *Authenticator) Lookup(ctx context.Context, email string) (domain.User, error) {
	acc, err := a.dir.FindByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	if acc == nil {
		return domain.User{}, fmt.Errorf("%w: no user with email %s", domain.ErrNotFound, email)
	}
	return acc.User, nil
}

func (a *Authenticator) issue(user domain.User) (domain.AuthState, error) {
	token, err := a.jwt.GenerateToken(user)
	if err != nil {
		return domain.Anonymous(), fmt.Errorf("failed to generate token: %w", err)
	}
	return domain.Authenticated(user, token), nil
}
