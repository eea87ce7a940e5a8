package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Rrens/meeting-buddy/internal/domain"
	"github.com/Rrens/meeting-buddy/internal/permission"
)

var validate = validator.New()

// UserResolver finds registered users by email
type UserResolver interface {
	Lookup(ctx context.Context, email string) (domain.User, error)
}

// HubStore is the part of the domain store HubService drives
type HubStore interface {
	CreateHub(ctx context.Context, input domain.HubCreate) (domain.Hub, error)
	AddMember(ctx context.Context, hubID uuid.UUID, input domain.MemberAdd) (domain.HubMember, error)
}

// MemberInvite names a registered user by email together with a role label
type MemberInvite struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Role  string `json:"role" validate:"required"`
}

// HubCreateRequest is a hub creation form whose members are given by email
type HubCreateRequest struct {
	Name        string         `json:"name" validate:"required,max=255"`
	Type        domain.HubType `json:"type" validate:"required"`
	Description string         `json:"description,omitempty"`
	CreatorRole domain.Role    `json:"creatorRole" validate:"required"`
	Members     []MemberInvite `json:"members" validate:"dive"`
}

// HubService resolves the people named in hub forms and drives store commands
type HubService struct {
	users UserResolver
}

// NewHubService creates a new hub service
func NewHubService(users UserResolver) *HubService {
	return &HubService{users: users}
}

// CreateHub resolves the initial members and creates the hub
func (s *HubService) CreateHub(ctx context.Context, st HubStore, req HubCreateRequest) (domain.Hub, error) {
	if err := validate.Struct(req); err != nil {
		return domain.Hub{}, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	creatorRole, ok := permission.GrantedRole(grantLabel(string(req.CreatorRole)))
	if !ok {
		return domain.Hub{}, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, req.CreatorRole)
	}

	members := make([]domain.HubMemberInput, 0, len(req.Members))
	for _, invite := range req.Members {
		role, ok := permission.GrantedRole(grantLabel(invite.Role))
		if !ok {
			return domain.Hub{}, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, invite.Role)
		}
		user, err := s.users.Lookup(ctx, invite.Email)
		if err != nil {
			return domain.Hub{}, fmt.Errorf("failed to resolve %s: %w", invite.Email, err)
		}
		members = append(members, domain.HubMemberInput{
			UserID: user.ID,
			Name:   user.Name,
			Email:  user.Email,
			Role:   role,
			Avatar: user.Avatar,
		})
	}

	return st.CreateHub(ctx, domain.HubCreate{
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		CreatorRole: creatorRole,
		Members:     members,
	})
}

// AddMember resolves the invited user and adds them with the requested grant
func (s *HubService) AddMember(ctx context.Context, st HubStore, hubID uuid.UUID, invite MemberInvite) (domain.HubMember, error) {
	if err := validate.Struct(invite); err != nil {
		return domain.HubMember{}, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	user, err := s.users.Lookup(ctx, invite.Email)
	if err != nil {
		return domain.HubMember{}, fmt.Errorf("failed to resolve %s: %w", invite.Email, err)
	}

	return st.AddMember(ctx, hubID, domain.MemberAdd{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Grant:  grantLabel(invite.Role),
		Avatar: user.Avatar,
	})
}

// grantLabel canonicalizes the casing of a grant label; unknown labels pass
// through for the store to reject
func grantLabel(label string) string {
	label = strings.TrimSpace(label)
	if strings.EqualFold(label, domain.GrantTeamLeader) {
		return domain.GrantTeamLeader
	}
	if role, ok := permission.Normalize(label); ok {
		return string(role)
	}
	return label
}
