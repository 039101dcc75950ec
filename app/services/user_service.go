package services

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/cubeshop/app/models"
	"github.com/shashiranjanraj/cubeshop/app/repositories"
	"github.com/shashiranjanraj/cubeshop/pkg/auth"
	"github.com/shashiranjanraj/cubeshop/pkg/rbac"
)

type UserService struct {
	users    repositories.UserRepository
	resolver *PrincipalResolver
}

func NewUserService(users repositories.UserRepository, resolver *PrincipalResolver) *UserService {
	return &UserService{users: users, resolver: resolver}
}

// Register stores a self-registered user. Any role in the body is dropped.
func (s *UserService) Register(ctx context.Context, user models.User) (models.InsertResult, error) {
	if err := check(user); err != nil {
		return models.InsertResult{}, err
	}
	user.ID = nil
	user.Role = ""

	return s.users.Create(ctx, user)
}

// PromoteInput is the body of PUT /users/admin.
type PromoteInput struct {
	Email string `json:"email" validate:"required"`
}

// AuthorizePromote resolves p and applies the promotion policy. It runs
// before the body is read so that refused callers never see input errors.
func (s *UserService) AuthorizePromote(ctx context.Context, p auth.Principal) (rbac.Requester, error) {
	req, err := s.resolver.Requester(ctx, p)
	if err != nil {
		return rbac.Anonymous, err
	}
	if err := decide(ctx, "users.promote", rbac.CanPromoteToAdmin(req.Role)); err != nil {
		return rbac.Anonymous, err
	}
	return req, nil
}

// Promote gives in.Email the admin role on behalf of a requester returned
// by AuthorizePromote. Promoting an admin again is a no-op that still
// matches one document.
func (s *UserService) Promote(ctx context.Context, req rbac.Requester, in PromoteInput) (models.UpdateResult, error) {
	if !rbac.CanPromoteToAdmin(req.Role) {
		return models.UpdateResult{}, ErrDenied
	}
	if err := check(in); err != nil {
		return models.UpdateResult{}, err
	}

	return s.users.SetRole(ctx, in.Email, rbac.RoleAdmin.String())
}

// IsAdmin answers the public role-flag query. Unknown emails are not
// admins.
func (s *UserService) IsAdmin(ctx context.Context, email string) (bool, error) {
	if err := decide(ctx, "users.role_flag", rbac.CanViewRoleFlag()); err != nil {
		return false, err
	}

	role, err := s.resolver.ResolveRole(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return role.IsAdmin(), nil
}
