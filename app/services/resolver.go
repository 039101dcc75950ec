package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/cubeshop/app/repositories"
	"github.com/shashiranjanraj/cubeshop/pkg/auth"
	"github.com/shashiranjanraj/cubeshop/pkg/rbac"
)

// PrincipalResolver maps a verified email onto its stored role.
type PrincipalResolver struct {
	users repositories.UserRepository
}

func NewPrincipalResolver(users repositories.UserRepository) *PrincipalResolver {
	return &PrincipalResolver{users: users}
}

// ResolveRole looks the email up exactly, case included. It returns
// ErrNotFound when no user has that email; an empty email never reaches
// the store.
func (r *PrincipalResolver) ResolveRole(ctx context.Context, email string) (rbac.Role, error) {
	if email == "" {
		return rbac.RoleNone, ErrNotFound
	}

	user, err := r.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return rbac.RoleNone, ErrNotFound
		}
		return rbac.RoleNone, fmt.Errorf("resolve role: %w", err)
	}
	return rbac.ParseRole(user.Role), nil
}

// Requester resolves the principal of a request. Callers that did not
// verify stay anonymous; verified callers without a user document keep
// their email but are not Known.
func (r *PrincipalResolver) Requester(ctx context.Context, p auth.Principal) (rbac.Requester, error) {
	if !p.Verified() {
		return rbac.Anonymous, nil
	}

	role, err := r.ResolveRole(ctx, p.Email)
	switch {
	case errors.Is(err, ErrNotFound):
		return rbac.Requester{Email: p.Email}, nil
	case err != nil:
		return rbac.Anonymous, err
	}
	return rbac.Requester{Email: p.Email, Known: true, Role: role}, nil
}
