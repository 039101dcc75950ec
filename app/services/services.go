// Package services orchestrates one request: resolve the requester, ask the
// policy, and on approval make exactly one store call.
package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/shashiranjanraj/cubeshop/app/repositories"
	"github.com/shashiranjanraj/cubeshop/pkg/logger"
	"github.com/shashiranjanraj/cubeshop/pkg/metrics"
	"github.com/shashiranjanraj/cubeshop/pkg/validate"
)

var (
	ErrNotFound  = repositories.ErrNotFound
	ErrDuplicate = repositories.ErrDuplicate
	// ErrDenied means the policy refused the action. Nothing was written.
	ErrDenied = errors.New("services: access denied")
)

// ValidationError maps each rejected input field to its message.
type ValidationError map[string]string

func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "services: invalid input: " + strings.Join(fields, ", ")
}

// check runs the struct's validate tags.
func check(v any) error {
	if errs := validate.Struct(v); validate.HasErrors(errs) {
		return ValidationError(errs)
	}
	return nil
}

// Options toggles behaviour that changes what clients observe.
type Options struct {
	// BindOrderOwner overwrites a new order's userEmail with the verified
	// requester instead of trusting the body.
	BindOrderOwner bool
}

// Services is the set of handlers-facing services sharing one store.
type Services struct {
	Resolver *PrincipalResolver
	Users    *UserService
	Products *ProductService
	Orders   *OrderService
}

func New(store repositories.Store, opts Options) *Services {
	resolver := NewPrincipalResolver(store.Users)
	return &Services{
		Resolver: resolver,
		Users:    NewUserService(store.Users, resolver),
		Products: NewProductService(store.Products, resolver),
		Orders:   NewOrderService(store.Orders, resolver, opts.BindOrderOwner),
	}
}

// decide records the outcome of a policy check and turns a refusal into
// ErrDenied.
func decide(ctx context.Context, action string, allowed bool) error {
	metrics.RecordDecision(action, allowed)
	if allowed {
		return nil
	}
	logger.WithCtx(ctx).Info("access denied", "action", action)
	return ErrDenied
}
