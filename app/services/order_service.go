package services

import (
	"context"

	"github.com/shashiranjanraj/cubeshop/app/models"
	"github.com/shashiranjanraj/cubeshop/app/repositories"
	"github.com/shashiranjanraj/cubeshop/pkg/auth"
	"github.com/shashiranjanraj/cubeshop/pkg/metrics"
	"github.com/shashiranjanraj/cubeshop/pkg/rbac"
)

type OrderService struct {
	orders    repositories.OrderRepository
	resolver  *PrincipalResolver
	bindOwner bool
}

func NewOrderService(orders repositories.OrderRepository, resolver *PrincipalResolver, bindOwner bool) *OrderService {
	return &OrderService{orders: orders, resolver: resolver, bindOwner: bindOwner}
}

// AuthorizeCreate resolves p and applies the order creation policy before
// the body is read.
func (s *OrderService) AuthorizeCreate(ctx context.Context, p auth.Principal) (rbac.Requester, error) {
	req, err := s.resolver.Requester(ctx, p)
	if err != nil {
		return rbac.Anonymous, err
	}
	if err := decide(ctx, "orders.create", rbac.CanCreateOrder(req)); err != nil {
		return rbac.Anonymous, err
	}
	return req, nil
}

// Create stores an order for a requester returned by AuthorizeCreate.
// userEmail comes from the body unless owner binding is on.
func (s *OrderService) Create(ctx context.Context, req rbac.Requester, order models.Order) (models.InsertResult, error) {
	if !rbac.CanCreateOrder(req) {
		return models.InsertResult{}, ErrDenied
	}

	order.ID = nil
	if s.bindOwner {
		order.UserEmail = req.Email
	}
	return s.orders.Create(ctx, order)
}

func (s *OrderService) All(ctx context.Context, p auth.Principal) ([]models.Order, error) {
	req, err := s.resolver.Requester(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := decide(ctx, "orders.list", rbac.CanListAllOrders(req.Role)); err != nil {
		return nil, err
	}
	return s.orders.All(ctx)
}

// ForEmail lists the orders placed under email. Any known user may ask
// about any email.
func (s *OrderService) ForEmail(ctx context.Context, p auth.Principal, email string) ([]models.Order, error) {
	req, err := s.resolver.Requester(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := decide(ctx, "orders.list_for_email", rbac.CanListOrdersForEmail(req)); err != nil {
		return nil, err
	}
	return s.orders.FindByEmail(ctx, email)
}

// StatusInput is the body of PUT /orders/{id}. Any string, empty included,
// is a valid status.
type StatusInput struct {
	Status string `json:"status"`
}

// AuthorizeUpdateStatus resolves p and applies the status policy before
// the body is read.
func (s *OrderService) AuthorizeUpdateStatus(ctx context.Context, p auth.Principal) (rbac.Requester, error) {
	req, err := s.resolver.Requester(ctx, p)
	if err != nil {
		return rbac.Anonymous, err
	}
	if err := decide(ctx, "orders.update_status", rbac.CanUpdateOrderStatus(req.Role)); err != nil {
		return rbac.Anonymous, err
	}
	return req, nil
}

// UpdateStatus sets the status of order id for a requester returned by
// AuthorizeUpdateStatus.
func (s *OrderService) UpdateStatus(ctx context.Context, req rbac.Requester, id string, in StatusInput) (models.UpdateResult, error) {
	if !rbac.CanUpdateOrderStatus(req.Role) {
		return models.UpdateResult{}, ErrDenied
	}
	return s.orders.UpdateStatus(ctx, models.ParseID(id), in.Status)
}

// Delete removes an order in one conditional store call: by id alone for
// admins, by id and owner for everyone else. When a non-admin deletes
// nothing, an existence check tells a refusal from a missing order; a
// missing order yields the zero-affected result.
func (s *OrderService) Delete(ctx context.Context, p auth.Principal, id string) (models.DeleteResult, error) {
	req, err := s.resolver.Requester(ctx, p)
	if err != nil {
		return models.DeleteResult{}, err
	}
	key := models.ParseID(id)

	// With no owner to compare, only the role half of the policy can pass.
	if rbac.CanDeleteOrder(req.Role, "", "") {
		res, err := s.orders.DeleteByID(ctx, key)
		if err == nil {
			metrics.RecordDecision("orders.delete", true)
		}
		return res, err
	}

	res := models.DeleteResult{Acknowledged: true}
	if req.Email != "" {
		// The filter is CanDeleteOrder's ownership clause: userEmail ==
		// identity with a non-empty identity.
		res, err = s.orders.DeleteOwned(ctx, key, req.Email)
		if err != nil {
			return models.DeleteResult{}, err
		}
		if res.DeletedCount > 0 {
			metrics.RecordDecision("orders.delete", true)
			return res, nil
		}
	}

	exists, err := s.orders.Exists(ctx, key)
	if err != nil {
		return models.DeleteResult{}, err
	}
	if exists {
		return models.DeleteResult{}, decide(ctx, "orders.delete", false)
	}
	return res, nil
}
