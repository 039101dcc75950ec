package repositories

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/shashiranjanraj/cubeshop/app/models"
)

// NewMemoryStore returns a Store held in process memory. It backs the
// "memory" DB_DRIVER and the handler tests; every operation is atomic
// under one lock, like a single-document write in the real store.
func NewMemoryStore() Store {
	m := &memory{}
	return Store{
		Users:    (*memoryUsers)(m),
		Products: (*memoryProducts)(m),
		Orders:   (*memoryOrders)(m),
	}
}

type memory struct {
	mu       sync.RWMutex
	users    []models.User
	products []models.Product
	orders   []models.Order
}

func assignID(id interface{}) interface{} {
	if id == nil {
		return models.NewID()
	}
	return id
}

// ── users ────────────────────────────────────────────────────────────────────

type memoryUsers memory

func (r *memoryUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			u.Extra = maps.Clone(u.Extra)
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (r *memoryUsers) Create(_ context.Context, user models.User) (models.InsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return models.InsertResult{}, ErrDuplicate
		}
	}

	user.ID = assignID(user.ID)
	user.Extra = maps.Clone(user.Extra)
	r.users = append(r.users, user)
	return models.InsertResult{Acknowledged: true, InsertedID: user.ID}, nil
}

func (r *memoryUsers) SetRole(_ context.Context, email, role string) (models.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := models.UpdateResult{Acknowledged: true}
	for i := range r.users {
		if r.users[i].Email != email {
			continue
		}
		res.MatchedCount = 1
		if r.users[i].Role != role {
			r.users[i].Role = role
			res.ModifiedCount = 1
		}
		break
	}
	return res, nil
}

// ── products ─────────────────────────────────────────────────────────────────

type memoryProducts memory

func (r *memoryProducts) All(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		p.Extra = maps.Clone(p.Extra)
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryProducts) FindByID(_ context.Context, id interface{}) (models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.ID == id {
			p.Extra = maps.Clone(p.Extra)
			return p, nil
		}
	}
	return models.Product{}, ErrNotFound
}

func (r *memoryProducts) Create(_ context.Context, product models.Product) (models.InsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product.ID = assignID(product.ID)
	for _, p := range r.products {
		if p.ID == product.ID {
			return models.InsertResult{}, ErrDuplicate
		}
	}

	product.Extra = maps.Clone(product.Extra)
	r.products = append(r.products, product)
	return models.InsertResult{Acknowledged: true, InsertedID: product.ID}, nil
}

func (r *memoryProducts) Delete(_ context.Context, id interface{}) (models.DeleteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := models.DeleteResult{Acknowledged: true}
	if i := slices.IndexFunc(r.products, func(p models.Product) bool { return p.ID == id }); i >= 0 {
		r.products = slices.Delete(r.products, i, i+1)
		res.DeletedCount = 1
	}
	return res, nil
}

// ── orders ───────────────────────────────────────────────────────────────────

type memoryOrders memory

func (r *memoryOrders) filter(keep func(models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if keep(o) {
			o.Extra = maps.Clone(o.Extra)
			out = append(out, o)
		}
	}
	return out
}

func (r *memoryOrders) All(_ context.Context) ([]models.Order, error) {
	return r.filter(func(models.Order) bool { return true }), nil
}

func (r *memoryOrders) FindByEmail(_ context.Context, email string) ([]models.Order, error) {
	return r.filter(func(o models.Order) bool { return o.UserEmail == email }), nil
}

func (r *memoryOrders) Exists(_ context.Context, id interface{}) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.ContainsFunc(r.orders, func(o models.Order) bool { return o.ID == id }), nil
}

func (r *memoryOrders) Create(_ context.Context, order models.Order) (models.InsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = assignID(order.ID)
	for _, o := range r.orders {
		if o.ID == order.ID {
			return models.InsertResult{}, ErrDuplicate
		}
	}

	order.Extra = maps.Clone(order.Extra)
	r.orders = append(r.orders, order)
	return models.InsertResult{Acknowledged: true, InsertedID: order.ID}, nil
}

func (r *memoryOrders) UpdateStatus(_ context.Context, id interface{}, status string) (models.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := models.UpdateResult{Acknowledged: true}
	for i := range r.orders {
		if r.orders[i].ID != id {
			continue
		}
		res.MatchedCount = 1
		if r.orders[i].Status != status {
			r.orders[i].Status = status
			res.ModifiedCount = 1
		}
		break
	}
	return res, nil
}

func (r *memoryOrders) DeleteByID(_ context.Context, id interface{}) (models.DeleteResult, error) {
	return r.deleteWhere(func(o models.Order) bool { return o.ID == id }), nil
}

func (r *memoryOrders) DeleteOwned(_ context.Context, id interface{}, owner string) (models.DeleteResult, error) {
	return r.deleteWhere(func(o models.Order) bool { return o.ID == id && o.UserEmail == owner }), nil
}

func (r *memoryOrders) deleteWhere(match func(models.Order) bool) models.DeleteResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := models.DeleteResult{Acknowledged: true}
	if i := slices.IndexFunc(r.orders, match); i >= 0 {
		r.orders = slices.Delete(r.orders, i, i+1)
		res.DeletedCount = 1
	}
	return res
}
