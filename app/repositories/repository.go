// Package repositories is the document-store layer. Each repository wraps
// one collection; handlers receive them through Store rather than reaching
// for process-wide handles.
package repositories

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/cubeshop/app/models"
)

var (
	// ErrNotFound is returned by single-document lookups that match nothing.
	ErrNotFound = errors.New("repositories: document not found")
	// ErrDuplicate is returned when an insert violates a unique index.
	ErrDuplicate = errors.New("repositories: duplicate key")
)

// UserRepository handles the users collection.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, user models.User) (models.InsertResult, error)
	SetRole(ctx context.Context, email, role string) (models.UpdateResult, error)
}

// ProductRepository handles the products collection.
type ProductRepository interface {
	All(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id interface{}) (models.Product, error)
	Create(ctx context.Context, product models.Product) (models.InsertResult, error)
	Delete(ctx context.Context, id interface{}) (models.DeleteResult, error)
}

// OrderRepository handles the orders collection.
type OrderRepository interface {
	All(ctx context.Context) ([]models.Order, error)
	FindByEmail(ctx context.Context, email string) ([]models.Order, error)
	Exists(ctx context.Context, id interface{}) (bool, error)
	Create(ctx context.Context, order models.Order) (models.InsertResult, error)
	UpdateStatus(ctx context.Context, id interface{}, status string) (models.UpdateResult, error)
	// DeleteByID removes the order whatever its owner.
	DeleteByID(ctx context.Context, id interface{}) (models.DeleteResult, error)
	// DeleteOwned removes the order only when its userEmail equals owner,
	// in a single store operation.
	DeleteOwned(ctx context.Context, id interface{}, owner string) (models.DeleteResult, error)
}

// Store bundles the three collections behind one handle.
type Store struct {
	Users    UserRepository
	Products ProductRepository
	Orders   OrderRepository

	ping func(ctx context.Context) error
}

// Ping reports whether the backing store is reachable.
func (s Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// WithPing returns a copy of s whose Ping calls ping.
func (s Store) WithPing(ping func(ctx context.Context) error) Store {
	s.ping = ping
	return s
}
