package services

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/cubeshop/app/models"
	"github.com/shashiranjanraj/cubeshop/app/repositories"
	"github.com/shashiranjanraj/cubeshop/pkg/auth"
	"github.com/shashiranjanraj/cubeshop/pkg/rbac"
)

type ProductService struct {
	products repositories.ProductRepository
	resolver *PrincipalResolver
}

func NewProductService(products repositories.ProductRepository, resolver *PrincipalResolver) *ProductService {
	return &ProductService{products: products, resolver: resolver}
}

// AuthorizeCreate resolves p and applies the product creation policy
// before the body is read.
func (s *ProductService) AuthorizeCreate(ctx context.Context, p auth.Principal) (rbac.Requester, error) {
	req, err := s.resolver.Requester(ctx, p)
	if err != nil {
		return rbac.Anonymous, err
	}
	if err := decide(ctx, "products.create", rbac.CanCreateProduct(req.Role)); err != nil {
		return rbac.Anonymous, err
	}
	return req, nil
}

// Create stores product for a requester returned by AuthorizeCreate.
func (s *ProductService) Create(ctx context.Context, req rbac.Requester, product models.Product) (models.InsertResult, error) {
	if !rbac.CanCreateProduct(req.Role) {
		return models.InsertResult{}, ErrDenied
	}

	product.ID = nil
	return s.products.Create(ctx, product)
}

func (s *ProductService) All(ctx context.Context) ([]models.Product, error) {
	if err := decide(ctx, "products.list", rbac.CanViewProducts()); err != nil {
		return nil, err
	}
	return s.products.All(ctx)
}

// Find returns nil, without an error, when no product has that id.
func (s *ProductService) Find(ctx context.Context, id string) (*models.Product, error) {
	if err := decide(ctx, "products.show", rbac.CanViewProducts()); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, models.ParseID(id))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductService) Delete(ctx context.Context, p auth.Principal, id string) (models.DeleteResult, error) {
	req, err := s.resolver.Requester(ctx, p)
	if err != nil {
		return models.DeleteResult{}, err
	}
	if err := decide(ctx, "products.delete", rbac.CanDeleteProduct(req.Role)); err != nil {
		return models.DeleteResult{}, err
	}

	return s.products.Delete(ctx, models.ParseID(id))
}
