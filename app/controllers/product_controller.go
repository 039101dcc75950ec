package controllers

import (
	"github.com/shashiranjanraj/cubeshop/app/models"
	"github.com/shashiranjanraj/cubeshop/app/services"
	"github.com/shashiranjanraj/cubeshop/pkg/ctx"
)

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

// Store handles POST /products.
func (pc *ProductController) Store(c *ctx.Context) {
	req, err := pc.products.AuthorizeCreate(c.Context(), c.Principal())
	if err != nil {
		fail(c, err, forbidden)
		return
	}

	var product models.Product
	if !c.BindJSON(&product) {
		return
	}

	res, err := pc.products.Create(c.Context(), req, product)
	if err != nil {
		fail(c, err, forbidden)
		return
	}
	c.OK(res)
}

// Index handles GET /products.
func (pc *ProductController) Index(c *ctx.Context) {
	products, err := pc.products.All(c.Context())
	if err != nil {
		fail(c, err, forbidden)
		return
	}
	c.OK(products)
}

// Show handles GET /products/{id}. An unknown id answers null.
func (pc *ProductController) Show(c *ctx.Context) {
	product, err := pc.products.Find(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, forbidden)
		return
	}
	if product == nil {
		c.OK(nil)
		return
	}
	c.OK(product)
}

// Destroy handles DELETE /products/{id}.
func (pc *ProductController) Destroy(c *ctx.Context) {
	res, err := pc.products.Delete(c.Context(), c.Principal(), c.Param("id"))
	if err != nil {
		fail(c, err, forbidden)
		return
	}
	c.OK(res)
}
