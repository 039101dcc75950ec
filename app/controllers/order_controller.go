package controllers

import (
	"github.com/shashiranjanraj/cubeshop/app/models"
	"github.com/shashiranjanraj/cubeshop/app/services"
	"github.com/shashiranjanraj/cubeshop/pkg/ctx"
)

// RefParam names the shared path segment of /orders/{ref}: an email for
// GET, an order id for PUT and DELETE.
const RefParam = "ref"

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// Store handles POST /orders.
func (oc *OrderController) Store(c *ctx.Context) {
	req, err := oc.orders.AuthorizeCreate(c.Context(), c.Principal())
	if err != nil {
		fail(c, err, unauthorized)
		return
	}

	var order models.Order
	if !c.BindJSON(&order) {
		return
	}

	res, err := oc.orders.Create(c.Context(), req, order)
	if err != nil {
		fail(c, err, unauthorized)
		return
	}
	c.OK(res)
}

// Index handles GET /orders. Non-admins get 403 here, unlike the other
// order routes.
func (oc *OrderController) Index(c *ctx.Context) {
	orders, err := oc.orders.All(c.Context(), c.Principal())
	if err != nil {
		fail(c, err, forbidden)
		return
	}
	c.OK(orders)
}

// ForEmail handles GET /orders/{ref}.
func (oc *OrderController) ForEmail(c *ctx.Context) {
	orders, err := oc.orders.ForEmail(c.Context(), c.Principal(), c.Param(RefParam))
	if err != nil {
		fail(c, err, unauthorized)
		return
	}
	c.OK(orders)
}

// UpdateStatus handles PUT /orders/{ref}.
func (oc *OrderController) UpdateStatus(c *ctx.Context) {
	req, err := oc.orders.AuthorizeUpdateStatus(c.Context(), c.Principal())
	if err != nil {
		fail(c, err, unauthorized)
		return
	}

	var in services.StatusInput
	if !c.BindJSON(&in) {
		return
	}

	res, err := oc.orders.UpdateStatus(c.Context(), req, c.Param(RefParam), in)
	if err != nil {
		fail(c, err, unauthorized)
		return
	}
	c.OK(res)
}

// Destroy handles DELETE /orders/{ref}.
func (oc *OrderController) Destroy(c *ctx.Context) {
	res, err := oc.orders.Delete(c.Context(), c.Principal(), c.Param(RefParam))
	if err != nil {
		fail(c, err, unauthorized)
		return
	}
	c.OK(res)
}
