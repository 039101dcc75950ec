// Package routes declares the storefront's HTTP table.
package routes

import (
	"net/http"

	"github.com/shashiranjanraj/cubeshop/app/controllers"
	"github.com/shashiranjanraj/cubeshop/app/services"
	"github.com/shashiranjanraj/cubeshop/pkg/ctx"
	"github.com/shashiranjanraj/cubeshop/pkg/router"
)

func RegisterAPI(r *router.Router, svc *services.Services) {
	users := controllers.NewUserController(svc.Users)
	products := controllers.NewProductController(svc.Products)
	orders := controllers.NewOrderController(svc.Orders)

	r.Get("/", "home", ctx.Wrap(func(c *ctx.Context) {
		c.String(http.StatusOK, "Hello World!")
	}))

	u := r.Group("/users")
	u.Post("/", "users.store", ctx.Wrap(users.Store))
	u.Put("/admin", "users.promote", ctx.Wrap(users.Promote))
	u.Get("/{email}", "users.show", ctx.Wrap(users.Show))

	p := r.Group("/products")
	p.Post("/", "products.store", ctx.Wrap(products.Store))
	p.Get("/", "products.index", ctx.Wrap(products.Index))
	p.Get("/{id}", "products.show", ctx.Wrap(products.Show))
	p.Delete("/{id}", "products.destroy", ctx.Wrap(products.Destroy))

	ref := "/{" + controllers.RefParam + "}"
	o := r.Group("/orders")
	o.Post("/", "orders.store", ctx.Wrap(orders.Store))
	o.Get("/", "orders.index", ctx.Wrap(orders.Index))
	o.Get(ref, "orders.for_email", ctx.Wrap(orders.ForEmail))
	o.Put(ref, "orders.update_status", ctx.Wrap(orders.UpdateStatus))
	o.Delete(ref, "orders.destroy", ctx.Wrap(orders.Destroy))
}
