package controllers

import (
	"github.com/shashiranjanraj/cubeshop/app/models"
	"github.com/shashiranjanraj/cubeshop/app/services"
	"github.com/shashiranjanraj/cubeshop/pkg/ctx"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// Store handles POST /users.
func (uc *UserController) Store(c *ctx.Context) {
	var user models.User
	if !c.BindJSON(&user) {
		return
	}

	res, err := uc.users.Register(c.Context(), user)
	if err != nil {
		fail(c, err, forbidden)
		return
	}
	c.OK(res)
}

// Promote handles PUT /users/admin.
func (uc *UserController) Promote(c *ctx.Context) {
	req, err := uc.users.AuthorizePromote(c.Context(), c.Principal())
	if err != nil {
		fail(c, err, forbidden)
		return
	}

	var in services.PromoteInput
	if !c.BindJSON(&in) {
		return
	}

	res, err := uc.users.Promote(c.Context(), req, in)
	if err != nil {
		fail(c, err, forbidden)
		return
	}
	c.OK(res)
}

// Show handles GET /users/{email}.
func (uc *UserController) Show(c *ctx.Context) {
	admin, err := uc.users.IsAdmin(c.Context(), c.Param("email"))
	if err != nil {
		fail(c, err, forbidden)
		return
	}
	c.OK(map[string]bool{"admin": admin})
}
