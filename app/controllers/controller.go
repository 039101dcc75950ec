// Package controllers adapts services to HTTP: authorize the caller, decode
// the request, call one service method, write its result verbatim.
package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/cubeshop/app/services"
	"github.com/shashiranjanraj/cubeshop/pkg/ctx"
)

// denial picks the plain-text answer for a refused action.
type denial func(c *ctx.Context)

var (
	forbidden    denial = (*ctx.Context).Forbidden
	unauthorized denial = (*ctx.Context).Unauthorized
)

// fail maps a service error onto a response and logs what the client
// does not see.
func fail(c *ctx.Context, err error, deny denial) {
	var invalid services.ValidationError
	switch {
	case errors.Is(err, services.ErrDenied):
		deny(c)
	case errors.As(err, &invalid):
		c.ValidationError(invalid)
	case errors.Is(err, services.ErrDuplicate):
		c.Error(http.StatusConflict, "A user with this email already exists.")
	default:
		c.InternalError(err)
	}
}
