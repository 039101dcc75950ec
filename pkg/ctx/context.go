// Package ctx gives handlers a single request context with helpers for
// reading the request and writing the response.
//
//	func (c *ProductController) Show(cx *ctx.Context) {
//	    product, err := c.svc.Find(cx.Context(), cx.Param("id"))
//	    ...
//	    cx.JSON(http.StatusOK, product)
//	}
//
//	router.Get("/products/{id}", "products.show", ctx.Wrap(c.Show))
package ctx

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/cubeshop/pkg/auth"
	"github.com/shashiranjanraj/cubeshop/pkg/bind"
	"github.com/shashiranjanraj/cubeshop/pkg/logger"
	"github.com/shashiranjanraj/cubeshop/pkg/response"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// ─── Context ──────────────────────────────────────────────────────────────────

// Context wraps a request/response pair.
type Context struct {
	W http.ResponseWriter
	R *http.Request
}

// pool recycles Context objects to reduce GC pressure.
var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter (e.g. "/orders/{ref}" → c.Param("ref")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// Method returns the HTTP method of the request.
func (c *Context) Method() string { return c.R.Method }

// Path returns the request URL path.
func (c *Context) Path() string { return c.R.URL.Path }

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Principal returns the identity attached by the Identify middleware.
func (c *Context) Principal() auth.Principal {
	return auth.FromContext(c.R.Context())
}

// Log returns the request-scoped logger.
func (c *Context) Log() *slog.Logger {
	return logger.WithCtx(c.R.Context())
}

// ─── Binding ────────────────────────────────────────────────────────────────

// BindJSON decodes the JSON body into dest. A malformed body gets a 400
// and a wrongly typed field a 422; in both cases BindJSON returns false
// and the response is already written. Validation rules run later, in the
// services, once the caller has been authorized.
//
//	var input UpdateStatusInput
//	if !c.BindJSON(&input) {
//	    return
//	}
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if len(errs) > 0 {
		c.ValidationError(errs)
		return false
	}
	return true
}

// ─── Response helpers ─────────────────────────────────────────────────────────

// JSON writes v as the whole response body.
func (c *Context) JSON(code int, v any) {
	c.W.Header().Set("Content-Type", "application/json")
	c.W.WriteHeader(code)
	json.NewEncoder(c.W).Encode(v) //nolint:errcheck
}

// OK writes v with status 200.
func (c *Context) OK(v any) {
	c.JSON(http.StatusOK, v)
}

// String writes a plain-text response.
func (c *Context) String(code int, format string, args ...any) {
	response.Text(c.W, code, fmt.Sprintf(format, args...))
}

// Error sends a JSON error envelope with the given status and message.
func (c *Context) Error(code int, message string) {
	response.Error(c.W, code, message)
}

// ValidationError sends a 422 Unprocessable Entity with field-level errors.
func (c *Context) ValidationError(errs map[string]string) {
	response.ValidationError(c.W, errs)
}

// Unauthorized sends a plain-text 401.
func (c *Context) Unauthorized() {
	response.Unauthorized(c.W)
}

// Forbidden sends a plain-text 403.
func (c *Context) Forbidden() {
	response.Forbidden(c.W)
}

// InternalError logs err and sends a 500 that does not leak it.
func (c *Context) InternalError(err error) {
	c.Log().Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	response.InternalError(c.W)
}
