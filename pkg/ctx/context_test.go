package ctx_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/cubeshop/app/models"
	"github.com/shashiranjanraj/cubeshop/pkg/auth"
	appctx "github.com/shashiranjanraj/cubeshop/pkg/ctx"
)

func run(req *http.Request, h appctx.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	appctx.Wrap(h)(rec, req)
	return rec
}

func TestWrapAndJSON(t *testing.T) {
	rec := run(httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		c.OK(map[string]any{"admin": true})
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"admin":true}`, rec.Body.String())
}

func TestJSONNullBody(t *testing.T) {
	rec := run(httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		c.OK(nil)
	})

	assert.Equal(t, "null\n", rec.Body.String())
}

func TestBindJSONValid(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"shipped"}`))

	rec := run(req, func(c *appctx.Context) {
		var input struct {
			Status string `json:"status"`
		}
		if assert.True(t, c.BindJSON(&input)) {
			assert.Equal(t, "shipped", input.Status)
			c.OK(input)
		}
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBindJSONWronglyTypedField(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"userEmail":"b@x","status":7}`))

	rec := run(req, func(c *appctx.Context) {
		var order models.Order
		assert.False(t, c.BindJSON(&order))
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"status":422,"message":"Validation failed","errors":{"status":"The status field must be a string."}}`, rec.Body.String())
}

func TestBindJSONMalformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))

	rec := run(req, func(c *appctx.Context) {
		var input map[string]any
		assert.False(t, c.BindJSON(&input))
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDenials(t *testing.T) {
	rec := run(httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		c.Forbidden()
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")

	rec = run(httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		c.Unauthorized()
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", rec.Body.String())
}

func TestInternalErrorHidesCause(t *testing.T) {
	rec := run(httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		c.InternalError(errors.New("mongo: connection refused"))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "mongo")
}

func TestPrincipalDefaultsToAnonymous(t *testing.T) {
	run(httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		assert.Equal(t, auth.StateAnonymous, c.Principal().State)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithPrincipal(req.Context(), auth.Principal{Email: "a@x", State: auth.StateVerified}))
	run(req, func(c *appctx.Context) {
		assert.Equal(t, "a@x", c.Principal().Email)
	})
}
