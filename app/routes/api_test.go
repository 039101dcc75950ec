package routes_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/cubeshop/app/models"
	"github.com/shashiranjanraj/cubeshop/app/repositories"
	"github.com/shashiranjanraj/cubeshop/app/services"
	"github.com/shashiranjanraj/cubeshop/internal/kernel"
	"github.com/shashiranjanraj/cubeshop/pkg/auth"
)

// Tokens are "tok:<email>"; anything else fails verification.
var verifier = auth.VerifierFunc(func(_ context.Context, token string) (string, error) {
	if email, ok := strings.CutPrefix(token, "tok:"); ok && email != "" {
		return email, nil
	}
	return "", errors.New("invalid token")
})

type shop struct {
	t       *testing.T
	store   repositories.Store
	handler http.Handler
}

func newShop(t *testing.T) *shop {
	t.Helper()
	return newShopWith(t, services.Options{})
}

func newShopWith(t *testing.T, opts services.Options) *shop {
	t.Helper()
	ctx := context.Background()
	store := repositories.NewMemoryStore()

	_, err := store.Users.Create(ctx, models.User{Email: "a@x", Role: "admin"})
	require.NoError(t, err)
	_, err = store.Users.Create(ctx, models.User{Email: "b@x"})
	require.NoError(t, err)

	return serve(t, store, opts)
}

func serve(t *testing.T, store repositories.Store, opts services.Options) *shop {
	t.Helper()
	k := kernel.NewHTTPKernel(kernel.Deps{
		Store:              store,
		Verifier:           verifier,
		Services:           opts,
		RateLimitPerMinute: 100_000,
	})
	return &shop{t: t, store: store, handler: k.Handler()}
}

// do sends a request as email; an empty email sends no credential.
func (s *shop) do(method, path, email, body string) *httptest.ResponseRecorder {
	s.t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if email != "" {
		req.Header.Set("Authorization", "Bearer tok:"+email)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *shop) role(email string) string {
	s.t.Helper()
	u, err := s.store.Users.FindByEmail(context.Background(), email)
	require.NoError(s.t, err)
	return u.Role
}

func (s *shop) orderCount() int {
	s.t.Helper()
	all, err := s.store.Orders.All(context.Background())
	require.NoError(s.t, err)
	return len(all)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// ── Users ────────────────────────────────────────────────────────────────────

func TestPromotionDeniedForNonAdmins(t *testing.T) {
	s := newShop(t)
	_, err := s.store.Users.Create(context.Background(), models.User{Email: "d@x"})
	require.NoError(t, err)

	for _, who := range []string{"b@x", "c@x", "d@x", ""} {
		rec := s.do(http.MethodPut, "/users/admin", who, `{"email":"d@x"}`)

		assert.Equal(t, http.StatusForbidden, rec.Code, "requester %q", who)
		assert.Equal(t, "Access denied", rec.Body.String())
	}
	assert.Empty(t, s.role("d@x"))
	assert.Empty(t, s.role("b@x"))
	assert.Equal(t, "admin", s.role("a@x"))
}

func TestPromotionIsIdempotent(t *testing.T) {
	s := newShop(t)

	first := s.do(http.MethodPut, "/users/admin", "a@x", `{"email":"b@x"}`)
	require.Equal(t, http.StatusOK, first.Code)
	assert.JSONEq(t, `{"acknowledged":true,"matchedCount":1,"modifiedCount":1,"upsertedCount":0,"upsertedId":null}`, first.Body.String())

	again := s.do(http.MethodPut, "/users/admin", "a@x", `{"email":"b@x"}`)
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, float64(0), decode(t, again)["modifiedCount"])
	assert.Equal(t, "admin", s.role("b@x"))

	flag := s.do(http.MethodGet, "/users/b@x", "", "")
	assert.JSONEq(t, `{"admin":true}`, flag.Body.String())
}

func TestRoleFlag(t *testing.T) {
	s := newShop(t)

	for email, want := range map[string]string{
		"a@x":     `{"admin":true}`,
		"b@x":     `{"admin":false}`,
		"ghost@x": `{"admin":false}`,
		"A@x":     `{"admin":false}`,
		"admin":   `{"admin":false}`,
	} {
		rec := s.do(http.MethodGet, "/users/"+email, "", "")
		require.Equal(t, http.StatusOK, rec.Code, email)
		assert.JSONEq(t, want, rec.Body.String(), email)
	}
}

func TestRegister(t *testing.T) {
	s := newShop(t)

	rec := s.do(http.MethodPost, "/users", "", `{"email":"d@x","role":"admin","displayName":"Dee"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["acknowledged"])
	assert.NotEmpty(t, body["insertedId"])
	assert.Empty(t, s.role("d@x"), "self-registration cannot mint admins")

	u, err := s.store.Users.FindByEmail(context.Background(), "d@x")
	require.NoError(t, err)
	assert.Equal(t, "Dee", u.Extra["displayName"])

	rec = s.do(http.MethodPost, "/users", "", `{"email":"d@x"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/users", "", `{"displayName":"no email"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec)["errors"], "email")

	rec = s.do(http.MethodPost, "/users", "", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ── Products ─────────────────────────────────────────────────────────────────

func TestProductScenario(t *testing.T) {
	s := newShop(t)

	rec := s.do(http.MethodPost, "/products", "b@x", `{"name":"cube"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied", rec.Body.String())
	assert.JSONEq(t, `[]`, s.do(http.MethodGet, "/products", "", "").Body.String())

	rec = s.do(http.MethodPost, "/products", "a@x", `{"name":"cube"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	id, ok := decode(t, rec)["insertedId"].(string)
	require.True(t, ok)

	rec = s.do(http.MethodGet, "/products/"+id, "b@x", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"_id":"`+id+`","name":"cube"}`, rec.Body.String())

	rec = s.do(http.MethodDelete, "/products/"+id, "b@x", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/products/"+id, "", "").Code)
	assert.JSONEq(t, `[{"_id":"`+id+`","name":"cube"}]`, s.do(http.MethodGet, "/products", "", "").Body.String())

	rec = s.do(http.MethodDelete, "/products/"+id, "a@x", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"acknowledged":true,"deletedCount":1}`, rec.Body.String())
}

func TestProductShowUnknownIsNull(t *testing.T) {
	s := newShop(t)

	for _, id := range []string{"65f000000000000000000000", "not-an-object-id"} {
		rec := s.do(http.MethodGet, "/products/"+id, "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
	}
}

// ── Orders ───────────────────────────────────────────────────────────────────

func TestCreateOrderRequiresKnownUser(t *testing.T) {
	s := newShop(t)

	for _, who := range []string{"c@x", ""} {
		rec := s.do(http.MethodPost, "/orders", who, `{"userEmail":"c@x","status":"pending"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Unauthorized", rec.Body.String())
	}
	assert.Zero(t, s.orderCount())

	rec := s.do(http.MethodPost, "/orders", "b@x", `{"userEmail":"b@x","status":"pending","items":[{"sku":"3x3"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, s.orderCount())
}

func TestRejectedTokenIsAnonymous(t *testing.T) {
	s := newShop(t)

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"userEmail":"b@x"}`))
	req.Header.Set("Authorization", "Bearer forged")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, s.orderCount())
}

func TestOrderOwnerBinding(t *testing.T) {
	s := newShopWith(t, services.Options{BindOrderOwner: true})

	rec := s.do(http.MethodPost, "/orders", "b@x", `{"userEmail":"a@x"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	mine := s.do(http.MethodGet, "/orders/b@x", "b@x", "")
	var orders []map[string]any
	require.NoError(t, json.Unmarshal(mine.Body.Bytes(), &orders))
	assert.Len(t, orders, 1)
}

func TestListOrders(t *testing.T) {
	s := newShop(t)
	s.do(http.MethodPost, "/orders", "b@x", `{"userEmail":"b@x","status":"pending"}`)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/orders", "b@x", "").Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/orders", "", "").Code)

	rec := s.do(http.MethodGet, "/orders", "a@x", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 1)
	assert.Equal(t, "b@x", all[0]["userEmail"])

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/orders/b@x", "c@x", "").Code)

	// Any known user may list any email's orders.
	rec = s.do(http.MethodGet, "/orders/b@x", "a@x", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userEmail":"b@x"`)

	rec = s.do(http.MethodGet, "/orders/nobody@x", "b@x", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestUpdateOrderStatus(t *testing.T) {
	s := newShop(t)
	_, err := s.store.Orders.Create(context.Background(), models.Order{ID: "1", UserEmail: "b@x", Status: "pending"})
	require.NoError(t, err)

	rec := s.do(http.MethodPut, "/orders/1", "b@x", `{"status":"shipped"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPut, "/orders/1", "a@x", `{"status":"shipped"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["modifiedCount"])

	rec = s.do(http.MethodPut, "/orders/missing", "a@x", `{"status":"shipped"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["matchedCount"])
}

func TestDeleteOrderByOwnerAndOthers(t *testing.T) {
	s := newShop(t)
	ctx := context.Background()
	_, err := s.store.Users.Create(ctx, models.User{Email: "d@x"})
	require.NoError(t, err)
	_, err = s.store.Orders.Create(ctx, models.Order{ID: "1", UserEmail: "b@x", Status: "pending"})
	require.NoError(t, err)

	for _, who := range []string{"d@x", "c@x", ""} {
		rec := s.do(http.MethodDelete, "/orders/1", who, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "requester %q", who)
	}
	assert.Equal(t, 1, s.orderCount())

	rec := s.do(http.MethodDelete, "/orders/1", "b@x", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"acknowledged":true,"deletedCount":1}`, rec.Body.String())
	assert.Zero(t, s.orderCount())
}

func TestOrderScenario(t *testing.T) {
	s := newShop(t)
	_, err := s.store.Orders.Create(context.Background(), models.Order{ID: "1", UserEmail: "b@x", Status: "pending"})
	require.NoError(t, err)

	rec := s.do(http.MethodDelete, "/orders/1", "b@x", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, s.orderCount())

	rec = s.do(http.MethodDelete, "/orders/1", "c@x", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"acknowledged":true,"deletedCount":0}`, rec.Body.String())
}

func TestAdminDeletesAnyOrder(t *testing.T) {
	s := newShop(t)
	_, err := s.store.Orders.Create(context.Background(), models.Order{ID: "1", UserEmail: "b@x"})
	require.NoError(t, err)

	rec := s.do(http.MethodDelete, "/orders/1", "a@x", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["deletedCount"])
}

// ── Operational ──────────────────────────────────────────────────────────────

func TestHomeHealthAndMetrics(t *testing.T) {
	s := newShop(t)

	rec := s.do(http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello World!", rec.Body.String())

	rec = s.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cubeshop_http_requests_total")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

// ── Ordering and input handling ──────────────────────────────────────────────

func TestDenialPrecedesBodyDecoding(t *testing.T) {
	s := newShop(t)
	_, err := s.store.Orders.Create(context.Background(), models.Order{ID: "1", UserEmail: "b@x"})
	require.NoError(t, err)

	tests := []struct {
		method, path, who, body string
		code                    int
		text                    string
	}{
		{http.MethodPut, "/users/admin", "b@x", "", http.StatusForbidden, "Access denied"},
		{http.MethodPut, "/users/admin", "", "{", http.StatusForbidden, "Access denied"},
		{http.MethodPost, "/products", "b@x", "{", http.StatusForbidden, "Access denied"},
		{http.MethodPost, "/orders", "c@x", "{", http.StatusUnauthorized, "Unauthorized"},
		{http.MethodPost, "/orders", "", `{"status":5}`, http.StatusUnauthorized, "Unauthorized"},
		{http.MethodPut, "/orders/1", "b@x", "", http.StatusUnauthorized, "Unauthorized"},
	}
	for _, tt := range tests {
		rec := s.do(tt.method, tt.path, tt.who, tt.body)
		assert.Equal(t, tt.code, rec.Code, "%s %s as %q", tt.method, tt.path, tt.who)
		assert.Equal(t, tt.text, rec.Body.String())
	}
	assert.Equal(t, 1, s.orderCount(), "nothing was written")
}

func TestApprovedCallerStillGetsInputErrors(t *testing.T) {
	s := newShop(t)

	rec := s.do(http.MethodPut, "/users/admin", "a@x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, "/users/admin", "a@x", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, map[string]any{"email": "The email field is required."}, decode(t, rec)["errors"])

	rec = s.do(http.MethodPost, "/products", "a@x", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderStatusIsFreeForm(t *testing.T) {
	s := newShop(t)
	_, err := s.store.Orders.Create(context.Background(), models.Order{ID: "1", UserEmail: "b@x", Status: "pending"})
	require.NoError(t, err)

	rec := s.do(http.MethodPut, "/orders/1", "a@x", `{"status":""}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), decode(t, rec)["modifiedCount"])

	orders, err := s.store.Orders.FindByEmail(context.Background(), "b@x")
	require.NoError(t, err)
	assert.Empty(t, orders[0].Status)

	rec = s.do(http.MethodPut, "/orders/1", "a@x", `{"status":7}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, map[string]any{"status": "The status field must be a string."}, decode(t, rec)["errors"])
}

func TestOrderKnownFieldsMustBeStrings(t *testing.T) {
	s := newShop(t)

	for _, body := range []string{`{"userEmail":"b@x","status":5}`, `{"userEmail":123}`} {
		rec := s.do(http.MethodPost, "/orders", "b@x", body)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, body)
	}
	assert.Zero(t, s.orderCount())
}

// ── Store faults ─────────────────────────────────────────────────────────────

type faultyUsers struct{ repositories.UserRepository }

func (faultyUsers) FindByEmail(context.Context, string) (models.User, error) {
	return models.User{}, errors.New("server selection timeout")
}

func TestStoreFaultIsInternalError(t *testing.T) {
	store := repositories.NewMemoryStore()
	store.Users = faultyUsers{store.Users}
	s := serve(t, store, services.Options{})

	for _, req := range []struct{ method, path, who, body string }{
		{http.MethodGet, "/users/a@x", "", ""},
		{http.MethodPut, "/users/admin", "a@x", `{"email":"b@x"}`},
		{http.MethodPost, "/orders", "b@x", `{"userEmail":"b@x"}`},
	} {
		rec := s.do(req.method, req.path, req.who, req.body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, req.path)
		assert.JSONEq(t, `{"status":500,"message":"Internal Server Error"}`, rec.Body.String())
	}
}

func TestHealthzReportsUnreachableStore(t *testing.T) {
	store := repositories.NewMemoryStore().WithPing(func(context.Context) error {
		return errors.New("no reachable servers")
	})
	s := serve(t, store, services.Options{})

	rec := s.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())
}
