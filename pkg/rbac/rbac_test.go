package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/cubeshop/pkg/rbac"
)

func TestParseRole(t *testing.T) {
	cases := map[string]rbac.Role{
		"admin":  rbac.RoleAdmin,
		"":       rbac.RoleNone,
		"none":   rbac.RoleNone,
		"Admin":  rbac.RoleNone,
		"admin ": rbac.RoleNone,
		"root":   rbac.RoleNone,
	}
	for in, want := range cases {
		assert.Equal(t, want, rbac.ParseRole(in), "ParseRole(%q)", in)
	}
	assert.Equal(t, "admin", rbac.RoleAdmin.String())
	assert.Equal(t, "", rbac.RoleNone.String())
}

func TestAdminOnlyPolicies(t *testing.T) {
	policies := map[string]func(rbac.Role) bool{
		"promote":        rbac.CanPromoteToAdmin,
		"create product": rbac.CanCreateProduct,
		"delete product": rbac.CanDeleteProduct,
		"list orders":    rbac.CanListAllOrders,
		"update status":  rbac.CanUpdateOrderStatus,
	}
	for name, can := range policies {
		assert.True(t, can(rbac.RoleAdmin), "%s: admin must be allowed", name)
		assert.False(t, can(rbac.RoleNone), "%s: none must be denied", name)
	}
}

func TestPublicPolicies(t *testing.T) {
	assert.True(t, rbac.CanViewRoleFlag())
	assert.True(t, rbac.CanViewProducts())
}

func TestKnownUserPolicies(t *testing.T) {
	known := rbac.Requester{Email: "b@x", Known: true, Role: rbac.RoleNone}
	admin := rbac.Requester{Email: "a@x", Known: true, Role: rbac.RoleAdmin}
	stranger := rbac.Requester{Email: "c@x"}

	for _, can := range []func(rbac.Requester) bool{rbac.CanCreateOrder, rbac.CanListOrdersForEmail} {
		assert.True(t, can(known))
		assert.True(t, can(admin))
		assert.False(t, can(stranger))
		assert.False(t, can(rbac.Anonymous))
	}
}

func TestCanDeleteOrder(t *testing.T) {
	tests := []struct {
		name     string
		role     rbac.Role
		owner    string
		identity string
		want     bool
	}{
		{"owner without role", rbac.RoleNone, "b@x", "b@x", true},
		{"other user", rbac.RoleNone, "b@x", "c@x", false},
		{"admin on foreign order", rbac.RoleAdmin, "b@x", "a@x", true},
		{"anonymous", rbac.RoleNone, "b@x", "", false},
		{"anonymous on ownerless order", rbac.RoleNone, "", "", false},
		{"case differs", rbac.RoleNone, "B@x", "b@x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rbac.CanDeleteOrder(tt.role, tt.owner, tt.identity))
		})
	}
}

func TestRequesterIsAdmin(t *testing.T) {
	assert.True(t, rbac.Requester{Email: "a@x", Known: true, Role: rbac.RoleAdmin}.IsAdmin())
	assert.False(t, rbac.Requester{Email: "a@x", Role: rbac.RoleAdmin}.IsAdmin())
	assert.False(t, rbac.Anonymous.IsAdmin())
}
