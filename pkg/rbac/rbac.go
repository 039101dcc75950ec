// Package rbac holds the storefront's access tiers and the pure policy
// functions that decide who may read or write which resource.
//
// Every function here is deterministic and side-effect free. Handlers
// resolve the requester first (see Requester) and then ask the policy.
package rbac

// Role is the access tier stored on a user document.
type Role uint8

const (
	RoleNone Role = iota
	RoleAdmin
)

// adminName is the only role value persisted in the users collection.
const adminName = "admin"

// ParseRole maps a stored role string onto the closed Role set. Anything
// other than "admin", including the empty string, is RoleNone.
func ParseRole(s string) Role {
	if s == adminName {
		return RoleAdmin
	}
	return RoleNone
}

// String returns the stored representation of r. RoleNone has none.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return adminName
	case RoleNone:
		return ""
	}
	return ""
}

func (r Role) IsAdmin() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleNone:
		return false
	}
	return false
}

// Requester is the resolved caller of a request.
//
// Email is the verified principal, empty for anonymous callers. Known is
// true when a user document exists for Email; Role is only meaningful then.
type Requester struct {
	Email string
	Known bool
	Role  Role
}

// Anonymous is the requester with no verified identity.
var Anonymous = Requester{}

// IsAdmin reports whether r is a known user with the admin role.
func (r Requester) IsAdmin() bool {
	return r.Known && r.Role.IsAdmin()
}

// ── Users ────────────────────────────────────────────────────────────────────

func CanPromoteToAdmin(role Role) bool { return role.IsAdmin() }

// CanViewRoleFlag is public: anyone may ask whether an email is an admin.
func CanViewRoleFlag() bool { return true }

// ── Products ─────────────────────────────────────────────────────────────────

func CanCreateProduct(role Role) bool { return role.IsAdmin() }

func CanDeleteProduct(role Role) bool { return role.IsAdmin() }

func CanViewProducts() bool { return true }

// ── Orders ───────────────────────────────────────────────────────────────────

// CanCreateOrder allows any known user. Role is irrelevant.
func CanCreateOrder(r Requester) bool { return r.Known }

func CanListAllOrders(role Role) bool { return role.IsAdmin() }

// CanListOrdersForEmail allows any known user, whatever the target email.
func CanListOrdersForEmail(r Requester) bool { return r.Known }

// CanDeleteOrder allows admins and the order's owner. An empty identity
// never owns anything.
func CanDeleteOrder(role Role, ownerEmail, identity string) bool {
	if role.IsAdmin() {
		return true
	}
	return identity != "" && ownerEmail == identity
}

func CanUpdateOrderStatus(role Role) bool { return role.IsAdmin() }
