package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/cubeshop/pkg/validate"
)

type registration struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"display_name,omitempty" validate:"omitempty,min=2,max=20"`
	Qty   int    `json:"qty" validate:"omitempty,min=1"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(registration{Email: "b@x.io", Name: "bee"})
	assert.False(t, validate.HasErrors(errs), "%v", errs)
}

func TestRequiredUsesJSONName(t *testing.T) {
	errs := validate.Struct(registration{})
	assert.Equal(t, map[string]string{"email": "The email field is required."}, errs)
}

func TestEmailRule(t *testing.T) {
	errs := validate.Struct(registration{Email: "not-an-email"})
	assert.Equal(t, "The email must be a valid email address.", errs["email"])
}

func TestLengthAndNumberMessages(t *testing.T) {
	errs := validate.Struct(&registration{Email: "b@x.io", Name: "b", Qty: -1})
	assert.Equal(t, "The display_name must be at least 2 characters.", errs["display_name"])
	assert.Equal(t, "The qty must be at least 1.", errs["qty"])
}

func TestNonStructIsValid(t *testing.T) {
	assert.Empty(t, validate.Struct(42))
}
