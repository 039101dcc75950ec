package routes_test

import (
	"net/http"
	"testing"

	"github.com/shashiranjanraj/cubeshop/pkg/testkit"
)

func TestScenarios(t *testing.T) {
	testkit.RunDir(t, "testdata", func(t *testing.T) http.Handler {
		return newShop(t).handler
	}, testkit.Bearer("tok:"))
}
