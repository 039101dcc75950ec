package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/shashiranjanraj/cubeshop/pkg/reqid"
)

// CORS allows the storefront front-end to call the API from the given
// origins. "*" allows any origin; credentials are never allowed with it.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", reqid.Header},
		ExposedHeaders: []string{reqid.Header},
		MaxAge:         300,
	})
}
