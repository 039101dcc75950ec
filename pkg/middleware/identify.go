package middleware

import (
	"net/http"

	"github.com/shashiranjanraj/cubeshop/pkg/auth"
	"github.com/shashiranjanraj/cubeshop/pkg/logger"
	"github.com/shashiranjanraj/cubeshop/pkg/metrics"
)

// Identify verifies the bearer credential, if any, and stores the resulting
// auth.Principal in the request context. It never rejects: handlers decide
// what an anonymous or rejected caller may do.
//
// Wire it after Logger so rejections are logged with the request id.
func Identify(v auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := identify(r, v)
			metrics.AuthVerifications.WithLabelValues(p.State.String()).Inc()

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}

func identify(r *http.Request, v auth.Verifier) auth.Principal {
	header := r.Header.Get("Authorization")
	if header == "" {
		return auth.Principal{State: auth.StateAnonymous}
	}

	log := logger.WithCtx(r.Context())

	token, ok := auth.BearerToken(header)
	if !ok {
		log.Warn("malformed authorization header")
		return auth.Principal{State: auth.StateRejected}
	}

	email, err := v.Verify(r.Context(), token)
	if err != nil {
		log.Warn("bearer token rejected", "error", err)
		return auth.Principal{State: auth.StateRejected}
	}

	return auth.Principal{Email: email, State: auth.StateVerified}
}
