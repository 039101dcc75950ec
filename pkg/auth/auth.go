// Package auth verifies bearer credentials and carries the resulting
// principal through the request context.
//
// Verification is best-effort: a missing or bad credential never rejects a
// request here. It only decides which State the principal ends up in, and
// handlers enforce their own requirements.
package auth

import (
	"context"
	"errors"
	"strings"
)

// ErrNoEmail is returned when a token verifies but carries no email.
var ErrNoEmail = errors.New("auth: token has no email claim")

// Verifier turns a bearer token into a verified principal identifier.
type Verifier interface {
	Verify(ctx context.Context, token string) (email string, err error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, token string) (string, error)

func (f VerifierFunc) Verify(ctx context.Context, token string) (string, error) {
	return f(ctx, token)
}

// State tells apart the ways a request can end up with or without an
// identity.
type State uint8

const (
	// StateAnonymous: no bearer credential was presented.
	StateAnonymous State = iota
	// StateRejected: a credential was presented but failed verification.
	StateRejected
	// StateVerified: the credential verified and Email is trusted.
	StateVerified
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateRejected:
		return "rejected"
	case StateVerified:
		return "verified"
	}
	return "unknown"
}

// Principal is the identity the system believes is making the request.
type Principal struct {
	Email string
	State State
}

// Verified reports whether p carries a trusted email.
func (p Principal) Verified() bool {
	return p.State == StateVerified && p.Email != ""
}

type ctxKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal stored in ctx, or an anonymous one.
func FromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(ctxKey{}).(Principal); ok {
		return p
	}
	return Principal{State: StateAnonymous}
}

// BearerToken extracts the token from an Authorization header value. The
// scheme must be exactly "Bearer " and the token non-empty.
func BearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
