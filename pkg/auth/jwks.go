package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	shophttp "github.com/shashiranjanraj/cubeshop/pkg/http"
)

const (
	defaultKeyTTL   = time.Hour
	minRefreshEvery = time.Minute
	firebaseIssuer  = "https://securetoken.google.com/"
)

var errUnknownKey = errors.New("auth: unknown signing key")

// IDTokenClaims is the subset of a Firebase / OIDC ID token the storefront
// reads.
type IDTokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWKSVerifier checks RS256 ID tokens against a published JSON Web Key Set,
// the way the Firebase Admin SDK does: issuer, audience, expiry, issued-at
// and a non-empty subject are all enforced.
type JWKSVerifier struct {
	jwksURL  string
	issuer   string
	audience string
	client   *http.Client
	now      func() time.Time

	// refreshes collapses concurrent fetches into one request.
	refreshes singleflight.Group

	mu        sync.RWMutex
	keys      jose.JSONWebKeySet
	expiresAt time.Time
	fetchedAt time.Time
}

// JWKSOption configures a JWKSVerifier.
type JWKSOption func(*JWKSVerifier)

// WithHTTPClient replaces the client used to fetch the key set. The
// default is the shared outgoing client.
func WithHTTPClient(c *http.Client) JWKSOption {
	return func(v *JWKSVerifier) { v.client = c }
}

// WithIssuer overrides the expected iss claim.
func WithIssuer(iss string) JWKSOption {
	return func(v *JWKSVerifier) { v.issuer = iss }
}

// NewFirebaseVerifier verifies ID tokens minted for projectID.
func NewFirebaseVerifier(projectID, jwksURL string, opts ...JWKSOption) *JWKSVerifier {
	v := &JWKSVerifier{
		jwksURL:  jwksURL,
		issuer:   firebaseIssuer + projectID,
		audience: projectID,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify validates t and returns its email claim.
func (v *JWKSVerifier) Verify(ctx context.Context, t string) (string, error) {
	var claims IDTokenClaims
	_, err := jwt.ParseWithClaims(t, &claims, func(tok *jwt.Token) (interface{}, error) {
		kid, _ := tok.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("auth: token header has no kid")
		}
		return v.key(ctx, kid)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return "", fmt.Errorf("auth: id token: %w", err)
	}

	if claims.ExpiresAt == nil {
		return "", errors.New("auth: id token has no exp")
	}
	if claims.Subject == "" {
		return "", errors.New("auth: id token has no sub")
	}
	if claims.Email == "" {
		return "", ErrNoEmail
	}
	return claims.Email, nil
}

// key returns the public key for kid, refreshing the cached set when it has
// expired or when kid is unknown and the last fetch is not too recent.
func (v *JWKSVerifier) key(ctx context.Context, kid string) (interface{}, error) {
	v.mu.RLock()
	k, found := lookup(v.keys, kid)
	fresh := v.now().Before(v.expiresAt)
	recent := v.now().Sub(v.fetchedAt) < minRefreshEvery
	v.mu.RUnlock()

	if found && fresh {
		return k, nil
	}
	if !found && fresh && recent {
		return nil, errUnknownKey
	}

	_, err, _ := v.refreshes.Do("jwks", func() (interface{}, error) {
		// Waiters share this fetch, so one caller's cancellation must not
		// fail the rest. The per-attempt timeout still bounds it.
		return nil, v.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		if found {
			// Keep serving the stale key while the provider is unreachable.
			return k, nil
		}
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	if k, ok := lookup(v.keys, kid); ok {
		return k, nil
	}
	return nil, errUnknownKey
}

func lookup(set jose.JSONWebKeySet, kid string) (interface{}, bool) {
	for _, k := range set.Key(kid) {
		if k.Valid() && k.IsPublic() {
			return k.Key, true
		}
	}
	return nil, false
}

func (v *JWKSVerifier) refresh(ctx context.Context) error {
	resp, err := shophttp.Get(v.jwksURL).
		WithContext(ctx).
		Client(v.client).
		Timeout(10 * time.Second).
		Retry(2, 200*time.Millisecond).
		Send()
	if err != nil {
		return fmt.Errorf("auth: jwks fetch: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth: jwks fetch: unexpected status %d", resp.StatusCode)
	}

	var set jose.JSONWebKeySet
	if err := resp.JSON(&set); err != nil {
		return fmt.Errorf("auth: jwks decode: %w", err)
	}

	now := v.now()
	v.mu.Lock()
	v.keys = set
	v.fetchedAt = now
	v.expiresAt = now.Add(maxAge(resp.Header("Cache-Control")))
	v.mu.Unlock()
	return nil
}

// maxAge reads max-age from a Cache-Control header, falling back to an hour.
func maxAge(header string) time.Duration {
	for _, directive := range strings.Split(header, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(directive), "=")
		if !ok || !strings.EqualFold(name, "max-age") {
			continue
		}
		if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultKeyTTL
}
