package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/cubeshop/pkg/auth"
)

const projectID = "cube-shop"

type provider struct {
	key     *rsa.PrivateKey
	kid     string
	delay   time.Duration
	fetches atomic.Int32
	srv     *httptest.Server
}

func newProvider(t *testing.T) *provider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	p := &provider{key: key, kid: "key-1"}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		p.fetches.Add(1)
		time.Sleep(p.delay)
		set := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{{
			Key:       &p.key.PublicKey,
			KeyID:     p.kid,
			Algorithm: "RS256",
			Use:       "sig",
		}}}
		w.Header().Set("Cache-Control", "public, max-age=600")
		_ = json.NewEncoder(w).Encode(set)
	}))
	t.Cleanup(p.srv.Close)
	return p
}

func (p *provider) sign(t *testing.T, kid string, claims auth.IDTokenClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	s, err := tok.SignedString(p.key)
	require.NoError(t, err)
	return s
}

func validClaims(email string) auth.IDTokenClaims {
	now := time.Now()
	return auth.IDTokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://securetoken.google.com/" + projectID,
			Audience:  jwt.ClaimStrings{projectID},
			Subject:   "uid-123",
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestJWKSVerifiesFirebaseToken(t *testing.T) {
	p := newProvider(t)
	v := auth.NewFirebaseVerifier(projectID, p.srv.URL)

	email, err := v.Verify(context.Background(), p.sign(t, p.kid, validClaims("a@x")))
	require.NoError(t, err)
	assert.Equal(t, "a@x", email)

	_, err = v.Verify(context.Background(), p.sign(t, p.kid, validClaims("b@x")))
	require.NoError(t, err)
	assert.Equal(t, int32(1), p.fetches.Load(), "key set is cached")
}

func TestJWKSRejectsWrongAudience(t *testing.T) {
	p := newProvider(t)
	v := auth.NewFirebaseVerifier(projectID, p.srv.URL)

	claims := validClaims("a@x")
	claims.Audience = jwt.ClaimStrings{"other-project"}
	_, err := v.Verify(context.Background(), p.sign(t, p.kid, claims))
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidAudience)
}

func TestJWKSRejectsWrongIssuer(t *testing.T) {
	p := newProvider(t)
	v := auth.NewFirebaseVerifier(projectID, p.srv.URL)

	claims := validClaims("a@x")
	claims.Issuer = "https://evil.example"
	_, err := v.Verify(context.Background(), p.sign(t, p.kid, claims))
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestJWKSRejectsMissingSubject(t *testing.T) {
	p := newProvider(t)
	v := auth.NewFirebaseVerifier(projectID, p.srv.URL)

	claims := validClaims("a@x")
	claims.Subject = ""
	_, err := v.Verify(context.Background(), p.sign(t, p.kid, claims))
	assert.Error(t, err)
}

func TestJWKSUnknownKidDoesNotHammerProvider(t *testing.T) {
	p := newProvider(t)
	v := auth.NewFirebaseVerifier(projectID, p.srv.URL)

	_, err := v.Verify(context.Background(), p.sign(t, p.kid, validClaims("a@x")))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = v.Verify(context.Background(), p.sign(t, "rotated", validClaims("a@x")))
		assert.Error(t, err)
	}
	assert.Equal(t, int32(1), p.fetches.Load())
}

func TestJWKSConcurrentColdStartFetchesOnce(t *testing.T) {
	p := newProvider(t)
	p.delay = 100 * time.Millisecond
	v := auth.NewFirebaseVerifier(projectID, p.srv.URL)
	token := p.sign(t, p.kid, validClaims("a@x"))

	const callers = 20
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = v.Verify(context.Background(), token)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), p.fetches.Load(), "callers share one key set fetch")
}

func TestJWKSRefreshIgnoresCallerCancellation(t *testing.T) {
	p := newProvider(t)
	v := auth.NewFirebaseVerifier(projectID, p.srv.URL)
	token := p.sign(t, p.kid, validClaims("a@x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := v.Verify(ctx, token)
	require.NoError(t, err, "the shared fetch outlives its caller")

	_, err = v.Verify(context.Background(), token)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), p.fetches.Load())
}

func TestJWKSProviderDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	p := newProvider(t)
	v := auth.NewFirebaseVerifier(projectID, srv.URL)
	_, err := v.Verify(context.Background(), p.sign(t, p.kid, validClaims("a@x")))
	assert.Error(t, err)
}
