package jwtservice_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	errorvalues "github.com/limbo/fittrack/internal/error_values"
	"github.com/limbo/fittrack/pkg/entity"
	jwtservice "github.com/limbo/fittrack/pkg/jwt_service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken(t *testing.T) {
	s := jwtservice.New("test_secret")
	user := &entity.User{ID: uuid.New(), Email: "runner@example.com"}
	token, err := s.GenerateToken(user)
	require.NoError(t, err)

	claims, err := s.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)

	t.Run("other secret", func(t *testing.T) {
		_, err := jwtservice.New("other_secret").ParseToken(token)
		assert.ErrorIs(t, err, errorvalues.ErrInvalidToken)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := s.ParseToken("not.a.token")
		assert.ErrorIs(t, err, errorvalues.ErrInvalidToken)
	})
	t.Run("expired", func(t *testing.T) {
		expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		})
		str, err := expired.SignedString([]byte("test_secret"))
		require.NoError(t, err)
		_, err = s.ParseToken(str)
		assert.ErrorIs(t, err, errorvalues.ErrInvalidToken)
	})
}

func generateKey(t *testing.T) (*rsa.PrivateKey, []byte) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return key, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

type testIDClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email,omitempty"`
	EmailVerified any    `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
}

func signIDToken(t *testing.T, key *rsa.PrivateKey, claims testIDClaims) string {
	str, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return str
}

func TestProviderVerifier(t *testing.T) {
	key, pemBytes := generateKey(t)
	otherKey, _ := generateKey(t)
	v, err := jwtservice.NewProviderVerifier(
		jwtservice.ProviderConfig{Name: "google", Audience: "fittrack-web", PublicKeyPEM: pemBytes},
		jwtservice.ProviderConfig{Name: "Apple", Issuer: "https://appleid.apple.com", Audience: "com.fittrack.app", PublicKeyPEM: pemBytes},
	)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"google", "apple"}, v.Providers())
	ctx := context.Background()
	valid := func(issuer, audience string) testIDClaims {
		return testIDClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "sub-123",
				Issuer:    issuer,
				Audience:  jwt.ClaimStrings{audience},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Email:         "runner@example.com",
			EmailVerified: true,
			Name:          "Runner",
		}
	}

	t.Run("google token", func(t *testing.T) {
		claims, err := v.Verify(ctx, "google", signIDToken(t, key, valid("https://accounts.google.com", "fittrack-web")))
		require.NoError(t, err)
		assert.Equal(t, entity.ProviderClaims{Subject: "sub-123", Email: "runner@example.com", EmailVerified: true, Name: "Runner"}, *claims)
	})
	t.Run("apple string email_verified", func(t *testing.T) {
		c := valid("https://appleid.apple.com", "com.fittrack.app")
		c.EmailVerified = "true"
		claims, err := v.Verify(ctx, "apple", signIDToken(t, key, c))
		require.NoError(t, err)
		assert.True(t, claims.EmailVerified)
	})
	t.Run("wrong audience", func(t *testing.T) {
		_, err := v.Verify(ctx, "google", signIDToken(t, key, valid("https://accounts.google.com", "someone-else")))
		assert.ErrorIs(t, err, errorvalues.ErrInvalidProviderToken)
	})
	t.Run("wrong issuer", func(t *testing.T) {
		_, err := v.Verify(ctx, "google", signIDToken(t, key, valid("https://evil.example.com", "fittrack-web")))
		assert.ErrorIs(t, err, errorvalues.ErrInvalidProviderToken)
	})
	t.Run("foreign key", func(t *testing.T) {
		_, err := v.Verify(ctx, "google", signIDToken(t, otherKey, valid("https://accounts.google.com", "fittrack-web")))
		assert.ErrorIs(t, err, errorvalues.ErrInvalidProviderToken)
	})
	t.Run("expired", func(t *testing.T) {
		c := valid("https://accounts.google.com", "fittrack-web")
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
		_, err := v.Verify(ctx, "google", signIDToken(t, key, c))
		assert.ErrorIs(t, err, errorvalues.ErrInvalidProviderToken)
	})
	t.Run("hmac token refused", func(t *testing.T) {
		str, err := jwt.NewWithClaims(jwt.SigningMethodHS256, valid("https://accounts.google.com", "fittrack-web")).SignedString(pemBytes)
		require.NoError(t, err)
		_, err = v.Verify(ctx, "google", str)
		assert.ErrorIs(t, err, errorvalues.ErrInvalidProviderToken)
	})
	t.Run("missing subject", func(t *testing.T) {
		c := valid("https://accounts.google.com", "fittrack-web")
		c.Subject = ""
		_, err := v.Verify(ctx, "google", signIDToken(t, key, c))
		assert.ErrorIs(t, err, errorvalues.ErrInvalidProviderToken)
	})
	t.Run("unknown provider", func(t *testing.T) {
		_, err := v.Verify(ctx, "facebook", "whatever")
		assert.ErrorIs(t, err, errorvalues.ErrUnknownProvider)
	})
}

func TestNewProviderVerifierErrors(t *testing.T) {
	_, pemBytes := generateKey(t)
	_, err := jwtservice.NewProviderVerifier(jwtservice.ProviderConfig{Name: "google", PublicKeyPEM: pemBytes})
	assert.Error(t, err)
	_, err = jwtservice.NewProviderVerifier(jwtservice.ProviderConfig{Name: "google", Audience: "a", PublicKeyPEM: []byte("junk")})
	assert.Error(t, err)
	_, err = jwtservice.NewProviderVerifier(jwtservice.ProviderConfig{Name: "custom", Audience: "a", PublicKeyPEM: pemBytes})
	assert.Error(t, err)
}
