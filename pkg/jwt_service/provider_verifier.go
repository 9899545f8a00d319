package jwtservice

import (
	"context"
	"crypto/rsa"
	"errors"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	errorvalues "github.com/limbo/fittrack/internal/error_values"
	"github.com/limbo/fittrack/pkg/entity"
)

const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
	ProviderApple    = "apple"
)

// Issuers used when the configuration leaves them empty
var DefaultIssuers = map[string]string{
	ProviderGoogle:   "https://accounts.google.com",
	ProviderFacebook: "https://www.facebook.com",
	ProviderApple:    "https://appleid.apple.com",
}

type ProviderConfig struct {
	Name         string
	Issuer       string
	Audience     string
	PublicKeyPEM []byte
}

type provider struct {
	issuer   string
	audience string
	key      *rsa.PublicKey
}

// ProviderVerifier checks RS256 ID tokens issued by the configured identity providers.
type ProviderVerifier struct {
	providers map[string]provider
}

func NewProviderVerifier(configs ...ProviderConfig) (*ProviderVerifier, error) {
	v := &ProviderVerifier{
		providers: make(map[string]provider, len(configs)),
	}
	for _, cfg := range configs {
		name := strings.ToLower(cfg.Name)
		if cfg.Audience == "" {
			return nil, errors.New("empty audience for provider " + name)
		}
		key, err := jwt.ParseRSAPublicKeyFromPEM(cfg.PublicKeyPEM)
		if err != nil {
			return nil, errors.New("parsing public key of provider " + name + " error: " + err.Error())
		}
		issuer := cfg.Issuer
		if issuer == "" {
			issuer = DefaultIssuers[name]
		}
		if issuer == "" {
			return nil, errors.New("empty issuer for provider " + name)
		}
		v.providers[name] = provider{
			issuer:   issuer,
			audience: cfg.Audience,
			key:      key,
		}
	}
	return v, nil
}

func (v *ProviderVerifier) Providers() []string {
	names := make([]string, 0, len(v.providers))
	for name := range v.providers {
		names = append(names, name)
	}
	return names
}

type idTokenClaims struct {
	jwt.RegisteredClaims
	Email         string   `json:"email"`
	EmailVerified flexBool `json:"email_verified"`
	Name          string   `json:"name"`
}

func (v *ProviderVerifier) Verify(_ context.Context, providerName, idToken string) (*entity.ProviderClaims, error) {
	p, ok := v.providers[strings.ToLower(providerName)]
	if !ok {
		return nil, errorvalues.ErrUnknownProvider
	}
	var claims idTokenClaims
	token, err := jwt.ParseWithClaims(idToken, &claims, func(t *jwt.Token) (any, error) {
		return p.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Join(errorvalues.ErrInvalidProviderToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errorvalues.ErrInvalidProviderToken
	}
	return &entity.ProviderClaims{
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: bool(claims.EmailVerified),
		Name:          claims.Name,
	}, nil
}

// flexBool accepts both true and "true", providers disagree on the type
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*b = false
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*b = flexBool(v)
	return nil
}
