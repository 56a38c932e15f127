// Package jwt signs and verifies linguacast access tokens. Tokens follow
// the Supabase layout: sub is the user id, aud is usually "authenticated"
// and role names the Postgres role.
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// ErrSigningUnsupported is returned by Sign for verification-only methods.
var ErrSigningUnsupported = errors.New("jwt: signing not supported for verification-only method")

// Claims are the claims carried by user tokens.
type Claims struct {
	gojwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Service signs and parses Claims with one configured key.
type Service struct {
	cfg    Config
	keys   keyring
	parser *gojwt.Parser
	now    func() time.Time
}

// NewService validates cfg and returns a Service.
func NewService(cfg *Config) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	keys, err := cfg.keys()
	if err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	s := &Service{cfg: *cfg, keys: keys, now: time.Now}
	s.parser = gojwt.NewParser(s.parserOptions()...)
	return s, nil
}

// Sign signs claims exactly as given.
func (s *Service) Sign(claims *Claims) (string, error) {
	if s.keys.sign == nil {
		return "", ErrSigningUnsupported
	}
	signed, err := gojwt.NewWithClaims(s.keys.method, claims).SignedString(s.keys.sign)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// Issue fills the unset iat, exp, iss and aud claims from the config and
// signs the result.
func (s *Service) Issue(claims *Claims) (string, error) {
	now := s.now()
	if claims.IssuedAt == nil {
		claims.IssuedAt = gojwt.NewNumericDate(now)
	}
	if claims.ExpiresAt == nil && s.cfg.AccessTokenTTL > 0 {
		claims.ExpiresAt = gojwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL))
	}
	if claims.Issuer == "" {
		claims.Issuer = s.cfg.Issuer
	}
	if len(claims.Audience) == 0 && len(s.cfg.Audience) > 0 {
		claims.Audience = s.cfg.Audience
	}
	return s.Sign(claims)
}

// Parse verifies the signature, the time claims and the configured issuer
// and audience.
func (s *Service) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	if _, err := s.parser.ParseWithClaims(token, claims, s.keyFunc); err != nil {
		return nil, fmt.Errorf("jwt: parse token: %w", err)
	}
	return claims, nil
}

func (s *Service) keyFunc(*gojwt.Token) (any, error) {
	return s.keys.verify, nil
}

func (s *Service) parserOptions() []gojwt.ParserOption {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{s.keys.method.Alg()}),
		gojwt.WithTimeFunc(func() time.Time { return s.now() }),
		gojwt.WithIssuedAt(),
	}
	if s.cfg.Leeway > 0 {
		opts = append(opts, gojwt.WithLeeway(s.cfg.Leeway))
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.cfg.Issuer))
	}
	if len(s.cfg.Audience) > 0 {
		opts = append(opts, gojwt.WithAudience(s.cfg.Audience[0]))
	}
	return opts
}
