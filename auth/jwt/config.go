package jwt

import (
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/linguacast/validation"
)

// SigningMethod names a supported JWT algorithm.
type SigningMethod string

const (
	HS256 SigningMethod = "HS256"
	HS384 SigningMethod = "HS384"
	HS512 SigningMethod = "HS512"
	// RS256 verifies tokens from an external issuer. It cannot sign.
	RS256 SigningMethod = "RS256"
)

var methods = map[SigningMethod]gojwt.SigningMethod{
	HS256: gojwt.SigningMethodHS256,
	HS384: gojwt.SigningMethodHS384,
	HS512: gojwt.SigningMethodHS512,
	RS256: gojwt.SigningMethodRS256,
}

// Config describes the token key. Supabase projects sign HS256 with the
// project JWT secret and set aud to "authenticated".
type Config struct {
	Method       SigningMethod `mapstructure:"method" validate:"oneof=HS256 HS384 HS512 RS256"`
	Secret       string        `mapstructure:"secret" validate:"required_unless=Method RS256"`
	PublicKeyPEM string        `mapstructure:"public_key_pem" validate:"required_if=Method RS256"`

	Issuer   string   `mapstructure:"issuer"`
	Audience []string `mapstructure:"audience"`

	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl" validate:"gte=0"`
	// Leeway absorbs clock skew on exp, nbf and iat.
	Leeway time.Duration `mapstructure:"leeway" validate:"gte=0"`
}

func (c *Config) ApplyDefaults() {
	if c.Method == "" {
		c.Method = HS256
	}
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = time.Hour
	}
}

func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	_, err := c.keys()
	return err
}

// keyring is the resolved key material for one method.
type keyring struct {
	method gojwt.SigningMethod
	sign   any
	verify any
}

func (c *Config) keys() (keyring, error) {
	k := keyring{method: methods[c.Method]}
	if c.Method != RS256 {
		k.sign = []byte(c.Secret)
		k.verify = k.sign
		return k, nil
	}
	pub, err := gojwt.ParseRSAPublicKeyFromPEM([]byte(c.PublicKeyPEM))
	if err != nil {
		return keyring{}, fmt.Errorf("public_key_pem: %w", err)
	}
	k.verify = pub
	return k, nil
}
