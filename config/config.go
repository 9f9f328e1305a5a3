package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config is the immutable process configuration. It is loaded exactly once
// at startup and handed to components by reference; nothing mutates it after
// Load returns.
type Config struct {
	Server      Server      `envPrefix:"SERVER_"`
	Auth        Auth        `envPrefix:"AUTH_"`
	Persistence Persistence `envPrefix:"DB_"`
}

type Server struct {
	Addr        string `env:"ADDR" envDefault:":9000"`
	APIPrefix   string `env:"API_PREFIX" envDefault:"/api"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000"`
}

// Auth carries the signing material and token policy. The signing key is
// required: a process without it must not come up.
type Auth struct {
	SigningKey      string   `env:"SIGNING_KEY,required"`
	SigningMethod   string   `env:"SIGNING_METHOD" envDefault:"HS256"`
	TokenExpiration int      `env:"TOKEN_EXPIRATION" envDefault:"1"`
	Issuer          string   `env:"ISSUER" envDefault:"tasknest"`
	Audience        []string `env:"AUDIENCE" envDefault:"tasknest-api"`
	ContextKey      string   `env:"CONTEXT_KEY" envDefault:"user"`
	AuthScheme      string   `env:"SCHEME" envDefault:"Bearer"`
}

type Persistence struct {
	DSN string `env:"DSN" envDefault:"file:tasknest.db?cache=shared"`
}

// Load parses the environment into a Config. A missing signing key surfaces
// here so main can treat it as a fatal startup condition.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg, nil
}

// GetSigningKey returns the symmetric signing secret. Never log this value.
func (a Auth) GetSigningKey() string { return a.SigningKey }

// GetSigningMethod returns the fixed token signing algorithm.
func (a Auth) GetSigningMethod() string { return a.SigningMethod }

// GetTokenExpiration returns the token lifetime in hours.
func (a Auth) GetTokenExpiration() int { return a.TokenExpiration }

// GetIssuer returns the iss claim value minted into and required from tokens.
func (a Auth) GetIssuer() string { return a.Issuer }

// GetAudience returns the aud claim values minted into and required from tokens.
func (a Auth) GetAudience() []string { return a.Audience }

// GetContextKey returns the request-local key the middleware stores claims under.
func (a Auth) GetContextKey() string { return a.ContextKey }

// GetAuthScheme returns the Authorization header scheme, normally Bearer.
func (a Auth) GetAuthScheme() string { return a.AuthScheme }

// Origins splits the configured CORS origin list.
func (s Server) Origins() []string {
	parts := strings.Split(s.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
