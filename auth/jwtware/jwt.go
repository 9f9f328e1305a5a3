// Package jwtware provides the bearer-token middleware guarding protected
// routes. Every request is verified independently; there is no caching of
// verification results.
package jwtware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

var ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")

// AuthClaims mirrors the claims interface from the auth package to avoid an
// import cycle.
type AuthClaims interface {
	Subject() string
	UserID() string
	Username() string
	Role() string
	HasRole(role string) bool
	IsAtLeast(minRole string) bool
}

// TokenValidator validates a raw token and returns structured claims.
// This mirrors the TokenService.Validate method from the auth package.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

type Config struct {
	// Filter skips the middleware when it returns true.
	Filter func(*fiber.Ctx) bool

	SuccessHandler fiber.Handler
	ErrorHandler   func(*fiber.Ctx, error) error

	// ContextKey is the request-local key the verified claims are stored
	// under. Defaults to "user".
	ContextKey string

	// AuthScheme is the expected Authorization header scheme. Defaults to
	// "Bearer".
	AuthScheme string

	// TokenValidator is required for token validation.
	TokenValidator TokenValidator

	// RequiredRole specifies an exact role that must be present.
	RequiredRole string
	// MinimumRole specifies the minimum role level required.
	MinimumRole string

	// ContextEnricher propagates claims to the standard Go context. If
	// provided, it is called after successful token validation.
	ContextEnricher func(c context.Context, claims AuthClaims) context.Context
}

// New builds the middleware. The gates run in order and the first failure
// short-circuits: token presence, signature and algorithm, time window,
// issuer and audience (the latter three inside the validator), then any
// role requirements.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := tokenFromHeader(c, cfg.AuthScheme)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		if err := checkRoles(claims, cfg); err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, claims)

		if cfg.ContextEnricher != nil {
			c.SetUserContext(cfg.ContextEnricher(c.UserContext(), claims))
		}

		return cfg.SuccessHandler(c)
	}
}

func configDefault(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  "error",
				"message": "Invalid or expired token",
			})
		}
	}

	if cfg.TokenValidator == nil {
		panic("AUTH: JWT middleware configuration: TokenValidator is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

// tokenFromHeader extracts the raw token from the Authorization header.
// Absence of the header, a wrong scheme, or an empty credential all count
// as a missing token.
func tokenFromHeader(c *fiber.Ctx, authScheme string) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", ErrJWTMissingOrMalformed
	}

	if authScheme == "" {
		return header, nil
	}

	l := len(authScheme)
	if len(header) <= l+1 || !strings.EqualFold(header[:l], authScheme) || header[l] != ' ' {
		return "", ErrJWTMissingOrMalformed
	}

	token := strings.TrimSpace(header[l+1:])
	if token == "" {
		return "", ErrJWTMissingOrMalformed
	}

	return token, nil
}

func checkRoles(claims AuthClaims, cfg Config) error {
	if cfg.RequiredRole == "" && cfg.MinimumRole == "" {
		return nil
	}

	if cfg.RequiredRole != "" && !claims.HasRole(cfg.RequiredRole) {
		return goerrors.New(
			fmt.Sprintf("access denied: required role '%s' not found", cfg.RequiredRole),
			goerrors.CategoryAuthz,
		).WithCode(goerrors.CodeForbidden).WithTextCode("ACCESS_DENIED")
	}

	if cfg.MinimumRole != "" && !claims.IsAtLeast(cfg.MinimumRole) {
		return goerrors.New(
			fmt.Sprintf("access denied: minimum role '%s' required", cfg.MinimumRole),
			goerrors.CategoryAuthz,
		).WithCode(goerrors.CodeForbidden).WithTextCode("ACCESS_DENIED")
	}

	return nil
}
