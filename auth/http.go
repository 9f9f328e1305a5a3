package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/tasknest/tasknest/auth/jwtware"
)

// ProtectedRoute builds the identity middleware. Verified claims end up both
// in fiber locals (under the configured context key) and in the request's
// standard context, where downstream handlers read them via GetClaims.
func ProtectedRoute(cfg Config, validator TokenService, errorHandler func(*fiber.Ctx, error) error) fiber.Handler {
	return jwtware.New(jwtware.Config{
		ErrorHandler:   errorHandler,
		ContextKey:     cfg.GetContextKey(),
		AuthScheme:     cfg.GetAuthScheme(),
		TokenValidator: tokenValidatorAdapter{validator},
		ContextEnricher: func(ctx context.Context, claims jwtware.AuthClaims) context.Context {
			if ac, ok := claims.(AuthClaims); ok {
				return WithClaimsContext(ctx, ac)
			}
			return ctx
		},
	})
}

type tokenValidatorAdapter struct {
	service TokenService
}

func (a tokenValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := a.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// RenderError is the single HTTP error mapper for the API. Categories map to
// stable status classes; internal causes never reach the response body.
func RenderError(logger Logger) func(*fiber.Ctx, error) error {
	if logger == nil {
		logger = defLogger{}
	}

	return func(c *fiber.Ctx, err error) error {
		var richErr *errors.Error
		if !errors.As(err, &richErr) {
			if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
				richErr = errors.Wrap(err, errors.CategoryAuth, "Missing authentication token").
					WithCode(errors.CodeUnauthorized)
			} else {
				richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
					WithCode(errors.CodeInternal)
			}
		}

		logger.Info(
			"request error",
			"category", richErr.Category,
			"text_code", richErr.TextCode,
			"path", c.Path(),
		)

		switch richErr.Category {
		case errors.CategoryAuth, errors.CategoryAuthz:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  "error",
				"message": richErr.Message,
			})
		case errors.CategoryValidation, errors.CategoryBadInput:
			body := fiber.Map{
				"status":  "error",
				"message": richErr.Message,
			}
			if len(richErr.Metadata) > 0 {
				body["fields"] = richErr.Metadata
			}
			return c.Status(fiber.StatusBadRequest).JSON(body)
		case errors.CategoryConflict:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": richErr.Message,
			})
		case errors.CategoryNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"status":  "error",
				"message": richErr.Message,
			})
		default:
			logger.Error("unexpected server error", "error", richErr.Error())
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": "Internal server error",
			})
		}
	}
}
