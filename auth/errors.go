package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrMismatchedHashAndPassword is the single failure we expose for a login
// mismatch. Unknown identifier and wrong password both collapse into it so
// responses cannot be used to enumerate registered accounts.
var ErrMismatchedHashAndPassword = errors.New(
	"Username/email and password don't match",
	errors.CategoryAuth,
).WithCode(errors.CodeUnauthorized).WithTextCode("AUTH_FAILED")

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New(
	"identity not found",
	errors.CategoryNotFound,
).WithCode(errors.CodeNotFound).WithTextCode("IDENTITY_NOT_FOUND")

// ErrIdentifierTaken is deliberately generic: it never says which of the
// unique fields collided.
var ErrIdentifierTaken = errors.New(
	"Email or Username already exists",
	errors.CategoryConflict,
).WithCode(errors.CodeConflict).WithTextCode("IDENTIFIER_TAKEN")

// ErrNoEmptyString rejects empty input to the password hasher
var ErrNoEmptyString = errors.New(
	"value must not be empty",
	errors.CategoryValidation,
).WithCode(errors.CodeBadRequest).WithTextCode("EMPTY_VALUE")

// ErrTokenExpired covers tokens outside their [nbf, exp) window
var ErrTokenExpired = errors.New(
	"Invalid or expired authentication token",
	errors.CategoryAuth,
).WithCode(errors.CodeUnauthorized).WithTextCode("TOKEN_EXPIRED")

// ErrTokenMalformed covers every other verification failure: bad signature,
// foreign algorithm, issuer or audience mismatch, garbage input. The client
// facing message is identical to the expired case on purpose.
var ErrTokenMalformed = errors.New(
	"Invalid or expired authentication token",
	errors.CategoryAuth,
).WithCode(errors.CodeUnauthorized).WithTextCode("TOKEN_MALFORMED")

// ErrOldPasswordMismatch is returned by the change-password use case when the
// re-verification of the current password fails.
var ErrOldPasswordMismatch = errors.New(
	"Old password doesn't match",
	errors.CategoryAuth,
).WithCode(errors.CodeUnauthorized).WithTextCode("OLD_PASSWORD_MISMATCH")

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}

	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == ErrTokenExpired.TextCode {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}

	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == ErrTokenMalformed.TextCode {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsUniqueViolation reports whether err comes from a storage level unique
// constraint. The constraint is the real uniqueness enforcement; the
// application level duplicate check is only a fast path.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
