package auth

import (
	stderrors "errors"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-errors"
)

// PasswordSymbols is the fixed set of accepted special characters.
const PasswordSymbols = "@$!%*?&"

const passwordPolicyMessage = "Password must be at least 8 characters long and include uppercase, lowercase, number, and special character"

// PasswordPolicy is the strength policy applied to every password write,
// registration and change-password alike.
type PasswordPolicy struct {
	MinLength int
	MaxLength int
}

// DefaultPasswordPolicy mirrors the registration rules.
var DefaultPasswordPolicy = PasswordPolicy{
	MinLength: 8,
	MaxLength: 100,
}

// Validate runs the strength rules and returns a client-safe validation
// error on the first failure.
func (p PasswordPolicy) Validate(password string) error {
	err := errors.ValidateWithOzzo(func() error {
		return validation.Validate(password,
			validation.Required.Error(passwordPolicyMessage),
			validation.Length(p.MinLength, p.MaxLength).Error(passwordPolicyMessage),
			validation.By(requireCharClass(unicode.IsLower)),
			validation.By(requireCharClass(unicode.IsUpper)),
			validation.By(requireCharClass(unicode.IsDigit)),
			validation.By(requireSymbol(PasswordSymbols)),
		)
	}, passwordPolicyMessage)
	if err != nil {
		return err
	}
	return nil
}

// Rule adapts the policy into an ozzo rule for payload validation.
func (p PasswordPolicy) Rule() validation.Rule {
	return validation.By(func(value any) error {
		s, _ := value.(string)
		return p.Validate(s)
	})
}

func requireCharClass(class func(rune) bool) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		for _, r := range s {
			if class(r) {
				return nil
			}
		}
		return stderrors.New(passwordPolicyMessage)
	}
}

func requireSymbol(symbols string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if strings.ContainsAny(s, symbols) {
			return nil
		}
		return stderrors.New(passwordPolicyMessage)
	}
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return stderrors.New("values must match")
		}
		return nil
	}
}
