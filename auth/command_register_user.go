package auth

import (
	"context"
	stderrors "errors"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// emailPattern is deliberately strict and simple: one @, no whitespace, a
// dotted domain. It matches the storage layer's own format constraint.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmailFormat is the single-@ non-whitespace email rule.
func ValidateEmailFormat(value any) error {
	s, _ := value.(string)
	if !emailPattern.MatchString(s) {
		return stderrors.New("Invalid email format")
	}
	return nil
}

type RegisterUserMessage struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// Validate enforces the registration rules: required fields, strict email
// shape, username length, and the password strength policy.
func (e RegisterUserMessage) Validate() error {
	err := goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&e,
			validation.Field(&e.FirstName, validation.Required),
			validation.Field(&e.LastName, validation.Required),
			validation.Field(&e.Email, validation.Required, validation.By(ValidateEmailFormat)),
			validation.Field(&e.Username, validation.Required, validation.Length(8, 40)),
			validation.Field(&e.Password, validation.Required, DefaultPasswordPolicy.Rule()),
		)
	}, "Invalid registration payload")
	if err != nil {
		return err
	}
	return nil
}

type RegisterUserHandler struct {
	repo   RepositoryManager
	logger Logger
}

// NewRegisterUserHandler creates a handler with sane defaults.
func NewRegisterUserHandler(repo RepositoryManager) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	if err := event.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	email := NormalizeIdentifier(event.Email)
	username := NormalizeIdentifier(event.Username)

	// Fast path only: the UNIQUE indexes on users(email) and users(username)
	// are the actual uniqueness enforcement under concurrent registrations.
	if _, err := h.repo.Users().FindByEmailOrUsername(ctx, email, username); err == nil {
		return ErrIdentifierTaken
	} else if !repository.IsRecordNotFound(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check existing identities")
	}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user := &User{
			FirstName:    event.FirstName,
			LastName:     event.LastName,
			Email:        email,
			Username:     username,
			PasswordHash: hash,
			Role:         RoleUser,
		}

		if _, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			if IsUniqueViolation(err) {
				return ErrIdentifierTaken
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	return nil
}
