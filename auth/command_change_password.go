package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ChangePasswordMessage carries a password rotation request. UserID comes
// from verified token claims, never from the request body.
type ChangePasswordMessage struct {
	UserID      string `json:"-"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (e ChangePasswordMessage) Type() string { return "user.change_password" }

// Validate checks presence of both passwords and the strength of the new one.
func (e ChangePasswordMessage) Validate() error {
	err := goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&e,
			validation.Field(&e.OldPassword, validation.Required),
			validation.Field(&e.NewPassword, validation.Required, DefaultPasswordPolicy.Rule()),
		)
	}, "Invalid change password payload")
	if err != nil {
		return err
	}
	return nil
}

type ChangePasswordHandler struct {
	repo   RepositoryManager
	logger Logger
}

// NewChangePasswordHandler creates a handler with sane defaults.
func NewChangePasswordHandler(repo RepositoryManager) *ChangePasswordHandler {
	return &ChangePasswordHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *ChangePasswordHandler) WithLogger(logger Logger) *ChangePasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ChangePasswordHandler) Execute(ctx context.Context, event ChangePasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password change",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ChangePasswordHandler) execute(ctx context.Context, event ChangePasswordMessage) error {
	if err := event.Validate(); err != nil {
		return err
	}

	id, err := uuid.Parse(event.UserID)
	if err != nil {
		// The id comes out of a verified token; a bad one means the token
		// subject no longer maps to anything we can trust.
		return ErrIdentityNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrIdentityNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load identity")
	}

	if err := ComparePasswordAndHash(event.OldPassword, user.PasswordHash); err != nil {
		return ErrOldPasswordMismatch
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.NewPassword)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		return h.repo.Users().UpdatePasswordTx(ctx, tx, id, hash)
	})

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrIdentityNotFound
		}

		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "password change transaction failed")
	}

	return nil
}
