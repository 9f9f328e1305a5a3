package auth

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// RegisterUserCommand executes a registration request.
type RegisterUserCommand interface {
	Execute(ctx context.Context, event RegisterUserMessage) error
}

// ChangePasswordCommand executes a password rotation request.
type ChangePasswordCommand interface {
	Execute(ctx context.Context, event ChangePasswordMessage) error
}

// LoginRequest is the credential payload accepted by the login endpoint.
type LoginRequest struct {
	UserIdentifier string `json:"userIdentifier"`
	Password       string `json:"password"`
}

func (r LoginRequest) Validate() error {
	err := goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.UserIdentifier, validation.Required),
			validation.Field(&r.Password, validation.Required),
		)
	}, "User identifier and password are required")
	if err != nil {
		return err
	}
	return nil
}

// AuthController exposes the authentication endpoints as JSON handlers.
type AuthController struct {
	Debug          bool
	Logger         Logger
	Auther         Authenticator
	Register       RegisterUserCommand
	ChangePassword ChangePasswordCommand
	ErrorHandler   func(*fiber.Ctx, error) error
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	ctrl := &AuthController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			ctrl = opt(ctrl)
		}
	}

	if ctrl.Auther == nil {
		panic("AUTH: AuthController requires an Authenticator")
	}

	if ctrl.Register == nil {
		panic("AUTH: AuthController requires a RegisterUserCommand")
	}

	if ctrl.ChangePassword == nil {
		panic("AUTH: AuthController requires a ChangePasswordCommand")
	}

	if ctrl.ErrorHandler == nil {
		ctrl.ErrorHandler = RenderError(ctrl.Logger)
	}

	return ctrl
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithAuthenticator(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithRegisterCommand(cmd RegisterUserCommand) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Register = cmd
		return c
	}
}

func WithChangePasswordCommand(cmd ChangePasswordCommand) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.ChangePassword = cmd
		return c
	}
}

func WithControllerErrorHandler(handler func(*fiber.Ctx, error) error) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if handler != nil {
			c.ErrorHandler = handler
		}
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

// RegisterAuthRoutes mounts the authentication endpoints on the given router.
// The change-password route runs behind the protected middleware since it
// reads the acting user from verified claims.
func RegisterAuthRoutes(r fiber.Router, ctrl *AuthController, protected fiber.Handler) {
	r.Post("/auth/register", ctrl.RegistrationCreate)
	r.Post("/auth/login", ctrl.LoginPost)
	r.Put("/auth/change-password", protected, ctrl.ChangePasswordPut)
}

// RegistrationCreate handles POST /auth/register.
func (ctrl *AuthController) RegistrationCreate(c *fiber.Ctx) error {
	event := RegisterUserMessage{}
	if err := c.BodyParser(&event); err != nil {
		return ctrl.ErrorHandler(c, goerrors.Wrap(
			err,
			goerrors.CategoryBadInput,
			"Invalid registration payload",
		).WithCode(goerrors.CodeBadRequest))
	}

	if ctrl.Debug {
		ctrl.Logger.Debug("RegistrationCreate", "username", event.Username, "email", event.Email)
	}

	if err := ctrl.Register.Execute(c.UserContext(), event); err != nil {
		return ctrl.ErrorHandler(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
	})
}

// LoginPost handles POST /auth/login.
func (ctrl *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := LoginRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return ctrl.ErrorHandler(c, goerrors.Wrap(
			err,
			goerrors.CategoryBadInput,
			"Invalid login payload",
		).WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return ctrl.ErrorHandler(c, err)
	}

	if ctrl.Debug {
		ctrl.Logger.Debug("LoginPost", "identifier", payload.UserIdentifier)
	}

	token, err := ctrl.Auther.Login(c.UserContext(), payload.UserIdentifier, payload.Password)
	if err != nil {
		return ctrl.ErrorHandler(c, err)
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data": fiber.Map{
			"accessToken": token,
		},
	})
}

// ChangePasswordPut handles PUT /auth/change-password. It requires verified
// claims in the request context, so it must run behind ProtectedRoute.
func (ctrl *AuthController) ChangePasswordPut(c *fiber.Ctx) error {
	claims, ok := GetClaims(c.UserContext())
	if !ok {
		return ctrl.ErrorHandler(c, goerrors.New(
			"Missing authentication token",
			goerrors.CategoryAuth,
		).WithCode(goerrors.CodeUnauthorized))
	}

	event := ChangePasswordMessage{}
	if err := c.BodyParser(&event); err != nil {
		return ctrl.ErrorHandler(c, goerrors.Wrap(
			err,
			goerrors.CategoryBadInput,
			"Invalid change password payload",
		).WithCode(goerrors.CodeBadRequest))
	}

	event.UserID = claims.UserID()

	if ctrl.Debug {
		ctrl.Logger.Debug("ChangePasswordPut", "payload", print.MaybePrettyJSON(map[string]string{
			"user_id": event.UserID,
		}))
	}

	if err := ctrl.ChangePassword.Execute(c.UserContext(), event); err != nil {
		return ctrl.ErrorHandler(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
