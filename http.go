package auth

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// WriteError reduces any kernel failure to its envelope and renders it
// with the mapped status. The transport never sees a raw error.
func WriteError(c router.Context, err error) error {
	res := MapError(err)
	return c.JSON(res.Status, res)
}

// LoginRequest payload
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginResponse carries the minted token and its principal snapshot
type LoginResponse struct {
	Token     string    `json:"token"`
	Principal Principal `json:"principal"`
}

// CreateAccountRequest is the account creation payload
type CreateAccountRequest struct {
	Username  string `form:"username" json:"username"`
	Email     string `form:"email" json:"email"`
	Password  string `form:"password" json:"password"`
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Role      string `form:"role" json:"role"`
}

// Validate will validate the payload
func (r CreateAccountRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&r.FirstName, validation.Length(0, 200)),
		validation.Field(&r.LastName, validation.Length(0, 200)),
	)
}

// ChangePasswordRequest re-proves the current credential
type ChangePasswordRequest struct {
	Password    string `form:"password" json:"password"`
	NewPassword string `form:"new_password" json:"new_password"`
}

// Validate will validate the payload
func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 100)),
	)
}

// AccountController is the thin boundary over the kernel. Routing and
// response shaping beyond the envelope stay with the integrator.
type AccountController struct {
	Logger       Logger
	Service      *AccountService
	Auther       *Authenticator
	ErrorHandler func(router.Context, error) error
}

type AccountControllerOption func(*AccountController)

// WithControllerLogger overrides the logger.
func WithControllerLogger(logger Logger) AccountControllerOption {
	return func(c *AccountController) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithControllerErrorHandler overrides how failures are rendered.
func WithControllerErrorHandler(handler func(router.Context, error) error) AccountControllerOption {
	return func(c *AccountController) {
		if handler != nil {
			c.ErrorHandler = handler
		}
	}
}

func NewAccountController(service *AccountService, auther *Authenticator, opts ...AccountControllerOption) *AccountController {
	c := &AccountController{
		Logger:       defLogger{},
		Service:      service,
		Auther:       auther,
		ErrorHandler: WriteError,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

func (a *AccountController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "unable to parse login payload"))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryValidation, err.Error()))
	}

	token, principal, err := a.Auther.Login(ctx.Context(), payload.Username, payload.Password)
	if err != nil {
		a.Logger.Error("login error", "username", payload.Username, "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Principal: principal})
}

func (a *AccountController) AccountCreate(ctx router.Context) error {
	payload := new(CreateAccountRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "unable to parse account payload"))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryValidation, err.Error()))
	}

	account, err := a.Service.Create(ctx.Context(), CreateAccountInput{
		Username:  payload.Username,
		Email:     payload.Email,
		Password:  payload.Password,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Role:      payload.Role,
	})
	if err != nil {
		a.Logger.Error("account create error", "username", payload.Username, "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, account)
}

func (a *AccountController) PasswordChange(ctx router.Context) error {
	username := ctx.Param("username")

	payload := new(ChangePasswordRequest)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "unable to parse password payload"))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryValidation, err.Error()))
	}

	account, err := a.Service.ChangePassword(ctx.Context(), username, payload.Password, payload.NewPassword)
	if err != nil {
		a.Logger.Error("password change error", "username", username, "error", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, account)
}

// RegisterAccountRoutes wires the controller endpoints
func RegisterAccountRoutes[T any](app router.Router[T], controller *AccountController) {
	app.Post("/login", controller.LoginPost)
	app.Post("/user", controller.AccountCreate)
	app.Post("/user/:username/password", controller.PasswordChange)
}
