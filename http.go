package authflow

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
)

// FlowControllerRoutes are the paths the controller mounts its handlers on.
type FlowControllerRoutes struct {
	Register string
	Login    string
	Verify   string
	Signout  string
	Session  string
}

// FlowController exposes the authentication flow as a JSON API. Responses
// mirror the relay's {ok, error?} envelope so UI callers handle one shape.
type FlowController struct {
	Flow   *Flow
	Tokens TokenService
	Logger Logger
	Routes *FlowControllerRoutes
}

type FlowControllerOption func(*FlowController) *FlowController

func WithControllerTokens(tokens TokenService) FlowControllerOption {
	return func(c *FlowController) *FlowController {
		c.Tokens = tokens
		return c
	}
}

func WithControllerLogger(logger Logger) FlowControllerOption {
	return func(c *FlowController) *FlowController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func NewFlowController(flow *Flow, opts ...FlowControllerOption) *FlowController {
	c := &FlowController{
		Flow:   flow,
		Logger: defLogger{},
		Routes: &FlowControllerRoutes{
			Register: "/auth/register",
			Login:    "/auth/login",
			Verify:   "/auth/verify",
			Signout:  "/auth/signout",
			Session:  "/auth/session",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Flow == nil {
		panic("Missing Flow in flow controller...")
	}

	return c
}

// RegisterRoutes mounts the controller on the given app.
func (c *FlowController) RegisterRoutes(app *fiber.App) {
	app.Post(c.Routes.Register, c.RegisterPost)
	app.Post(c.Routes.Login, c.LoginPost)
	app.Post(c.Routes.Verify, c.VerifyPost)
	app.Post(c.Routes.Signout, c.SignoutPost)
	app.Get(c.Routes.Session, c.SessionGet)
}

type RegisterPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 72)),
	)
}

type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 72)),
	)
}

type VerifyPayload struct {
	Code string `json:"code"`
}

func (r VerifyPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required, validation.Length(6, 6), is.Digit),
	)
}

func (c *FlowController) RegisterPost(ctx *fiber.Ctx) error {
	payload := RegisterPayload{}
	if err := ctx.BodyParser(&payload); err != nil {
		return badRequest(ctx, "unable to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := c.Flow.Register(ctx.Context(), payload.Username, payload.Email, payload.Password); err != nil {
		return c.fail(ctx, err)
	}

	return ctx.JSON(fiber.Map{"ok": true})
}

func (c *FlowController) LoginPost(ctx *fiber.Ctx) error {
	payload := LoginPayload{}
	if err := ctx.BodyParser(&payload); err != nil {
		return badRequest(ctx, "unable to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return badRequest(ctx, err.Error())
	}

	if err := c.Flow.Login(ctx.Context(), payload.Email, payload.Password); err != nil {
		return c.fail(ctx, err)
	}

	return ctx.JSON(fiber.Map{"ok": true})
}

func (c *FlowController) VerifyPost(ctx *fiber.Ctx) error {
	payload := VerifyPayload{}
	if err := ctx.BodyParser(&payload); err != nil {
		return badRequest(ctx, "unable to parse request body")
	}

	if err := payload.Validate(); err != nil {
		return badRequest(ctx, err.Error())
	}

	user, err := c.Flow.VerifyCode(ctx.Context(), payload.Code)
	if err != nil {
		return c.fail(ctx, err)
	}

	resp := fiber.Map{"ok": true, "user": user}

	if c.Tokens != nil {
		token, err := c.Tokens.Generate(*user)
		if err != nil {
			c.Logger.Error("session token generation failed: %v", err)
		} else {
			resp["token"] = token
		}
	}

	return ctx.JSON(resp)
}

func (c *FlowController) SignoutPost(ctx *fiber.Ctx) error {
	if err := c.Flow.Signout(ctx.Context()); err != nil {
		return c.fail(ctx, err)
	}

	return ctx.JSON(fiber.Map{"ok": true})
}

func (c *FlowController) SessionGet(ctx *fiber.Ctx) error {
	user, err := c.Flow.CurrentUser(ctx.Context())
	if err != nil {
		return c.fail(ctx, err)
	}

	if user == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"ok":    false,
			"error": "not signed in",
		})
	}

	return ctx.JSON(fiber.Map{"ok": true, "user": user})
}

func (c *FlowController) fail(ctx *fiber.Ctx, err error) error {
	c.Logger.Debug("flow request failed: %v", err)
	return ctx.Status(statusForError(err)).JSON(fiber.Map{
		"ok":    false,
		"error": err.Error(),
	})
}

func badRequest(ctx *fiber.Ctx, msg string) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"ok":    false,
		"error": msg,
	})
}

func statusForError(err error) int {
	switch {
	case IsDuplicateEmail(err):
		return fiber.StatusConflict
	case IsInvalidCredentials(err), IsIncorrectCode(err), IsCodeExpired(err):
		return fiber.StatusUnauthorized
	case IsNoPendingVerification(err), IsCodeNotRequested(err):
		return fiber.StatusBadRequest
	case IsEmailDispatchFailed(err):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
