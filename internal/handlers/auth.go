package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/yatube/yatube/internal/forms"
	"github.com/yatube/yatube/internal/middleware"
	"github.com/yatube/yatube/internal/services"
	"github.com/yatube/yatube/pkg/logger"
)

type AuthHandler struct {
	Users   *services.UserService
	Session *middleware.AuthMiddleware
}

func NewAuthHandler(users *services.UserService, session *middleware.AuthMiddleware) *AuthHandler {
	return &AuthHandler{Users: users, Session: session}
}

func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	return render(c, "auth/login", fiber.Map{
		"title": "Log in",
		"form":  &forms.LoginForm{Errors: map[string]string{}},
		"next":  c.Query("next"),
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	form, err := forms.BindLoginForm(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form submission")
	}

	data := fiber.Map{"title": "Log in", "form": form, "next": form.Next}
	if !form.Validate() {
		return render(c, "auth/login", data)
	}

	user, err := h.Users.Authenticate(c.UserContext(), form.Username, form.Password)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			return err
		}
		logger.Warn("login_failed", map[string]interface{}{
			"username": form.Username,
			"ip":       c.IP(),
		})
		data["error"] = "Please enter a correct username and password."
		return render(c, "auth/login", data)
	}

	if err := h.Session.StartSession(c, user); err != nil {
		return err
	}

	logger.InfoWithUser(user.ID.String(), "user_logged_in", map[string]interface{}{"ip": c.IP()})
	return c.Redirect(middleware.SafeNext(form.Next, "/"), fiber.StatusFound)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if user := middleware.GetCurrentUser(c); user != nil {
		logger.InfoWithUser(user.ID.String(), "user_logged_out", nil)
	}
	h.Session.EndSession(c)
	return render(c, "auth/logged_out", fiber.Map{"title": "Logged out"})
}

func (h *AuthHandler) SignupPage(c *fiber.Ctx) error {
	return render(c, "auth/signup", fiber.Map{
		"title": "Sign up",
		"form":  forms.NewSignupForm(),
	})
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	form, err := forms.BindSignupForm(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form submission")
	}

	data := fiber.Map{"title": "Sign up", "form": form}
	if !form.Validate() {
		return render(c, "auth/signup", data)
	}

	user, err := h.Users.Create(c.UserContext(), services.NewUser{
		Username:  form.Username,
		Password:  form.Password1,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
	})
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			form.Errors["username"] = "A user with that username already exists."
			return render(c, "auth/signup", data)
		}
		return err
	}

	if err := h.Session.StartSession(c, user); err != nil {
		return err
	}

	logger.InfoWithUser(user.ID.String(), "user_signed_up", map[string]interface{}{"username": user.Username})
	return c.Redirect("/", fiber.StatusFound)
}
