package forms

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	MsgUsernameFormat   = "Enter a valid username. It may contain only letters, numbers, and @/./+/-/_ characters."
	MsgPasswordTooShort = "This password is too short. It must contain at least 8 characters."
	MsgPasswordMismatch = "The two password fields didn't match."
	MinPasswordLength   = 8
	maxUsernameLength   = 150
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

type LoginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
	Next     string `form:"next"`

	Errors map[string]string `form:"-"`
}

func BindLoginForm(c *fiber.Ctx) (*LoginForm, error) {
	form := &LoginForm{}
	if err := c.BodyParser(form); err != nil {
		return nil, err
	}
	form.Errors = map[string]string{}
	return form, nil
}

func (f *LoginForm) Validate() bool {
	f.Errors = map[string]string{}
	f.Username = strings.TrimSpace(f.Username)
	if f.Username == "" {
		f.Errors["username"] = MsgRequired
	}
	if f.Password == "" {
		f.Errors["password"] = MsgRequired
	}
	return len(f.Errors) == 0
}

type SignupForm struct {
	FirstName string `form:"first_name"`
	LastName  string `form:"last_name"`
	Username  string `form:"username"`
	Email     string `form:"email"`
	Password1 string `form:"password1"`
	Password2 string `form:"password2"`

	Errors map[string]string `form:"-"`
}

func NewSignupForm() *SignupForm {
	return &SignupForm{Errors: map[string]string{}}
}

func BindSignupForm(c *fiber.Ctx) (*SignupForm, error) {
	form := &SignupForm{}
	if err := c.BodyParser(form); err != nil {
		return nil, err
	}
	form.Errors = map[string]string{}
	return form, nil
}

// Validate checks the fields that need no database access. Username
// uniqueness is enforced when the user is created.
func (f *SignupForm) Validate() bool {
	f.Errors = map[string]string{}
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)

	switch {
	case f.Username == "":
		f.Errors["username"] = MsgRequired
	case len(f.Username) > maxUsernameLength || !usernamePattern.MatchString(f.Username):
		f.Errors["username"] = MsgUsernameFormat
	}

	switch {
	case f.Password1 == "":
		f.Errors["password1"] = MsgRequired
	case len(f.Password1) < MinPasswordLength:
		f.Errors["password1"] = MsgPasswordTooShort
	}

	if f.Password2 == "" {
		f.Errors["password2"] = MsgRequired
	} else if f.Password1 != f.Password2 {
		f.Errors["password2"] = MsgPasswordMismatch
	}

	return len(f.Errors) == 0
}
