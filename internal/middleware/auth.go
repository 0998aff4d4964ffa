package middleware

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/yatube/yatube/internal/config"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/pkg/logger"
	"github.com/yatube/yatube/pkg/utils"
	"gorm.io/gorm"
)

const (
	currentUserKey = "currentUser"

	// LoginPath is where RequireAuth sends anonymous visitors.
	LoginPath = "/auth/login/"
)

type AuthMiddleware struct {
	DB         *gorm.DB
	CookieName string
	Secure     bool
}

func NewAuthMiddleware(db *gorm.DB, cfg config.SessionConfig) *AuthMiddleware {
	name := cfg.CookieName
	if name == "" {
		name = "yatube_session"
	}
	return &AuthMiddleware{DB: db, CookieName: name, Secure: cfg.Secure}
}

// OptionalAuth resolves the session cookie, if any, into the current user.
// A stale or forged cookie is dropped and the request continues anonymously.
func (a *AuthMiddleware) OptionalAuth(c *fiber.Ctx) error {
	tokenString := c.Cookies(a.CookieName)
	if tokenString == "" {
		return c.Next()
	}

	claims, err := utils.ValidateToken(tokenString)
	if err != nil {
		logger.Warn("session_invalid", map[string]interface{}{
			"ip":    c.IP(),
			"path":  c.Path(),
			"error": err.Error(),
		})
		a.EndSession(c)
		return c.Next()
	}

	var user models.User
	if err := a.DB.WithContext(c.UserContext()).First(&user, "id = ?", claims.UserID).Error; err != nil {
		logger.Warn("session_user_not_found", map[string]interface{}{
			"ip":      c.IP(),
			"path":    c.Path(),
			"user_id": claims.UserID.String(),
		})
		a.EndSession(c)
		return c.Next()
	}

	c.Locals(currentUserKey, &user)
	c.Locals(logger.UserIDKey, user.ID.String())
	return c.Next()
}

// RequireAuth redirects anonymous visitors to the login page, remembering
// where they were headed. It expects OptionalAuth to have run first.
func (a *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	if GetCurrentUser(c) != nil {
		return c.Next()
	}

	logger.Warn("login_required", map[string]interface{}{
		"ip":   c.IP(),
		"path": c.Path(),
	})
	return c.Redirect(LoginURL(c.OriginalURL()), fiber.StatusFound)
}

// StartSession issues a signed session cookie for user.
func (a *AuthMiddleware) StartSession(c *fiber.Ctx, user *models.User) error {
	token, err := utils.GenerateToken(user)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     a.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(utils.SessionLifetime()),
		HTTPOnly: true,
		Secure:   a.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Locals(currentUserKey, user)
	c.Locals(logger.UserIDKey, user.ID.String())
	return nil
}

func (a *AuthMiddleware) EndSession(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     a.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   a.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Locals(currentUserKey, nil)
	c.Locals(logger.UserIDKey, nil)
}

// LoginURL builds the login page address that returns to next afterwards.
func LoginURL(next string) string {
	if next == "" {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(next)
}

// SafeNext returns next when it is a local path, and fallback otherwise, so a
// crafted link cannot bounce a fresh login to another site.
func SafeNext(next, fallback string) string {
	if next == "" || next[0] != '/' || (len(next) > 1 && (next[1] == '/' || next[1] == '\\')) {
		return fallback
	}
	return next
}

func GetCurrentUser(c *fiber.Ctx) *models.User {
	value := c.Locals(currentUserKey)
	if value == nil {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
