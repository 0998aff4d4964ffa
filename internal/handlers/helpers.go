package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/yatube/yatube/internal/middleware"
	"github.com/yatube/yatube/internal/services"
	"github.com/yatube/yatube/pkg/logger"
	"github.com/yatube/yatube/pkg/utils"
)

// render adds the current user to data and renders view inside the app layout.
func render(c *fiber.Ctx, view string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if user := middleware.GetCurrentUser(c); user != nil {
		data["user"] = user
	}
	return c.Render(view, data)
}

// lookupError turns a service lookup failure into the response error.
func lookupError(err error) error {
	if errors.Is(err, services.ErrNotFound) {
		return fiber.ErrNotFound
	}
	return err
}

// ErrorHandler renders not-found and server-error pages; other fiber errors
// are answered with their plain message. Clients that prefer JSON get the
// error envelope instead of a page.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	if code >= fiber.StatusInternalServerError {
		logger.Error("request_failed", err, map[string]interface{}{
			"method":     c.Method(),
			"path":       c.Path(),
			"request_id": middleware.GetRequestID(c),
		})
	}

	message := fiber.ErrInternalServerError.Message
	if fiberErr != nil && code < fiber.StatusInternalServerError {
		message = fiberErr.Message
	}

	if wantsJSON(c) {
		return utils.Error(c, code, message)
	}

	c.Status(code)

	var renderErr error
	switch {
	case code == fiber.StatusNotFound:
		renderErr = render(c, "errors/404", fiber.Map{"title": "Page not found", "path": c.Path()})
	case code >= fiber.StatusInternalServerError:
		renderErr = render(c, "errors/500", fiber.Map{"title": "Server error"})
	default:
		return c.SendString(message)
	}

	if renderErr != nil {
		logger.Error("error_page_render_failed", renderErr, map[string]interface{}{"status_code": code})
		return c.Status(code).SendString(fiber.ErrInternalServerError.Message)
	}
	return nil
}

func wantsJSON(c *fiber.Ctx) bool {
	return c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}
