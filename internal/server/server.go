package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/yatube/yatube/internal/config"
	"github.com/yatube/yatube/internal/handlers"
	"github.com/yatube/yatube/internal/metrics"
	"github.com/yatube/yatube/internal/middleware"
	"github.com/yatube/yatube/internal/services"
	"github.com/yatube/yatube/internal/views"
	"github.com/yatube/yatube/pkg/utils"
	"gorm.io/gorm"
)

// New wires services, handlers and routes into a ready-to-listen app.
func New(db *gorm.DB, cfg *config.Config) *fiber.App {
	utils.ConfigureSession(cfg.Session.Secret, cfg.Session.ExpirationHours)

	postService := services.NewPostService(db)
	groupService := services.NewGroupService(db)
	userService := services.NewUserService(db)
	accessService := services.NewAccessService()

	authMiddleware := middleware.NewAuthMiddleware(db, cfg.Session)

	postsHandler := handlers.NewPostsHandler(postService, groupService, accessService)
	authHandler := handlers.NewAuthHandler(userService, authMiddleware)

	app := fiber.New(fiber.Config{
		Views:        views.New(false),
		ViewsLayout:  views.Layout,
		ErrorHandler: handlers.ErrorHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		UnescapePath: true,
	})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())
	app.Use(metrics.Middleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/version", handlers.GetVersion)
	app.Get("/metrics", metrics.Handler())

	app.Use(authMiddleware.OptionalAuth)

	app.Get("/", postsHandler.Index)
	app.Get("/group/:slug/", postsHandler.GroupPosts)
	app.Get("/profile/:username/", postsHandler.Profile)
	app.Get("/posts/:id/", postsHandler.Detail)

	app.Get("/create/", authMiddleware.RequireAuth, postsHandler.Create)
	app.Post("/create/", authMiddleware.RequireAuth, postsHandler.Create)
	app.Get("/posts/:id/edit/", authMiddleware.RequireAuth, postsHandler.Edit)
	app.Post("/posts/:id/edit/", authMiddleware.RequireAuth, postsHandler.Edit)

	authRoutes := app.Group("/auth")
	authRoutes.Get("/login/", authHandler.LoginPage)
	authRoutes.Post("/login/", authHandler.Login)
	authRoutes.Get("/logout/", authHandler.Logout)
	authRoutes.Post("/logout/", authHandler.Logout)
	authRoutes.Get("/signup/", authHandler.SignupPage)
	authRoutes.Post("/signup/", authHandler.Signup)

	return app
}
