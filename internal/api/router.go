package api

import (
	"scheme-saathi/docs"
	"scheme-saathi/internal/api/handlers"
	"scheme-saathi/pkg/auth"
	"scheme-saathi/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	chatHandler *handlers.ChatHandler,
	schemeHandler *handlers.SchemeHandler,
	healthHandler *handlers.HealthHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	// Importing docs registers the generated spec through its init().
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", healthHandler.Health)

	// Auth routes (public)
	authGroup := app.Group("/user/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)

	// Discovery routes work without an account; a valid token only adds
	// chat persistence.
	api := app.Group("/api/v1")
	api.Post("/chat", middleware.OptionalAuthMiddleware(jwtManager, appLogger), chatHandler.Chat)
	api.Post("/search", schemeHandler.Search)
	api.Get("/schemes", schemeHandler.List)
	api.Get("/schemes/categories", schemeHandler.Categories)
	api.Get("/schemes/:id", schemeHandler.Get)

	// Saved conversations require an account.
	chats := api.Group("/chats", middleware.AuthMiddleware(jwtManager, appLogger))
	chats.Get("", chatHandler.ListChats)
	chats.Get("/:id", chatHandler.GetChat)

	return app
}
