package routes

import (
	"ai-notes-backend/internal/api/middleware"
	"ai-notes-backend/internal/api/routes/v1"
	"ai-notes-backend/internal/handlers"

	"github.com/gofiber/fiber/v2"
)

func Register(app *fiber.App, deps v1.Dependencies) {
	registerPages(app, deps)

	// API v1 group
	api := app.Group("/api")
	v1Group := api.Group("/v1")

	// Register v1 routes
	v1.RegisterRoutes(v1Group, deps)
}

// registerPages mounts the guarded page routes.
func registerPages(app *fiber.App, deps v1.Dependencies) {
	guard := middleware.Guard(deps.Auth, deps.Notes, deps.Config.Auth.CookieName)

	authHandler := handlers.NewAuthHandler(deps.Auth, handlers.CookieConfig{
		Name:   deps.Config.Auth.CookieName,
		Secure: deps.Config.Auth.CookieSecure,
	})
	noteHandler := handlers.NewNoteHandler(deps.Notes)

	app.Get(middleware.HomePath, guard, noteHandler.Home)
	app.Get(middleware.LoginPath, guard, authHandler.LoginPage)
	app.Get(middleware.SignUpPath, guard, authHandler.SignUpPage)
	app.Post(middleware.LoginPath, guard, authHandler.Login)
	app.Post(middleware.SignUpPath, guard, authHandler.SignUp)
	app.Post("/logout", guard, authHandler.Logout)
	app.Get(middleware.CreateNotePath, guard, noteHandler.CreateNotePage)
}
