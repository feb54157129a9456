package http

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/project-desk/internal/api/http/handlers"
	"github.com/spec-kit/project-desk/internal/auth"
	"github.com/spec-kit/project-desk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Admin          *handlers.AdminHandler
	Client         *handlers.ClientHandler
	Employee       *handlers.EmployeeHandler
	Messages       *handlers.MessagesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)

	session := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	session.Post("/logout", cfg.Auth.Logout)
	session.Get("/profile", cfg.Auth.Profile)
	session.Put("/profile", cfg.Auth.UpdateProfile)
	session.Post("/password/change", cfg.Auth.ChangePassword)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Post("/users", cfg.Admin.CreateUser)
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Delete("/users/:id", cfg.Admin.DeleteUser)
	admin.Post("/services", cfg.Admin.CreateService)
	admin.Get("/services", cfg.Admin.ListServices)
	admin.Put("/services/:id", cfg.Admin.UpdateService)
	admin.Get("/service-requests", cfg.Admin.ListRequests)
	admin.Put("/service-requests/:id/approve", cfg.Admin.ApproveRequest)
	admin.Put("/service-requests/:id/reject", cfg.Admin.RejectRequest)
	admin.Get("/projects", cfg.Admin.ListProjects)
	admin.Put("/projects/:id/assign", cfg.Admin.AssignEmployee)
	admin.Put("/projects/:id/unassign", cfg.Admin.UnassignEmployee)
	admin.Get("/stats", cfg.Admin.Stats)

	client := app.Group("/client", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleClient))
	client.Get("/services", cfg.Client.ListServices)
	client.Post("/service-requests", cfg.Client.SubmitRequest)
	client.Get("/service-requests", cfg.Client.ListRequests)
	client.Get("/projects", cfg.Client.ListProjects)

	employee := app.Group("/employee", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleEmployee))
	employee.Get("/projects", cfg.Employee.ListProjects)
	employee.Put("/projects/:id/status", cfg.Employee.UpdateStatus)

	messages := app.Group("/messages", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	messages.Post("/", cfg.Messages.Send)
	messages.Get("/", cfg.Messages.ListMine)
	messages.Get("/contacts", cfg.Messages.Contacts)
}
