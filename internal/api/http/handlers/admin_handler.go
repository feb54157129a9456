package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/project-desk/internal/api/dto"
	"github.com/spec-kit/project-desk/internal/auth"
	"github.com/spec-kit/project-desk/internal/domain"
	"github.com/spec-kit/project-desk/internal/service"
	apperrors "github.com/spec-kit/project-desk/pkg/util"
)

// AdminHandler manages the administrative surface: accounts, catalog,
// request decisions, project staffing and the dashboard overview.
type AdminHandler struct {
	users    *service.UserService
	catalog  *service.CatalogService
	workflow *service.WorkflowService
	stats    *service.StatsService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(users *service.UserService, catalog *service.CatalogService, workflow *service.WorkflowService, stats *service.StatsService) *AdminHandler {
	return &AdminHandler{users: users, catalog: catalog, workflow: workflow, stats: stats}
}

func principalOrErr(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	return principal, nil
}

// CreateUser POST /admin/users.
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	principal, err := principalOrErr(c)
	if err != nil {
		return err
	}
	var req dto.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.CreateUser(c.Context(), principal, service.UserCreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": userResponse(user)})
}

// ListUsers GET /admin/users. Accepts an optional ?role= filter.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	principal, err := principalOrErr(c)
	if err != nil {
		return err
	}
	var role *domain.Role
	if raw := c.Query("role"); raw != "" {
		candidate := domain.Role(raw)
		if !candidate.Valid() {
			return apperrors.NewValidationError("unknown role filter", map[string]any{"role": raw})
		}
		role = &candidate
	}
	users, err := h.users.ListUsers(c.Context(), principal, role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponses(users)})
}

// DeleteUser DELETE /admin/users/:id.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	principal, err := principalOrErr(c)
	if err != nil {
		return err
	}
	if err := h.users.DeleteUser(c.Context(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// CreateService POST /admin/services.
func (h *AdminHandler) CreateService(c *fiber.Ctx) error {
	principal, err := principalOrErr(c)
	if err != nil {
		return err
	}
	var req dto.ServiceInputRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	svc, err := h.catalog.CreateService(c.Context(), principal, service.ServiceInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": serviceResponse(svc)})
}

// UpdateService PUT /admin/services/:id.
func (h *AdminHandler) UpdateService(c *fiber.Ctx) error {
	principal, err := principalOrErr(c)
	if err != nil {
		return err
	}
	var req dto.ServiceInputRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	svc, err := h.catalog.UpdateService(c.Context(), principal, c.Params("id"), service.ServiceInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponse(svc)})
}

// ListServices GET /admin/services.
func (h *AdminHandler) ListServices(c *fiber.Ctx) error {
	principal, err := principalOrErr(c)
	if err != nil {
		return err
	}
	services, err := h.catalog.ListServices(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponses(services)})
}

// ListRequests GET /admin/service-requests.
func (h *AdminHandler) ListRequests(c *fiber.Ctx) error {
	principal, err := principalOrErr(c)
	if err != nil {
		return err
	}
	requests, err := h.workflow.ListRequests(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponses(requests)})
}

// ApproveRequest PUT /admin/service-requests/:id/approve. Approval
// creates the project in the same step; the response carries it.
func (h *AdminHandler) ApproveRequest(c *fiber.Ctx) error {
	principal, err := principalOrErr(c)
	if err != nil {
		return err
	}
	project, err := h.workflow.ApproveRequest(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": projectResponse(project)})
}

// RejectRequest PUT /admin/service-requests/:id/reject.
func (h *AdminHandler) RejectRequest(c *fiber.Ctx) error {
	principal, err := principalOrErr(c)
	if err != nil {
		return err
	}
	request, err := h.workflow.RejectRequest(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(request)})
}

// ListProjects GET /admin/projects.
func (h *AdminHandler) ListProjects(c *fiber.Ctx) error {
	principal, err := principalOrErr(c)
	if err != nil {
		return err
	}
	projects, err := h.workflow.ListProjects(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponses(projects)})
}

// AssignEmployee PUT /admin/projects/:id/assign.
func (h *AdminHandler) AssignEmployee(c *fiber.Ctx) error {
	principal, err := principalOrErr(c)
	if err != nil {
		return err
	}
	var req dto.AssignEmployeeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	project, err := h.workflow.AssignEmployee(c.Context(), principal, c.Params("id"), req.EmployeeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(project)})
}

// UnassignEmployee PUT /admin/projects/:id/unassign.
func (h *AdminHandler) UnassignEmployee(c *fiber.Ctx) error {
	principal, err := principalOrErr(c)
	if err != nil {
		return err
	}
	var req dto.UnassignEmployeeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	project, err := h.workflow.UnassignEmployee(c.Context(), principal, c.Params("id"), req.EmployeeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(project)})
}

// Stats GET /admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	principal, err := principalOrErr(c)
	if err != nil {
		return err
	}
	overview, err := h.stats.AdminOverview(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": statsResponse(overview)})
}
