package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/project-desk/internal/api/dto"
	"github.com/spec-kit/project-desk/internal/domain"
	"github.com/spec-kit/project-desk/internal/service"
)

// EmployeeHandler manages the employee surface: assigned projects and
// their execution status.
type EmployeeHandler struct {
	workflow *service.WorkflowService
}

// NewEmployeeHandler constructs handler.
func NewEmployeeHandler(workflow *service.WorkflowService) *EmployeeHandler {
	return &EmployeeHandler{workflow: workflow}
}

// ListProjects GET /employee/projects. Scoped to assignments.
func (h *EmployeeHandler) ListProjects(c *fiber.Ctx) error {
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

// UpdateStatus PUT /employee/projects/:id/status.
func (h *EmployeeHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, err := principalOrErr(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProjectStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	project, err := h.workflow.UpdateProjectStatus(c.Context(), principal, c.Params("id"), domain.ProjectStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(project)})
}
