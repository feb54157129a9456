package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/project-desk/internal/api/dto"
	"github.com/spec-kit/project-desk/internal/service"
)

// ClientHandler manages the client surface: catalog browsing, service
// requests and project visibility.
type ClientHandler struct {
	catalog  *service.CatalogService
	workflow *service.WorkflowService
}

// NewClientHandler constructs handler.
func NewClientHandler(catalog *service.CatalogService, workflow *service.WorkflowService) *ClientHandler {
	return &ClientHandler{catalog: catalog, workflow: workflow}
}

// ListServices GET /client/services.
func (h *ClientHandler) ListServices(c *fiber.Ctx) error {
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

// SubmitRequest POST /client/service-requests.
func (h *ClientHandler) SubmitRequest(c *fiber.Ctx) error {
	principal, err := principalOrErr(c)
	if err != nil {
		return err
	}
	var req dto.CreateServiceRequestRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	request, err := h.workflow.SubmitRequest(c.Context(), principal, req.ServiceID, req.Message)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": requestResponse(request)})
}

// ListRequests GET /client/service-requests. Scoped to the caller.
func (h *ClientHandler) ListRequests(c *fiber.Ctx) error {
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

// ListProjects GET /client/projects. Scoped to the caller.
func (h *ClientHandler) ListProjects(c *fiber.Ctx) error {
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
