package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/project-desk/internal/api/dto"
	"github.com/spec-kit/project-desk/internal/service"
)

// MessagesHandler manages direct messages and the contact directory.
type MessagesHandler struct {
	messages *service.MessageService
	users    *service.UserService
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(messages *service.MessageService, users *service.UserService) *MessagesHandler {
	return &MessagesHandler{messages: messages, users: users}
}

// Send POST /messages.
func (h *MessagesHandler) Send(c *fiber.Ctx) error {
	principal, err := principalOrErr(c)
	if err != nil {
		return err
	}
	var req dto.SendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	msg, err := h.messages.Send(c.Context(), principal, req.RecipientID, req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": messageResponse(msg)})
}

// ListMine GET /messages. Conversations the caller participates in.
func (h *MessagesHandler) ListMine(c *fiber.Ctx) error {
	principal, err := principalOrErr(c)
	if err != nil {
		return err
	}
	messages, err := h.messages.ListMine(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": messageResponses(messages)})
}

// Contacts GET /messages/contacts. Directory entries visible to the caller's role.
func (h *MessagesHandler) Contacts(c *fiber.Ctx) error {
	principal, err := principalOrErr(c)
	if err != nil {
		return err
	}
	contacts, err := h.users.Contacts(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": contactResponses(contacts)})
}
