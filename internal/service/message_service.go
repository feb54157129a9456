package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/project-desk/internal/auth"
	"github.com/spec-kit/project-desk/internal/domain"
	"github.com/spec-kit/project-desk/internal/events"
	"github.com/spec-kit/project-desk/internal/repository"
	apperrors "github.com/spec-kit/project-desk/pkg/util"
)

// MessageService handles the plain append-only note exchange. Recipients
// are validated against the directory's contact scope; there is no state
// machine.
type MessageService struct {
	messages   repository.MessageRepository
	directory  *UserService
	dispatcher events.Dispatcher
}

// NewMessageService constructs the service.
func NewMessageService(messages repository.MessageRepository, directory *UserService, dispatcher events.Dispatcher) *MessageService {
	return &MessageService{messages: messages, directory: directory, dispatcher: dispatcher}
}

// Send appends a message to an eligible recipient.
func (s *MessageService) Send(ctx context.Context, principal *auth.Principal, recipientID, body string) (*domain.Message, error) {
	if err := auth.Authorize(principal); err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("body required", nil)
	}
	ok, err := s.directory.CanMessage(ctx, principal, recipientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewForbidden("recipient not in contact scope")
	}

	msg := &domain.Message{
		SenderID:    principal.User.ID,
		RecipientID: recipientID,
		Body:        body,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventMessageSent,
			ActorID:   principal.User.ID,
			ActorRole: principal.Role,
			Timestamp: time.Now(),
			Payload: events.MessageSentPayload{
				MessageID:   msg.ID,
				RecipientID: recipientID,
			},
		})
	}
	return msg, nil
}

// ListMine returns the caller's sent and received messages in
// chronological order.
func (s *MessageService) ListMine(ctx context.Context, principal *auth.Principal) ([]domain.Message, error) {
	if err := auth.Authorize(principal); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListForUser(ctx, principal.User.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return msgs, nil
}
