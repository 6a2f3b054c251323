package service

import (
	"context"
	"strings"

	"puntovuela/internal/models"
	"puntovuela/internal/repository"
)

const maxMessageLength = 1000

// MessageEvents receives chat notifications; delivery is best-effort.
type MessageEvents interface {
	MessageSent(message *models.Message, recipientID uint)
}

type noopMessageEvents struct{}

func (noopMessageEvents) MessageSent(*models.Message, uint) {}

// MessageService handles the per-request conversation between the requester
// and the engaged volunteer.
type MessageService struct {
	messageRepo repository.MessageRepository
	requestRepo repository.RequestRepository
	events      MessageEvents
}

// NewMessageService returns a new MessageService. events may be nil.
func NewMessageService(
	messageRepo repository.MessageRepository,
	requestRepo repository.RequestRepository,
	events MessageEvents,
) *MessageService {
	if events == nil {
		events = noopMessageEvents{}
	}
	return &MessageService{
		messageRepo: messageRepo,
		requestRepo: requestRepo,
		events:      events,
	}
}

// participant reports whether userID is the requester or the assigned
// volunteer, and returns the counterparty for notifications.
func participant(request *models.HelpRequest, userID uint) (bool, uint) {
	if request.RequesterID == userID {
		if request.VolunteerID != nil {
			return true, *request.VolunteerID
		}
		return true, 0
	}
	if request.VolunteerID != nil && *request.VolunteerID == userID {
		return true, request.RequesterID
	}
	return false, 0
}

// SendMessage posts a message on a request conversation. Only the requester
// and the engaged volunteer may write, and only while the request is accepted.
func (s *MessageService) SendMessage(ctx context.Context, requestID, senderID uint, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Message content is required")
	}
	if len(content) > maxMessageLength {
		return nil, models.NewValidationError("Message too long (max 1000 characters)")
	}

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.StatusAccepted {
		return nil, models.NewValidationError("Messages are only available while a request is accepted")
	}

	ok, recipientID := participant(request, senderID)
	if !ok {
		return nil, models.NewUnauthorizedError("Only the requester and the engaged volunteer can message")
	}

	message := &models.Message{
		RequestID: requestID,
		SenderID:  senderID,
		Content:   content,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	if recipientID != 0 {
		s.events.MessageSent(message, recipientID)
	}
	return message, nil
}

// ListMessages returns the conversation for a request, oldest first. Reading
// is allowed for both participants regardless of the request's current state
// so completed engagements keep their history.
func (s *MessageService) ListMessages(ctx context.Context, requestID, userID uint) ([]models.Message, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if ok, _ := participant(request, userID); !ok {
		return nil, models.NewUnauthorizedError("Only the requester and the engaged volunteer can read messages")
	}
	return s.messageRepo.ListByRequest(ctx, requestID)
}
