package service

import (
	"context"
	"testing"

	"puntovuela/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type messageRepoStub struct {
	createFn        func(context.Context, *models.Message) error
	listByRequestFn func(context.Context, uint) ([]models.Message, error)
}

func (s *messageRepoStub) Create(ctx context.Context, message *models.Message) error {
	return s.createFn(ctx, message)
}
func (s *messageRepoStub) ListByRequest(ctx context.Context, requestID uint) ([]models.Message, error) {
	return s.listByRequestFn(ctx, requestID)
}

func noopMessageRepo() *messageRepoStub {
	return &messageRepoStub{
		createFn:        func(context.Context, *models.Message) error { return nil },
		listByRequestFn: func(context.Context, uint) ([]models.Message, error) { return nil, nil },
	}
}

func acceptedRequestRepo(requesterID, volunteerID uint) *requestRepoStub {
	repo := noopRequestRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.HelpRequest, error) {
		vol := volunteerID
		return &models.HelpRequest{
			ID:          id,
			RequesterID: requesterID,
			Status:      models.StatusAccepted,
			VolunteerID: &vol,
		}, nil
	}
	return repo
}

func TestMessageServiceSendValidation(t *testing.T) {
	svc := NewMessageService(noopMessageRepo(), acceptedRequestRepo(1, 2), nil)

	_, err := svc.SendMessage(context.Background(), 1, 1, "   ")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

func TestMessageServiceSendOutsiderRejected(t *testing.T) {
	svc := NewMessageService(noopMessageRepo(), acceptedRequestRepo(1, 2), nil)

	_, err := svc.SendMessage(context.Background(), 1, 3, "hola")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeUnauthorized, appErr.Code)
}

func TestMessageServiceSendPendingRejected(t *testing.T) {
	repo := noopRequestRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.HelpRequest, error) {
		return &models.HelpRequest{ID: id, RequesterID: 1, Status: models.StatusPending}, nil
	}
	svc := NewMessageService(noopMessageRepo(), repo, nil)

	_, err := svc.SendMessage(context.Background(), 1, 1, "hola")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

func TestMessageServiceSendNotifiesCounterparty(t *testing.T) {
	events := &eventsRecorder{}
	svc := NewMessageService(noopMessageRepo(), acceptedRequestRepo(1, 2), events)

	// Requester writes: volunteer is notified.
	_, err := svc.SendMessage(context.Background(), 1, 1, "hola")
	require.NoError(t, err)

	// Volunteer writes: requester is notified.
	_, err = svc.SendMessage(context.Background(), 1, 2, "voy")
	require.NoError(t, err)

	assert.Equal(t, []uint{2, 1}, events.messages)
}

func TestMessageServiceListOutsiderRejected(t *testing.T) {
	svc := NewMessageService(noopMessageRepo(), acceptedRequestRepo(1, 2), nil)

	_, err := svc.ListMessages(context.Background(), 1, 99)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeUnauthorized, appErr.Code)
}

func TestMessageServiceListKeepsHistoryAfterCompletion(t *testing.T) {
	vol := uint(2)
	repo := noopRequestRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.HelpRequest, error) {
		return &models.HelpRequest{ID: id, RequesterID: 1, Status: models.StatusCompleted, VolunteerID: &vol}, nil
	}
	messages := noopMessageRepo()
	messages.listByRequestFn = func(context.Context, uint) ([]models.Message, error) {
		return []models.Message{{ID: 1, Content: "hola"}}, nil
	}
	svc := NewMessageService(messages, repo, nil)

	msgs, err := svc.ListMessages(context.Background(), 1, vol)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}
