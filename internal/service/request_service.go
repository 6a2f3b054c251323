// Package service implements business logic for the help-matching lifecycle.
package service

import (
	"context"
	"log/slog"
	"strings"

	"puntovuela/internal/catalog"
	"puntovuela/internal/models"
	"puntovuela/internal/observability"
	"puntovuela/internal/repository"
)

const maxDescriptionLength = 2000

// RequestEvents receives lifecycle notifications. Delivery is best-effort and
// must not block; see notifications.Dispatcher.
type RequestEvents interface {
	RequestCreated(request *models.HelpRequest, recipients []string)
	RequestAccepted(request *models.HelpRequest, volunteerID uint)
	RequestCompleted(request *models.HelpRequest, volunteerID uint)
}

type noopEvents struct{}

func (noopEvents) RequestCreated(*models.HelpRequest, []string) {}
func (noopEvents) RequestAccepted(*models.HelpRequest, uint)    {}
func (noopEvents) RequestCompleted(*models.HelpRequest, uint)   {}

// RequestService drives help requests through their lifecycle:
// pending -> accepted -> completed.
type RequestService struct {
	requestRepo  repository.RequestRepository
	userRepo     repository.UserRepository
	locationRepo repository.LocationRepository
	cat          *catalog.Catalog
	events       RequestEvents
}

// NewRequestService returns a new RequestService. events may be nil.
func NewRequestService(
	requestRepo repository.RequestRepository,
	userRepo repository.UserRepository,
	locationRepo repository.LocationRepository,
	cat *catalog.Catalog,
	events RequestEvents,
) *RequestService {
	if events == nil {
		events = noopEvents{}
	}
	return &RequestService{
		requestRepo:  requestRepo,
		userRepo:     userRepo,
		locationRepo: locationRepo,
		cat:          cat,
		events:       events,
	}
}

// CreateRequestInput carries the fields a requester submits.
type CreateRequestInput struct {
	RequesterID uint
	Category    string
	Description string
	LocationID  uint
}

// CreateRequest validates the input and opens a new pending request. Every
// other verified user is notified so volunteers can pick it up.
func (s *RequestService) CreateRequest(ctx context.Context, in CreateRequestInput) (*models.HelpRequest, error) {
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return nil, models.NewValidationError("Description is required")
	}
	if len(in.Description) > maxDescriptionLength {
		return nil, models.NewValidationError("Description too long (max 2000 characters)")
	}
	if !s.cat.ValidCategory(in.Category) {
		return nil, models.NewValidationError("Unknown category: " + in.Category)
	}

	if _, err := s.userRepo.GetByID(ctx, in.RequesterID); err != nil {
		return nil, err
	}
	if _, err := s.locationRepo.GetByID(ctx, in.LocationID); err != nil {
		return nil, err
	}

	request := &models.HelpRequest{
		RequesterID: in.RequesterID,
		Category:    in.Category,
		Description: in.Description,
		LocationID:  in.LocationID,
		Status:      models.StatusPending,
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	recipients, err := s.userRepo.ListVerifiedEmails(ctx, in.RequesterID)
	if err != nil {
		// The request exists; a failed recipient lookup only degrades email.
		slog.Warn("listing broadcast recipients failed", "request_id", request.ID, "error", err)
		recipients = nil
	}
	s.events.RequestCreated(request, recipients)
	observability.RecordTransition("create", "ok")

	return s.requestRepo.GetByID(ctx, request.ID)
}

// GetRequest returns one request with its relations.
func (s *RequestService) GetRequest(ctx context.Context, id uint) (*models.HelpRequest, error) {
	return s.requestRepo.GetByID(ctx, id)
}

// ListRequests returns requests, optionally filtered by status.
func (s *RequestService) ListRequests(ctx context.Context, status string, limit, offset int) ([]models.HelpRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var st models.RequestStatus
	if status != "" {
		st = models.RequestStatus(status)
		switch st {
		case models.StatusPending, models.StatusAccepted, models.StatusCompleted:
		default:
			return nil, models.NewValidationError("Unknown status: " + status)
		}
	}
	return s.requestRepo.List(ctx, st, limit, offset)
}

// ListMyRequests returns the requests a user opened, any status.
func (s *RequestService) ListMyRequests(ctx context.Context, requesterID uint) ([]models.HelpRequest, error) {
	return s.requestRepo.ListByRequester(ctx, requesterID)
}

// AcceptRequest engages a volunteer on a pending request. A requester cannot
// accept their own request, and a volunteer already engaged elsewhere is
// rejected; the repository enforces both the status precondition and the
// single-engagement invariant atomically.
func (s *RequestService) AcceptRequest(ctx context.Context, requestID, volunteerID uint) (*models.HelpRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.RequesterID == volunteerID {
		return nil, models.NewValidationError("Cannot accept your own request")
	}
	if _, err := s.userRepo.GetByID(ctx, volunteerID); err != nil {
		return nil, err
	}

	if err := s.requestRepo.Accept(ctx, requestID, volunteerID); err != nil {
		observability.RecordTransition("accept", outcomeFor(err))
		return nil, err
	}
	observability.RecordTransition("accept", "ok")

	accepted, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	s.events.RequestAccepted(accepted, volunteerID)
	return accepted, nil
}

// CompleteRequest closes an accepted request. Only the assigned volunteer may
// complete it; the volunteer reference survives for history.
func (s *RequestService) CompleteRequest(ctx context.Context, requestID, callerID uint) (*models.HelpRequest, error) {
	if err := s.requestRepo.Complete(ctx, requestID, callerID); err != nil {
		observability.RecordTransition("complete", outcomeFor(err))
		return nil, err
	}
	observability.RecordTransition("complete", "ok")

	completed, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	s.events.RequestCompleted(completed, callerID)
	return completed, nil
}

// ActiveEngagement returns the volunteer's current accepted request, or nil
// when the volunteer is free.
func (s *RequestService) ActiveEngagement(ctx context.Context, volunteerID uint) (*models.HelpRequest, error) {
	return s.requestRepo.GetActiveByVolunteer(ctx, volunteerID)
}

func outcomeFor(err error) string {
	if appErr, ok := err.(*models.AppError); ok {
		return strings.ToLower(appErr.Code)
	}
	return "error"
}
