package repository

import (
	"context"
	"errors"

	"puntovuela/internal/cache"
	"puntovuela/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestRepository defines persistence operations for help requests. Accept
// and Complete are the serialization points for the lifecycle: each runs its
// precondition checks and the state write inside one transaction.
type RequestRepository interface {
	Create(ctx context.Context, request *models.HelpRequest) error
	GetByID(ctx context.Context, id uint) (*models.HelpRequest, error)
	List(ctx context.Context, status models.RequestStatus, limit, offset int) ([]models.HelpRequest, error)
	ListByRequester(ctx context.Context, requesterID uint) ([]models.HelpRequest, error)
	GetActiveByVolunteer(ctx context.Context, volunteerID uint) (*models.HelpRequest, error)
	Accept(ctx context.Context, requestID, volunteerID uint) error
	Complete(ctx context.Context, requestID, callerID uint) error
}

type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository returns a new RequestRepository implementation.
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, request *models.HelpRequest) error {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, id uint) (*models.HelpRequest, error) {
	var request models.HelpRequest
	if err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Volunteer").
		Preload("Location").
		First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Request", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

func (r *requestRepository) List(ctx context.Context, status models.RequestStatus, limit, offset int) ([]models.HelpRequest, error) {
	var requests []models.HelpRequest
	q := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Volunteer").
		Preload("Location").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

func (r *requestRepository) ListByRequester(ctx context.Context, requesterID uint) ([]models.HelpRequest, error) {
	var requests []models.HelpRequest
	if err := r.db.WithContext(ctx).
		Preload("Volunteer").
		Preload("Location").
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

func (r *requestRepository) GetActiveByVolunteer(ctx context.Context, volunteerID uint) (*models.HelpRequest, error) {
	var request models.HelpRequest
	if err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Location").
		Where("volunteer_id = ? AND status = ?", volunteerID, models.StatusAccepted).
		First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

// lockRow adds a FOR UPDATE clause on dialects that support it. SQLite (used
// in tests) serializes writers on its own.
func lockRow(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// Accept atomically assigns the volunteer to a pending request. The row lock
// on the request and the engagement count are evaluated in the same
// transaction, so two concurrent accepts of the same request, or of two
// requests by the same volunteer, cannot both commit. The partial unique
// index on (volunteer_id) WHERE status = 'accepted' backstops the invariant.
func (r *requestRepository) Accept(ctx context.Context, requestID, volunteerID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.HelpRequest
		if err := lockRow(tx).First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Request", requestID)
			}
			return models.NewInternalError(err)
		}

		if request.Status != models.StatusPending {
			return models.NewInvalidStateError(request.Status, models.StatusAccepted)
		}

		var engaged int64
		if err := tx.Model(&models.HelpRequest{}).
			Where("volunteer_id = ? AND status = ?", volunteerID, models.StatusAccepted).
			Count(&engaged).Error; err != nil {
			return models.NewInternalError(err)
		}
		if engaged > 0 {
			return models.NewEngagementConflictError(volunteerID)
		}

		res := tx.Model(&models.HelpRequest{}).
			Where("id = ? AND status = ? AND volunteer_id IS NULL", requestID, models.StatusPending).
			Updates(map[string]interface{}{
				"status":       models.StatusAccepted,
				"volunteer_id": volunteerID,
			})
		if res.Error != nil {
			if isUniqueConstraintError(res.Error) {
				return models.NewEngagementConflictError(volunteerID)
			}
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			// Lost the race after the lock was released on a retried tx.
			// Re-read so the error reports the state the row actually landed in.
			var current models.HelpRequest
			if err := tx.First(&current, requestID).Error; err != nil {
				return models.NewInternalError(err)
			}
			return models.NewInvalidStateError(current.Status, models.StatusAccepted)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.InvalidateRequest(ctx, requestID)
	return nil
}

// Complete moves an accepted request to completed. Only the assigned
// volunteer may complete; the volunteer reference is retained for history.
func (r *requestRepository) Complete(ctx context.Context, requestID, callerID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.HelpRequest
		if err := lockRow(tx).First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Request", requestID)
			}
			return models.NewInternalError(err)
		}

		if request.Status != models.StatusAccepted {
			return models.NewInvalidStateError(request.Status, models.StatusCompleted)
		}
		if request.VolunteerID == nil || *request.VolunteerID != callerID {
			return models.NewUnauthorizedError("Only the assigned volunteer can complete this request")
		}

		if err := tx.Model(&models.HelpRequest{}).
			Where("id = ? AND status = ?", requestID, models.StatusAccepted).
			Update("status", models.StatusCompleted).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.InvalidateRequest(ctx, requestID)
	return nil
}
