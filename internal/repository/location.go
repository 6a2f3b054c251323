package repository

import (
	"context"
	"errors"

	"puntovuela/internal/catalog"
	"puntovuela/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LocationRepository defines persistence operations for help-point locations.
type LocationRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Location, error)
	List(ctx context.Context) ([]models.Location, error)
	SyncFromCatalog(ctx context.Context, locations []catalog.Location) error
}

type locationRepository struct {
	db *gorm.DB
}

// NewLocationRepository returns a new LocationRepository implementation.
func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) GetByID(ctx context.Context, id uint) (*models.Location, error) {
	var location models.Location
	if err := r.db.WithContext(ctx).First(&location, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Location", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &location, nil
}

func (r *locationRepository) List(ctx context.Context) ([]models.Location, error) {
	var locations []models.Location
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&locations).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return locations, nil
}

// SyncFromCatalog upserts catalog locations by slug so a deployment can add
// points without dropping existing request references.
func (r *locationRepository) SyncFromCatalog(ctx context.Context, locations []catalog.Location) error {
	for _, loc := range locations {
		row := models.Location{
			Slug: loc.Slug,
			Name: loc.Name,
			Lat:  loc.Lat,
			Lng:  loc.Lng,
		}
		if err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slug"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "lat", "lng"}),
			}).
			Create(&row).Error; err != nil {
			return models.NewInternalError(err)
		}
	}
	return nil
}
