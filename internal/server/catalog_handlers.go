package server

import (
	"puntovuela/internal/cache"
	"puntovuela/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetCategories handles GET /api/catalog/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	return c.JSON(s.cat.Categories)
}

// GetLocations handles GET /api/catalog/locations. Locations come from the
// database (synced from the catalog at startup) so IDs usable in requests are
// returned.
func (s *Server) GetLocations(c *fiber.Ctx) error {
	var locations []models.Location
	err := cache.Aside(c.Context(), cache.LocationsKey, &locations, cache.LocationsTTL, func() error {
		var err error
		locations, err = s.locationRepo.List(c.Context())
		return err
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(locations)
}
