package server

import (
	"puntovuela/internal/models"
	"puntovuela/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateRequest handles POST /api/requests
func (s *Server) CreateRequest(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		Category    string `json:"category"`
		Description string `json:"description"`
		LocationID  uint   `json:"location_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	request, err := s.requestService.CreateRequest(c.Context(), service.CreateRequestInput{
		RequesterID: userID,
		Category:    req.Category,
		Description: req.Description,
		LocationID:  req.LocationID,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(request)
}

// GetRequests handles GET /api/requests?status=pending
func (s *Server) GetRequests(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	requests, err := s.requestService.ListRequests(c.Context(), c.Query("status"), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(requests)
}

// GetRequest handles GET /api/requests/:id
func (s *Server) GetRequest(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	request, err := s.requestService.GetRequest(c.Context(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(request)
}

// GetMyRequests handles GET /api/requests/mine
func (s *Server) GetMyRequests(c *fiber.Ctx) error {
	userID := currentUserID(c)

	requests, err := s.requestService.ListMyRequests(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(requests)
}

// AcceptRequest handles POST /api/requests/:id/accept
func (s *Server) AcceptRequest(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	request, err := s.requestService.AcceptRequest(c.Context(), id, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(request)
}

// CompleteRequest handles POST /api/requests/:id/complete
func (s *Server) CompleteRequest(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	request, err := s.requestService.CompleteRequest(c.Context(), id, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(request)
}

// GetMyEngagement handles GET /api/requests/engagement. It returns the
// caller's active engagement, or 204 when the volunteer is free.
func (s *Server) GetMyEngagement(c *fiber.Ctx) error {
	userID := currentUserID(c)

	request, err := s.requestService.ActiveEngagement(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if request == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(request)
}
