package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"puntovuela/internal/config"
	"puntovuela/internal/database"
	"puntovuela/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type apiClient struct {
	t   *testing.T
	app *fiber.App
}

func (c *apiClient) do(method, path, token string, body interface{}) *http.Response {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.app.Test(req, 10000)
	require.NoError(c.t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func (c *apiClient) register(email, fullName string) string {
	c.t.Helper()
	resp := c.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":     email,
		"password":  "IntegrationPass1!",
		"full_name": fullName,
	})
	require.Equal(c.t, http.StatusCreated, resp.StatusCode)

	var payload struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decodeBody(c.t, resp, &payload)
	require.NotEmpty(c.t, payload.Token)
	return payload.Token
}

// TestAPILifecycle drives the full request lifecycle through the HTTP layer:
// registration, creation, acceptance, chat, and completion, with the
// engagement and authorization rules enforced at every step.
func TestAPILifecycle(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	dsn := fmt.Sprintf("file:api_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	cfg := &config.Config{JWTSecret: "integration-secret", Env: "test"}
	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)
	require.NoError(t, srv.locationRepo.SyncFromCatalog(context.Background(), srv.cat.Locations))

	app := fiber.New()
	srv.SetupRoutes(app)
	client := &apiClient{t: t, app: app}

	requesterToken := client.register("requester@example.com", "Carmen Ruiz")
	volunteerToken := client.register("volunteer@example.com", "Pablo Díaz")

	var firstID, secondID uint

	t.Run("unauthenticated access rejected", func(t *testing.T) {
		resp := client.do(http.MethodGet, "/api/requests", "", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("catalog is public", func(t *testing.T) {
		resp := client.do(http.MethodGet, "/api/catalog/categories", "", nil)
		var categories []map[string]interface{}
		decodeBody(t, resp, &categories)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, categories)

		resp = client.do(http.MethodGet, "/api/catalog/locations", "", nil)
		var locations []models.Location
		decodeBody(t, resp, &locations)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotEmpty(t, locations)
		assert.Equal(t, "punto-vuela", locations[0].Slug)
	})

	t.Run("create request", func(t *testing.T) {
		resp := client.do(http.MethodPost, "/api/requests", requesterToken, map[string]interface{}{
			"category":    "whatsapp",
			"description": "Necesito ayuda con los grupos de WhatsApp",
			"location_id": 1,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var created models.HelpRequest
		decodeBody(t, resp, &created)
		assert.Equal(t, models.StatusPending, created.Status)
		require.NotNil(t, created.Requester)
		firstID = created.ID

		resp = client.do(http.MethodPost, "/api/requests", requesterToken, map[string]interface{}{
			"category":    "cita-previa",
			"description": "Cita para el médico de cabecera",
			"location_id": 1,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var second models.HelpRequest
		decodeBody(t, resp, &second)
		secondID = second.ID
	})

	t.Run("unknown category rejected", func(t *testing.T) {
		resp := client.do(http.MethodPost, "/api/requests", requesterToken, map[string]interface{}{
			"category":    "fontaneria",
			"description": "Se me ha roto el grifo",
			"location_id": 1,
		})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("volunteer accepts", func(t *testing.T) {
		resp := client.do(http.MethodPost, fmt.Sprintf("/api/requests/%d/accept", firstID), volunteerToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var accepted models.HelpRequest
		decodeBody(t, resp, &accepted)
		assert.Equal(t, models.StatusAccepted, accepted.Status)
		require.NotNil(t, accepted.Volunteer)
	})

	t.Run("engaged volunteer cannot accept another", func(t *testing.T) {
		resp := client.do(http.MethodPost, fmt.Sprintf("/api/requests/%d/accept", secondID), volunteerToken, nil)
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		var errBody models.ErrorResponse
		decodeBody(t, resp, &errBody)
		assert.Equal(t, models.CodeEngagementConflict, errBody.Code)
	})

	t.Run("requester cannot accept own request", func(t *testing.T) {
		resp := client.do(http.MethodPost, fmt.Sprintf("/api/requests/%d/accept", secondID), requesterToken, nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("engagement endpoint", func(t *testing.T) {
		resp := client.do(http.MethodGet, "/api/requests/engagement", volunteerToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var engagement models.HelpRequest
		decodeBody(t, resp, &engagement)
		assert.Equal(t, firstID, engagement.ID)

		resp = client.do(http.MethodGet, "/api/requests/engagement", requesterToken, nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("chat on accepted request", func(t *testing.T) {
		resp := client.do(http.MethodPost, fmt.Sprintf("/api/requests/%d/messages", firstID), volunteerToken,
			map[string]string{"content": "Hola, ¿cuándo nos vemos?"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		_ = resp.Body.Close()

		resp = client.do(http.MethodPost, fmt.Sprintf("/api/requests/%d/messages", firstID), requesterToken,
			map[string]string{"content": "Mañana a las 10 me viene bien"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		_ = resp.Body.Close()

		resp = client.do(http.MethodGet, fmt.Sprintf("/api/requests/%d/messages", firstID), requesterToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var messages []models.Message
		decodeBody(t, resp, &messages)
		require.Len(t, messages, 2)
		assert.Equal(t, "Hola, ¿cuándo nos vemos?", messages[0].Content)
	})

	t.Run("outsider cannot read chat", func(t *testing.T) {
		outsiderToken := client.register("outsider@example.com", "Luisa Romero")
		resp := client.do(http.MethodGet, fmt.Sprintf("/api/requests/%d/messages", firstID), outsiderToken, nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("requester cannot complete", func(t *testing.T) {
		resp := client.do(http.MethodPost, fmt.Sprintf("/api/requests/%d/complete", firstID), requesterToken, nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("volunteer completes and is freed", func(t *testing.T) {
		resp := client.do(http.MethodPost, fmt.Sprintf("/api/requests/%d/complete", firstID), volunteerToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var completed models.HelpRequest
		decodeBody(t, resp, &completed)
		assert.Equal(t, models.StatusCompleted, completed.Status)
		require.NotNil(t, completed.VolunteerID)

		resp = client.do(http.MethodGet, "/api/requests/engagement", volunteerToken, nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		// Freed volunteer can engage again.
		resp2 := client.do(http.MethodPost, fmt.Sprintf("/api/requests/%d/accept", secondID), volunteerToken, nil)
		defer func() { _ = resp2.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp2.StatusCode)
	})

	t.Run("status filter", func(t *testing.T) {
		resp := client.do(http.MethodGet, "/api/requests?status=completed", requesterToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var completed []models.HelpRequest
		decodeBody(t, resp, &completed)
		require.Len(t, completed, 1)
		assert.Equal(t, firstID, completed[0].ID)

		resp = client.do(http.MethodGet, "/api/requests?status=cancelled", requesterToken, nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("role switching", func(t *testing.T) {
		resp := client.do(http.MethodPut, "/api/users/me/role", volunteerToken,
			map[string]string{"role": "volunteer"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var user models.User
		decodeBody(t, resp, &user)
		require.NotNil(t, user.ActiveRole)
		assert.Equal(t, models.RoleVolunteer, *user.ActiveRole)

		resp = client.do(http.MethodPut, "/api/users/me/role", volunteerToken,
			map[string]string{"role": "astronaut"})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("health endpoints", func(t *testing.T) {
		resp := client.do(http.MethodGet, "/health/live", "", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp2 := client.do(http.MethodGet, "/health", "", nil)
		defer func() { _ = resp2.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp2.StatusCode)
	})
}
