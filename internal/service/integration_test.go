package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"puntovuela/internal/database"
	"puntovuela/internal/models"
	"puntovuela/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestRequestLifecycleScenario walks a request through its whole life against
// real repositories: create, concurrent-style accept attempts, completion and
// re-engagement.
func TestRequestLifecycleScenario(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:lifecycle_%d?mode=memory&cache=shared", time.Now().UnixNano())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	ctx := context.Background()
	requestRepo := repository.NewRequestRepository(db)
	userRepo := repository.NewUserRepository(db)
	locationRepo := repository.NewLocationRepository(db)

	events := &eventsRecorder{}
	svc := NewRequestService(requestRepo, userRepo, locationRepo, testCatalog(t), events)

	requester := &models.User{Username: "ana", Email: "ana@e.com", Password: "x", EmailVerified: true}
	volunteerA := &models.User{Username: "bea", Email: "bea@e.com", Password: "x", EmailVerified: true}
	volunteerB := &models.User{Username: "carlos", Email: "carlos@e.com", Password: "x", EmailVerified: true}
	require.NoError(t, db.Create(requester).Error)
	require.NoError(t, db.Create(volunteerA).Error)
	require.NoError(t, db.Create(volunteerB).Error)
	loc := &models.Location{Slug: "punto-vuela", Name: "Punto Vuela", Lat: 36.876, Lng: -5.045}
	require.NoError(t, db.Create(loc).Error)

	// Requester opens two requests.
	first, err := svc.CreateRequest(ctx, CreateRequestInput{
		RequesterID: requester.ID, Category: "whatsapp",
		Description: "Configurar WhatsApp en el móvil nuevo", LocationID: loc.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, first.Status)

	second, err := svc.CreateRequest(ctx, CreateRequestInput{
		RequesterID: requester.ID, Category: "cita-previa",
		Description: "Pedir cita en el centro de salud", LocationID: loc.ID,
	})
	require.NoError(t, err)

	// Broadcast excluded the requester.
	require.Len(t, events.recipients, 2)
	assert.NotContains(t, events.recipients[0], requester.Email)
	assert.Contains(t, events.recipients[0], volunteerA.Email)

	// Volunteer A engages on the first request.
	accepted, err := svc.AcceptRequest(ctx, first.ID, volunteerA.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, accepted.Status)

	// A second volunteer arriving on the same request loses.
	_, err = svc.AcceptRequest(ctx, first.ID, volunteerB.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeInvalidStateTransition, appErr.Code)

	// Volunteer A cannot take a second engagement while the first is open.
	_, err = svc.AcceptRequest(ctx, second.ID, volunteerA.ID)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeEngagementConflict, appErr.Code)

	// The engagement is queryable.
	active, err := svc.ActiveEngagement(ctx, volunteerA.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, first.ID, active.ID)

	// The requester cannot complete; only the engaged volunteer can.
	_, err = svc.CompleteRequest(ctx, first.ID, requester.ID)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeUnauthorized, appErr.Code)

	completed, err := svc.CompleteRequest(ctx, first.ID, volunteerA.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)
	require.NotNil(t, completed.VolunteerID)
	assert.Equal(t, volunteerA.ID, *completed.VolunteerID)

	// Completion released the volunteer: the second request is now available.
	active, err = svc.ActiveEngagement(ctx, volunteerA.ID)
	require.NoError(t, err)
	assert.Nil(t, active)

	_, err = svc.AcceptRequest(ctx, second.ID, volunteerA.ID)
	require.NoError(t, err)

	assert.Equal(t, []uint{volunteerA.ID, volunteerA.ID}, events.accepted)
	assert.Equal(t, []uint{volunteerA.ID}, events.completed)
}
