package seed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"puntovuela/internal/catalog"
	"puntovuela/internal/database"
	"puntovuela/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:seed_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func TestSeeder_Run(t *testing.T) {
	db := openSeedDB(t)
	cat, err := catalog.Load("")
	require.NoError(t, err)

	seeder := NewSeeder(db, cat)
	opts := Options{NumUsers: 8, NumRequests: 16}
	require.NoError(t, seeder.Run(context.Background(), opts))

	var userCount, requestCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.HelpRequest{}).Count(&requestCount).Error)
	assert.Equal(t, int64(opts.NumUsers), userCount)
	assert.Equal(t, int64(opts.NumRequests), requestCount)

	// Lifecycle spread: at least one request in each non-pending state.
	var accepted, completed int64
	require.NoError(t, db.Model(&models.HelpRequest{}).Where("status = ?", models.StatusAccepted).Count(&accepted).Error)
	require.NoError(t, db.Model(&models.HelpRequest{}).Where("status = ?", models.StatusCompleted).Count(&completed).Error)
	assert.Positive(t, accepted)
	assert.Positive(t, completed)

	// Seeded data must honor the engagement rule: no volunteer holds more
	// than one accepted request.
	type engagement struct {
		VolunteerID uint
		N           int64
	}
	var engagements []engagement
	require.NoError(t, db.Model(&models.HelpRequest{}).
		Select("volunteer_id, COUNT(*) as n").
		Where("status = ?", models.StatusAccepted).
		Group("volunteer_id").
		Find(&engagements).Error)
	for _, e := range engagements {
		assert.LessOrEqualf(t, e.N, int64(1), "volunteer %d holds %d accepted requests", e.VolunteerID, e.N)
	}

	// No request is assigned to its own requester.
	var selfAssigned int64
	require.NoError(t, db.Model(&models.HelpRequest{}).
		Where("volunteer_id IS NOT NULL AND volunteer_id = requester_id").
		Count(&selfAssigned).Error)
	assert.Zero(t, selfAssigned)

	// Messages only exist on requests that have a volunteer.
	var orphanMessages int64
	require.NoError(t, db.Model(&models.Message{}).
		Joins("JOIN help_requests ON help_requests.id = messages.request_id").
		Where("help_requests.volunteer_id IS NULL").
		Count(&orphanMessages).Error)
	assert.Zero(t, orphanMessages)
}

func TestSeeder_Clean(t *testing.T) {
	db := openSeedDB(t)
	cat, err := catalog.Load("")
	require.NoError(t, err)

	seeder := NewSeeder(db, cat)
	require.NoError(t, seeder.Run(context.Background(), Options{NumUsers: 4, NumRequests: 4}))
	require.NoError(t, seeder.Run(context.Background(), Options{NumUsers: 4, NumRequests: 4, ShouldClean: true}))

	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.Equal(t, int64(4), userCount, "clean run should replace, not accumulate")
}

func TestFactory_BuildUser(t *testing.T) {
	f := NewFactory()

	u1 := f.BuildUser(0)
	u2 := f.BuildUser(1)

	assert.NotEqual(t, u1.Email, u2.Email)
	assert.NotEqual(t, u1.Username, u2.Username)
	assert.True(t, u1.EmailVerified)
	assert.NotNil(t, u1.ActiveRole)
	require.NotNil(t, u1.Age)
	assert.GreaterOrEqual(t, *u1.Age, 18)

	// The stored hash must verify against the published demo password.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u1.Password), []byte(DemoPassword)))
}

func TestFactory_BuildThread_Alternates(t *testing.T) {
	f := NewFactory()
	volunteer := uint(9)
	req := models.HelpRequest{
		ID:          3,
		RequesterID: 4,
		VolunteerID: &volunteer,
		Status:      models.StatusAccepted,
		CreatedAt:   time.Now().Add(-24 * time.Hour),
	}

	msgs := f.BuildThread(req)
	require.GreaterOrEqual(t, len(msgs), 2)
	assert.Equal(t, req.RequesterID, msgs[0].SenderID)
	assert.Equal(t, volunteer, msgs[1].SenderID)
	for _, m := range msgs {
		assert.Equal(t, req.ID, m.RequestID)
		assert.NotEmpty(t, m.Content)
	}
}
