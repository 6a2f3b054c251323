package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"puntovuela/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Integration(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	ts := time.Now().UnixNano()
	token := fmt.Sprintf("tok_%d", ts)
	u := &models.User{
		Username:          fmt.Sprintf("maria_%d", ts),
		Email:             fmt.Sprintf("maria_%d@e.com", ts),
		Password:          "hashed",
		FullName:          "María García",
		VerificationToken: &token,
	}

	t.Run("Create and GetByEmail", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, u))
		require.NotZero(t, u.ID)

		got, err := repo.GetByEmail(ctx, u.Email)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, u.Username, got.Username)
		assert.False(t, got.EmailVerified)
	})

	t.Run("GetByEmail missing returns nil without error", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "nobody@e.com")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Duplicate email is a validation error", func(t *testing.T) {
		dup := &models.User{
			Username: fmt.Sprintf("other_%d", ts),
			Email:    u.Email,
			Password: "hashed",
		}
		err := repo.Create(ctx, dup)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeValidation, appErr.Code)
	})

	t.Run("GetByVerificationToken and verify", func(t *testing.T) {
		got, err := repo.GetByVerificationToken(ctx, token)
		require.NoError(t, err)
		require.NotNil(t, got)

		got.EmailVerified = true
		got.VerificationToken = nil
		require.NoError(t, repo.Update(ctx, got))

		fresh, err := repo.GetByEmail(ctx, u.Email)
		require.NoError(t, err)
		assert.True(t, fresh.EmailVerified)
	})

	t.Run("SetActiveRole", func(t *testing.T) {
		require.NoError(t, repo.SetActiveRole(ctx, u.ID, models.RoleVolunteer))

		got, err := repo.GetByEmail(ctx, u.Email)
		require.NoError(t, err)
		require.NotNil(t, got.ActiveRole)
		assert.Equal(t, models.RoleVolunteer, *got.ActiveRole)
	})

	t.Run("SetActiveRole on missing user is not found", func(t *testing.T) {
		err := repo.SetActiveRole(ctx, 999999, models.RoleRequester)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})

	t.Run("ListVerifiedEmails excludes the author", func(t *testing.T) {
		emails, err := repo.ListVerifiedEmails(ctx, u.ID)
		require.NoError(t, err)
		assert.NotContains(t, emails, u.Email)

		all, err := repo.ListVerifiedEmails(ctx, 0)
		require.NoError(t, err)
		assert.Contains(t, all, u.Email)
	})
}

func TestMessageRepository_Integration(t *testing.T) {
	repo := NewMessageRepository(testDB)
	ctx := context.Background()

	requester := seedUser(t, "msg_req")
	volunteer := seedUser(t, "msg_vol")
	loc := seedLocation(t)
	req := seedRequest(t, requester.ID, loc.ID)

	t.Run("Create and ListByRequest in order", func(t *testing.T) {
		first := &models.Message{RequestID: req.ID, SenderID: requester.ID, Content: "Hola, ¿puedes ayudarme?"}
		second := &models.Message{RequestID: req.ID, SenderID: volunteer.ID, Content: "Claro, estoy en la sala 2"}
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))

		msgs, err := repo.ListByRequest(ctx, req.ID)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, requester.ID, msgs[0].SenderID)
		require.NotNil(t, msgs[1].Sender)
		assert.Equal(t, volunteer.Username, msgs[1].Sender.Username)
	})

	t.Run("ListByRequest empty for other request", func(t *testing.T) {
		other := seedRequest(t, requester.ID, loc.ID)
		msgs, err := repo.ListByRequest(ctx, other.ID)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}
