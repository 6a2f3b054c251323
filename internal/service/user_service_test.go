package service

import (
	"context"
	"strings"
	"testing"

	"puntovuela/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserServiceUpdateProfile(t *testing.T) {
	stored := &models.User{ID: 1, FullName: "María"}
	users := noopUserRepo()
	users.getByIDFn = func(context.Context, uint) (*models.User, error) { return stored, nil }

	svc := NewUserService(users)

	t.Run("Updates provided fields only", func(t *testing.T) {
		age := 70
		updated, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
			UserID: 1, Phone: "600111222", Age: &age,
		})
		require.NoError(t, err)
		assert.Equal(t, "María", updated.FullName)
		assert.Equal(t, "600111222", updated.Phone)
		require.NotNil(t, updated.Age)
		assert.Equal(t, 70, *updated.Age)
	})

	t.Run("Rejects oversized name", func(t *testing.T) {
		_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
			UserID: 1, FullName: strings.Repeat("a", 101),
		})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeValidation, appErr.Code)
	})

	t.Run("Rejects out-of-range age", func(t *testing.T) {
		age := 7
		_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, Age: &age})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeValidation, appErr.Code)
	})
}

func TestUserServiceSetActiveRole(t *testing.T) {
	t.Run("Rejects unknown role", func(t *testing.T) {
		svc := NewUserService(noopUserRepo())
		_, err := svc.SetActiveRole(context.Background(), 1, models.Role("admin"))
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeValidation, appErr.Code)
	})

	t.Run("Persists the switch", func(t *testing.T) {
		var gotRole models.Role
		users := noopUserRepo()
		users.setActiveRoleFn = func(_ context.Context, _ uint, role models.Role) error {
			gotRole = role
			return nil
		}
		role := models.RoleVolunteer
		users.getByIDFn = func(context.Context, uint) (*models.User, error) {
			return &models.User{ID: 1, ActiveRole: &role}, nil
		}

		svc := NewUserService(users)
		user, err := svc.SetActiveRole(context.Background(), 1, models.RoleVolunteer)
		require.NoError(t, err)
		assert.Equal(t, models.RoleVolunteer, gotRole)
		assert.True(t, user.HasRole(models.RoleVolunteer))
	})
}
