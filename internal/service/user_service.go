package service

import (
	"context"

	"puntovuela/internal/models"
	"puntovuela/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

type UpdateProfileInput struct {
	UserID   uint
	FullName string
	Phone    string
	Age      *int
	Gender   string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxNameLen = 100
	const maxPhoneLen = 20

	if in.FullName != "" {
		if len(in.FullName) > maxNameLen {
			return nil, models.NewValidationError("Name too long (max 100 characters)")
		}
		user.FullName = in.FullName
	}
	if in.Phone != "" {
		if len(in.Phone) > maxPhoneLen {
			return nil, models.NewValidationError("Phone too long (max 20 characters)")
		}
		user.Phone = in.Phone
	}
	if in.Age != nil {
		if *in.Age < 14 || *in.Age > 120 {
			return nil, models.NewValidationError("Age must be between 14 and 120")
		}
		user.Age = in.Age
	}
	if in.Gender != "" {
		user.Gender = in.Gender
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SetActiveRole switches the role the user acts under for this session. The
// selection is persisted so it survives reconnects, but it grants nothing by
// itself: lifecycle checks are ownership-based, not role-based.
func (s *UserService) SetActiveRole(ctx context.Context, userID uint, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, models.NewValidationError("Unknown role: " + string(role))
	}
	if err := s.userRepo.SetActiveRole(ctx, userID, role); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}
