package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	repository "github.com/anna199/TeachTogether/internal/database/mongo"
	"github.com/anna199/TeachTogether/internal/entity"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores input past 72 bytes and x/crypto rejects it.
const maxPasswordBytes = 72

type userService struct {
	userRepo   repository.UserRepository
	bcryptCost int
}

// NewUserService creates a UserService hashing passwords at bcryptCost.
// Out-of-range costs fall back to bcrypt.DefaultCost.
func NewUserService(userRepo repository.UserRepository, bcryptCost int) UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{
		userRepo:   userRepo,
		bcryptCost: bcryptCost,
	}
}

func (s *userService) CreateUser(ctx context.Context, req *entity.CreateUserRequest) (*entity.User, error) {
	user := req.NewUser(time.Now().UTC())
	user.Password = req.Password
	if err := entity.Validate(user); err != nil {
		return nil, err
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, entity.NewValidationError("password", "max",
			fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hash)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// CheckPassword compares password with the stored hash.
func (s *userService) CheckPassword(user *entity.User, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return entity.ErrInvalidPassword
	}
	if err != nil {
		return fmt.Errorf("failed to compare password: %w", err)
	}
	return nil
}
