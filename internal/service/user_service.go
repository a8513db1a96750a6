package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"userboard/internal/cache"
	"userboard/internal/errors"
	"userboard/internal/model"
	"userboard/internal/repository"
)

const bcryptCost = 10

const (
	userListCacheKey = "users:all"
	userListCacheTTL = 5 * time.Minute
)

// UpdateParams carries the optional fields of a partial update.
// A nil pointer means "leave unchanged".
type UpdateParams struct {
	Username *string
	Email    *string
	Password *string
}

// UserService exposes domain operations.
type UserService interface {
	Create(ctx context.Context, username, email, password string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id uint, params UpdateParams) (*model.User, error)
	Delete(ctx context.Context, id uint) (*model.User, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

// Create validates the required fields, rejects duplicate emails and stores
// the user with a bcrypt password hash.
func (s *userService) Create(ctx context.Context, username, email, password string) (*model.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, errors.ErrMissingFields
	}

	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	_ = s.cache.Delete(ctx, userListCacheKey)
	return user, nil
}

// List returns all users, served from the list cache when warm.
func (s *userService) List(ctx context.Context) ([]model.User, error) {
	if data, _ := s.cache.Get(ctx, userListCacheKey); data != nil {
		var cached []model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(users); err == nil {
		_ = s.cache.Set(ctx, userListCacheKey, payload, userListCacheTTL)
	}
	return users, nil
}

// Update applies only the provided fields. A provided password is re-hashed;
// a changed email re-runs the uniqueness check.
func (s *userService) Update(ctx context.Context, id uint, params UpdateParams) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if params.Username != nil {
		user.Username = *params.Username
	}
	if params.Email != nil && *params.Email != user.Email {
		if err := s.ensureEmailFree(ctx, *params.Email, id); err != nil {
			return nil, err
		}
		user.Email = *params.Email
	}
	if params.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*params.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	_ = s.cache.Delete(ctx, userListCacheKey)
	return user, nil
}

// Delete removes the user and returns the deleted record.
func (s *userService) Delete(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}

	_ = s.cache.Delete(ctx, userListCacheKey)
	return user, nil
}

// ensureEmailFree returns ErrEmailTaken when another user owns the email.
// The unique index on the column backs this check against concurrent inserts.
func (s *userService) ensureEmailFree(ctx context.Context, email string, selfID uint) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil && existing != nil && existing.ID != selfID {
		return errors.ErrEmailTaken
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}
