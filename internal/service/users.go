package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/storage"
	"github.com/foodgram/backend/internal/types"
	"github.com/foodgram/backend/internal/validation"
)

const avatarDir = "users"

type UserService struct {
	db        *gorm.DB
	store     storage.Store
	presenter *Presenter
}

func NewUserService(db *gorm.DB, store storage.Store, presenter *Presenter) *UserService {
	return &UserService{db: db, store: store, presenter: presenter}
}

// List returns one page of users ordered by email.
func (s *UserService) List(ctx context.Context, viewerID uint, page PageRequest) ([]types.UserResponse, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.User{}).Session(&gorm.Session{})

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	if err := q.Order("email").Offset(page.Offset()).Limit(page.Size()).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	out, err := s.presenter.Users(ctx, viewerID, users)
	return out, count, err
}

func (s *UserService) Get(ctx context.Context, viewerID, id uint) (*types.UserResponse, error) {
	user, err := loadUser(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return s.presenter.User(ctx, viewerID, user)
}

// SetAvatar stores a new avatar and removes the previous file.
func (s *UserService) SetAvatar(ctx context.Context, userID uint, data string) (string, error) {
	errs := validation.Errors{}
	if !validation.Field(errs, "avatar", data, validation.Required) {
		return "", errs
	}
	img, err := storage.DecodeDataURI(data)
	if err != nil {
		return "", validation.Single("avatar", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}

	user, err := loadUser(ctx, s.db, userID)
	if err != nil {
		return "", err
	}

	key, err := s.store.Save(ctx, avatarDir, img)
	if err != nil {
		return "", err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("avatar", key).Error; err != nil {
		s.discard(ctx, key)
		return "", fmt.Errorf("failed to update avatar: %w", err)
	}

	if user.Avatar != nil {
		s.discard(ctx, *user.Avatar)
	}
	return s.store.URL(key), nil
}

func (s *UserService) DeleteAvatar(ctx context.Context, userID uint) error {
	user, err := loadUser(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if user.Avatar == nil {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(user).Update("avatar", nil).Error; err != nil {
		return fmt.Errorf("failed to clear avatar: %w", err)
	}
	s.discard(ctx, *user.Avatar)
	return nil
}

// discard removes a stored file whose row no longer points at it. Failures
// only leave an orphan behind, so they are logged.
func (s *UserService) discard(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("failed to delete stored image")
	}
}

func loadUser(ctx context.Context, db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("User")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}
