package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
)

// DefaultRecipesLimit caps the recipe preview of a subscription entry.
const DefaultRecipesLimit = 3

type FollowService struct {
	db        *gorm.DB
	presenter *Presenter
}

func NewFollowService(db *gorm.DB, presenter *Presenter) *FollowService {
	return &FollowService{db: db, presenter: presenter}
}

// Subscribe makes userID follow targetID and returns the target's entry.
func (s *FollowService) Subscribe(ctx context.Context, userID, targetID uint, recipesLimit int) (*types.SubscriptionResponse, error) {
	target, err := loadUser(ctx, s.db, targetID)
	if err != nil {
		return nil, err
	}
	if userID == targetID {
		return nil, ErrSelfFollow
	}

	db := s.db.WithContext(ctx)
	already, err := exists(db.Model(&models.Follow{}).Where("follower_id = ? AND following_id = ?", userID, targetID))
	if err != nil {
		return nil, err
	}
	if already {
		return nil, detail(ErrAlreadyExists, "You are already subscribed to this user.")
	}

	if err := db.Create(&models.Follow{FollowerID: userID, FollowingID: targetID}).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, detail(ErrAlreadyExists, "You are already subscribed to this user.")
		}
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	logging.Debug().Uint("follower_id", userID).Uint("following_id", targetID).Msg("subscribed")
	return s.entry(ctx, userID, target, recipesLimit)
}

func (s *FollowService) Unsubscribe(ctx context.Context, userID, targetID uint) error {
	if _, err := loadUser(ctx, s.db, targetID); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", userID, targetID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return fmt.Errorf("failed to unsubscribe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return detail(ErrNotPresent, "You are not subscribed to this user.")
	}
	return nil
}

// Subscriptions pages through the authors userID follows, in follow order.
func (s *FollowService) Subscriptions(ctx context.Context, userID uint, page PageRequest, recipesLimit int) ([]types.SubscriptionResponse, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.follower_id = ?", userID).
		Session(&gorm.Session{})

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	var authors []models.User
	if err := q.Order("follows.id").Offset(page.Offset()).Limit(page.Size()).Find(&authors).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	out := make([]types.SubscriptionResponse, 0, len(authors))
	for i := range authors {
		entry, err := s.entry(ctx, userID, &authors[i], recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *entry)
	}
	return out, count, nil
}

func (s *FollowService) entry(ctx context.Context, viewerID uint, author *models.User, recipesLimit int) (*types.SubscriptionResponse, error) {
	if recipesLimit < 0 {
		recipesLimit = DefaultRecipesLimit
	}

	user, err := s.presenter.User(ctx, viewerID, author)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Recipe{}).Where("author_id = ?", author.ID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}

	// recipes_limit comes from the client; never size anything by it directly.
	if int64(recipesLimit) > count {
		recipesLimit = int(count)
	}

	preview := []types.RecipeShortResponse{}
	if recipesLimit > 0 {
		var recipes []models.Recipe
		err := db.Where("author_id = ?", author.ID).Order("id DESC").Limit(recipesLimit).Find(&recipes).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load recipes: %w", err)
		}
		preview = make([]types.RecipeShortResponse, 0, len(recipes))
		for i := range recipes {
			preview = append(preview, s.presenter.RecipeShort(&recipes[i]))
		}
	}

	return &types.SubscriptionResponse{
		UserResponse: *user,
		Recipes:      preview,
		RecipesCount: count,
	}, nil
}
