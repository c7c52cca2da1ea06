package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/recipebox/recipes/pkg/recipes/auth"
	"github.com/recipebox/recipes/pkg/recipes/models"
	"gorm.io/gorm"
)

// IssueOrFetchToken returns the user's token, minting one on first use.
func (s *UserStore) IssueOrFetchToken(ctx context.Context, user *models.User) (string, error) {
	db := s.db.WithContext(ctx)

	var token models.AuthToken
	err := db.Where(&models.AuthToken{UserID: user.ID}).First(&token).Error
	if err == nil {
		return token.Key, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	key, err := auth.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	token = models.AuthToken{Key: key, UserID: user.ID}
	if err := db.Create(&token).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", err
		}
		// A concurrent login for the same user won the insert.
		if err := db.Where(&models.AuthToken{UserID: user.ID}).First(&token).Error; err != nil {
			return "", err
		}
	}

	return token.Key, nil
}

// ResolveToken returns the active user holding key.
func (s *UserStore) ResolveToken(ctx context.Context, key string) (*models.User, error) {
	if key == "" {
		return nil, auth.ErrInvalidToken
	}

	var token models.AuthToken
	err := s.db.WithContext(ctx).Preload("User").Where(&models.AuthToken{Key: key}).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, auth.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	if token.User.ID == 0 || !token.User.IsActive {
		return nil, auth.ErrInactiveUser
	}

	return &token.User, nil
}
