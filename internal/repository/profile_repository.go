package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskmesh/internal/model"
)

// ProfileRepository reads the user profile directory. Profiles are owned
// by the identity subsystem; Upsert exists for seeding and tests only.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) ListAll(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	if err := r.db.WithContext(ctx).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// Upsert creates the profile or updates its mutable attributes.
func (r *ProfileRepository) Upsert(ctx context.Context, profile model.Profile) (*model.Profile, error) {
	var existing model.Profile
	db := r.db.WithContext(ctx)
	err := db.Where("id = ?", profile.ID).First(&existing).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"display_name": profile.DisplayName,
			"email":        profile.Email,
			"avatar_url":   profile.AvatarURL,
		}
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		return &existing, nil
	case err == gorm.ErrRecordNotFound:
		if err := db.Create(&profile).Error; err != nil {
			return nil, fmt.Errorf("create profile: %w", err)
		}
		return &profile, nil
	default:
		return nil, fmt.Errorf("find profile: %w", err)
	}
}
