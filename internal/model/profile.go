package model

import "time"

// Profile stores user identity metadata. Profiles are owned by an external
// identity subsystem; the engine only reads snapshots of them.
type Profile struct {
	ID          string `gorm:"primaryKey"`
	DisplayName *string
	Email       *string
	AvatarURL   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Name returns the best human-readable label for the profile.
func (p Profile) Name() string {
	if p.DisplayName != nil && *p.DisplayName != "" {
		return *p.DisplayName
	}
	if p.Email != nil && *p.Email != "" {
		return *p.Email
	}
	return p.ID
}
