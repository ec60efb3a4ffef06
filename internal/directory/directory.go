// Package directory provides read-only access to the user profile
// directory. The engine never creates, mutates, or deletes profiles.
package directory

import (
	"context"
	"fmt"

	"taskmesh/internal/model"
	"taskmesh/internal/repository"
)

// Client looks up profiles by identifier. Lookups degrade rather than
// fail: a fetch error yields an empty mapping and callers treat missing
// entries as "unknown user".
type Client struct {
	profiles *repository.ProfileRepository
}

func NewClient(profiles *repository.ProfileRepository) *Client {
	return &Client{profiles: profiles}
}

// FetchAll returns a snapshot of the whole directory keyed by profile ID.
// The returned map is always usable; a non-nil error signals the snapshot
// is empty or partial because the underlying fetch failed.
func (c *Client) FetchAll(ctx context.Context) (map[string]model.Profile, error) {
	snapshot := make(map[string]model.Profile)
	profiles, err := c.profiles.ListAll(ctx)
	if err != nil {
		return snapshot, fmt.Errorf("directory fetch: %w", err)
	}
	for _, p := range profiles {
		snapshot[p.ID] = p
	}
	return snapshot, nil
}

// FetchOne resolves a single profile. The second result is false when the
// profile is unknown or the lookup failed.
func (c *Client) FetchOne(ctx context.Context, id string) (*model.Profile, bool) {
	profile, err := c.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, false
	}
	return profile, true
}
