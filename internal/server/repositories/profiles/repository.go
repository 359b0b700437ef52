package profiles

import (
	"context"

	"github.com/dverna/trasferte/internal/server/models"
)

// Repository stores per-user presentation settings.
type Repository interface {
	// Get returns the user's profile, or ErrorNotFound when none was saved.
	Get(ctx context.Context, userID string) (*models.Profile, error)
	// Upsert saves the profile, replacing any previous one.
	Upsert(ctx context.Context, profile *models.Profile) error
}
