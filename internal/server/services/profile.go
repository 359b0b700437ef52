package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dverna/trasferte/internal/common"
	"github.com/dverna/trasferte/internal/server/models"
	"github.com/dverna/trasferte/internal/server/repositories/repomanager"
)

// ProfileService stores per-user presentation settings (avatar, palette).
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{db: db, repomanager: m}
}

// Get returns the user's profile; a user who never saved one gets defaults.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.repomanager.Profiles(s.db).Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &models.Profile{UserID: userID}, nil
		}
		return nil, err
	}
	return profile, nil
}

// Save replaces the user's profile.
func (s *ProfileService) Save(ctx context.Context, userID string, profile *models.Profile) error {
	profile.UserID = userID
	return s.repomanager.Profiles(s.db).Upsert(ctx, profile)
}
