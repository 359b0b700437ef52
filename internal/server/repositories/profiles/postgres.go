package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dverna/trasferte/internal/common"
	"github.com/dverna/trasferte/internal/dbx"
	"github.com/dverna/trasferte/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.Profile, error) {
	query := `
		SELECT user_id, avatar_url, palette, updated_at FROM profiles
		WHERE user_id = $1
	`
	profile := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.UserID, &profile.AvatarURL, &profile.Palette, &profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return profile, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (user_id, avatar_url, palette, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id)
		DO UPDATE SET avatar_url = EXCLUDED.avatar_url, palette = EXCLUDED.palette, updated_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, profile.UserID, profile.AvatarURL, profile.Palette); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
