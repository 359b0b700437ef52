// Package users provides the PostgreSQL-backed repository for user accounts.
package users

import (
	"context"

	"github.com/dverna/trasferte/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, userName string) (*models.User, error)
}
