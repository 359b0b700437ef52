// Package trips provides the PostgreSQL-backed repository for trip rows.
// Expenses live in their own repository; services compose the two.
package trips

import (
	"context"

	"github.com/dverna/trasferte/internal/server/models"
)

type Repository interface {
	// Upsert inserts the trip or, when the user already has one for the
	// same location and date, returns the existing row's ID.
	Upsert(ctx context.Context, trip *models.Trip) (string, error)
	GetByID(ctx context.Context, userID, tripID string) (*models.Trip, error)
	GetByLocationDate(ctx context.Context, userID, location, date string) (*models.Trip, error)
	// ListByUser returns the user's trips ordered by date, newest first.
	ListByUser(ctx context.Context, userID string) ([]*models.Trip, error)
	Delete(ctx context.Context, userID, tripID string) error
}
