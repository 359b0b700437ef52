package expenses

import (
	"context"

	"github.com/dverna/trasferte/internal/server/models"
)

// Repository stores individual expense rows belonging to a trip.
type Repository interface {
	// Create inserts the expense and returns its generated ID.
	Create(ctx context.Context, expense *models.Expense) (string, error)
	// GetByID returns the expense if it belongs to the user.
	GetByID(ctx context.Context, userID, expenseID string) (*models.Expense, error)
	// ListByTrip returns the trip's expenses ordered by ts ascending.
	ListByTrip(ctx context.Context, userID, tripID string) ([]*models.Expense, error)
	// ListByUser returns all of the user's expenses ordered by ts ascending.
	ListByUser(ctx context.Context, userID string) ([]*models.Expense, error)
	// Delete removes the expense and reports whether its trip still has
	// any remaining expenses.
	Delete(ctx context.Context, userID, expenseID string) (remaining int, tripID string, err error)
}
