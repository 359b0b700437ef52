package expenses

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

func (r *PostgresRepository) Create(ctx context.Context, expense *models.Expense) (string, error) {
	query := `
		INSERT INTO expenses (trip_id, user_id, amount, comment, photo_url, photo_path, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var id string
	err := r.db.QueryRowContext(ctx, query,
		expense.TripID, expense.UserID, expense.Amount,
		expense.Comment, expense.PhotoURL, expense.PhotoPath, expense.Timestamp,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, expenseID string) (*models.Expense, error) {
	query := `
		SELECT id, trip_id, user_id, amount, comment, photo_url, photo_path, ts
		FROM expenses
		WHERE id = $1 AND user_id = $2
	`
	expense := &models.Expense{}
	err := r.db.QueryRowContext(ctx, query, expenseID, userID).Scan(
		&expense.ID, &expense.TripID, &expense.UserID, &expense.Amount,
		&expense.Comment, &expense.PhotoURL, &expense.PhotoPath, &expense.Timestamp,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return expense, nil
}

func (r *PostgresRepository) ListByTrip(ctx context.Context, userID, tripID string) ([]*models.Expense, error) {
	query := `
		SELECT id, trip_id, user_id, amount, comment, photo_url, photo_path, ts
		FROM expenses
		WHERE trip_id = $1 AND user_id = $2
		ORDER BY ts ASC
	`
	return r.list(ctx, query, tripID, userID)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	query := `
		SELECT id, trip_id, user_id, amount, comment, photo_url, photo_path, ts
		FROM expenses
		WHERE user_id = $1
		ORDER BY ts ASC
	`
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Expense
	for rows.Next() {
		expense := &models.Expense{}
		if err := rows.Scan(
			&expense.ID, &expense.TripID, &expense.UserID, &expense.Amount,
			&expense.Comment, &expense.PhotoURL, &expense.PhotoPath, &expense.Timestamp,
		); err != nil {
			return nil, err
		}
		result = append(result, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the expense and counts the trip's remaining expenses so the
// caller can decide whether to drop the now-empty trip.
func (r *PostgresRepository) Delete(ctx context.Context, userID, expenseID string) (int, string, error) {
	query := `
		DELETE FROM expenses
		WHERE id = $1 AND user_id = $2
		RETURNING trip_id
	`
	var tripID string
	if err := r.db.QueryRowContext(ctx, query, expenseID, userID).Scan(&tripID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", common.ErrorNotFound
		}
		return 0, "", fmt.Errorf("db error: %w", err)
	}

	var remaining int
	countQuery := `SELECT count(*) FROM expenses WHERE trip_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, tripID).Scan(&remaining); err != nil {
		return 0, "", fmt.Errorf("db error: %w", err)
	}
	return remaining, tripID, nil
}
