package trips

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dverna/trasferte/internal/common"
	"github.com/dverna/trasferte/internal/dbx"
	"github.com/dverna/trasferte/internal/server/models"
)

// PostgresRepository implements trip storage over a dbx.DBTX
// (*sql.DB or *sql.Tx). Every query filters by user_id: a user can never
// see or touch another user's trips.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts the trip, or returns the existing ID when the user already
// has a trip with the same location and date.
func (r *PostgresRepository) Upsert(ctx context.Context, trip *models.Trip) (string, error) {
	query := `
		INSERT INTO trips (user_id, location, date)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, location, date)
		DO UPDATE SET location = EXCLUDED.location
		RETURNING id
	`
	var id string
	if err := r.db.QueryRowContext(ctx, query, trip.UserID, trip.Location, trip.Date).Scan(&id); err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, tripID string) (*models.Trip, error) {
	query := `
		SELECT id, user_id, location, date FROM trips
		WHERE id = $1 AND user_id = $2
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, tripID, userID))
}

func (r *PostgresRepository) GetByLocationDate(ctx context.Context, userID, location, date string) (*models.Trip, error) {
	query := `
		SELECT id, user_id, location, date FROM trips
		WHERE user_id = $1 AND location = $2 AND date = $3
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID, location, date))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Trip, error) {
	trip := &models.Trip{}
	var date time.Time
	if err := row.Scan(&trip.ID, &trip.UserID, &trip.Location, &date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	trip.Date = date.Format(common.TripDateLayout)
	return trip, nil
}

// ListByUser returns the user's trips ordered by date, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Trip, error) {
	query := `
		SELECT id, user_id, location, date FROM trips
		WHERE user_id = $1
		ORDER BY date DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Trip
	for rows.Next() {
		trip := &models.Trip{}
		var date time.Time
		if err := rows.Scan(&trip.ID, &trip.UserID, &trip.Location, &date); err != nil {
			return nil, err
		}
		trip.Date = date.Format(common.TripDateLayout)
		result = append(result, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the trip; expense rows cascade in the database. Deleting a
// trip the user does not own yields ErrorNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, userID, tripID string) error {
	query := `
		DELETE FROM trips
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, tripID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
