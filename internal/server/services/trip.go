package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dverna/trasferte/internal/common"
	"github.com/dverna/trasferte/internal/dbx"
	"github.com/dverna/trasferte/internal/logging"
	"github.com/dverna/trasferte/internal/server/config"
	"github.com/dverna/trasferte/internal/server/models"
	"github.com/dverna/trasferte/internal/server/repositories/repomanager"
)

// TripService manages trips and their expenses. A trip is identified by the
// pair (location, date) within a user's account: adding an expense to a
// location/date that has no trip yet creates the trip, and removing the last
// expense of a trip removes the trip itself.
type TripService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	photos      *PhotoService
	logger      logging.Logger
}

func NewTripService(db *sql.DB, m repomanager.RepositoryManager, photos *PhotoService, cfg *config.Config, logger logging.Logger) *TripService {
	return &TripService{db: db, repomanager: m, photos: photos, logger: logger}
}

// List returns the user's trips newest-date-first, each with its expenses
// ordered oldest-first.
func (s *TripService) List(ctx context.Context, userID string) ([]models.Trip, error) {
	trips, err := s.repomanager.Trips(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing trips: %v", err)
	}

	expenses, err := s.repomanager.Expenses(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing expenses: %v", err)
	}

	byTrip := make(map[string][]models.Expense, len(trips))
	for _, e := range expenses {
		byTrip[e.TripID] = append(byTrip[e.TripID], *e)
	}

	result := make([]models.Trip, 0, len(trips))
	for _, t := range trips {
		trip := *t
		trip.Expenses = byTrip[t.ID]
		result = append(result, trip)
	}
	return result, nil
}

// Get returns one trip with its expenses.
func (s *TripService) Get(ctx context.Context, userID, tripID string) (*models.Trip, error) {
	trip, err := s.repomanager.Trips(s.db).GetByID(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.repomanager.Expenses(s.db).ListByTrip(ctx, userID, tripID)
	if err != nil {
		return nil, fmt.Errorf("error listing expenses: %v", err)
	}
	trip.Expenses = make([]models.Expense, 0, len(expenses))
	for _, e := range expenses {
		trip.Expenses = append(trip.Expenses, *e)
	}
	return trip, nil
}

// Find resolves a trip by its natural key (location, date) and returns it
// with its expenses.
func (s *TripService) Find(ctx context.Context, userID, location, date string) (*models.Trip, error) {
	trip, err := s.repomanager.Trips(s.db).GetByLocationDate(ctx, userID, location, date)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, trip.ID)
}

// AddExpense records an expense against the trip for (location, date),
// creating the trip first when needed. Returns the stored expense.
func (s *TripService) AddExpense(ctx context.Context, userID, location, date string, expense *models.Expense) (*models.Expense, error) {
	if expense.Amount <= 0 {
		return nil, common.ErrorInvalidAmount
	}
	if _, err := time.Parse(common.TripDateLayout, date); err != nil {
		return nil, common.ErrorInvalidDate
	}
	if expense.Timestamp == 0 {
		expense.Timestamp = time.Now().UnixMilli()
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tripID, err := s.repomanager.Trips(tx).Upsert(ctx, &models.Trip{
			UserID:   userID,
			Location: location,
			Date:     date,
		})
		if err != nil {
			return fmt.Errorf("error upserting trip: %v", err)
		}

		expense.TripID = tripID
		expense.UserID = userID

		id, err := s.repomanager.Expenses(tx).Create(ctx, expense)
		if err != nil {
			return fmt.Errorf("error creating expense: %v", err)
		}
		expense.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// RemoveExpense deletes the expense, drops the trip when it was the trip's
// last expense, and removes the stored receipt photo if one exists.
func (s *TripService) RemoveExpense(ctx context.Context, userID, expenseID string) error {
	expense, err := s.repomanager.Expenses(s.db).GetByID(ctx, userID, expenseID)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		remaining, tripID, err := s.repomanager.Expenses(tx).Delete(ctx, userID, expenseID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			if err := s.repomanager.Trips(tx).Delete(ctx, userID, tripID); err != nil && !errors.Is(err, common.ErrorNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.deletePhoto(ctx, expense.PhotoPath)
	return nil
}

// Delete removes the trip, its expenses, and their stored photos.
func (s *TripService) Delete(ctx context.Context, userID, tripID string) error {
	expenses, err := s.repomanager.Expenses(s.db).ListByTrip(ctx, userID, tripID)
	if err != nil {
		return fmt.Errorf("error listing expenses: %v", err)
	}

	if err := s.repomanager.Trips(s.db).Delete(ctx, userID, tripID); err != nil {
		return err
	}

	for _, e := range expenses {
		s.deletePhoto(ctx, e.PhotoPath)
	}
	return nil
}

// deletePhoto removes the object best-effort: the database row is already
// gone, so a failed cleanup only leaks storage.
func (s *TripService) deletePhoto(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.photos.DeleteObject(ctx, key); err != nil {
		s.logger.Warn(ctx, "photo cleanup failed", "key", key, "error", err.Error())
	}
}

// CollectForExport returns the trips (all of them when ids is empty) with
// expenses attached and every stored photo's URL resolved to a presigned GET,
// ready to hand to the export pipeline.
func (s *TripService) CollectForExport(ctx context.Context, userID string, ids []string) ([]models.Trip, error) {
	trips, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		wanted := make(map[string]bool, len(ids))
		for _, id := range ids {
			wanted[id] = true
		}
		filtered := trips[:0]
		for _, t := range trips {
			if wanted[t.ID] {
				filtered = append(filtered, t)
			}
		}
		trips = filtered
	}

	for ti := range trips {
		for ei := range trips[ti].Expenses {
			e := &trips[ti].Expenses[ei]
			if e.PhotoPath == "" {
				continue
			}
			url, err := s.photos.GetPresignedGetURL(ctx, e.PhotoPath)
			if err != nil {
				s.logger.Warn(ctx, "presign failed, photo skipped", "key", e.PhotoPath, "error", err.Error())
				e.PhotoURL = ""
				continue
			}
			e.PhotoURL = url
		}
	}
	return trips, nil
}
