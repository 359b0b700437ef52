package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dverna/trasferte/internal/common"
	"github.com/dverna/trasferte/internal/logging"
	"github.com/dverna/trasferte/internal/server/config"
	"github.com/dverna/trasferte/internal/server/models"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeTripsRepo struct {
	upsertID  string
	upsertErr error
	upserted  []*models.Trip

	getOut *models.Trip
	getErr error

	listOut []*models.Trip
	listErr error

	deleted []string
	delErr  error
}

func (f *fakeTripsRepo) Upsert(ctx context.Context, trip *models.Trip) (string, error) {
	f.upserted = append(f.upserted, trip)
	if f.upsertErr != nil {
		return "", f.upsertErr
	}
	return f.upsertID, nil
}
func (f *fakeTripsRepo) GetByID(ctx context.Context, userID, tripID string) (*models.Trip, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}
func (f *fakeTripsRepo) GetByLocationDate(ctx context.Context, userID, location, date string) (*models.Trip, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}
func (f *fakeTripsRepo) ListByUser(ctx context.Context, userID string) ([]*models.Trip, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}
func (f *fakeTripsRepo) Delete(ctx context.Context, userID, tripID string) error {
	f.deleted = append(f.deleted, tripID)
	return f.delErr
}

type fakeExpensesRepo struct {
	createID  string
	createErr error
	created   []*models.Expense

	getOut *models.Expense
	getErr error

	listOut []*models.Expense
	listErr error

	delRemaining int
	delTripID    string
	delErr       error
}

func (f *fakeExpensesRepo) Create(ctx context.Context, e *models.Expense) (string, error) {
	f.created = append(f.created, e)
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.createID, nil
}
func (f *fakeExpensesRepo) GetByID(ctx context.Context, userID, expenseID string) (*models.Expense, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}
func (f *fakeExpensesRepo) ListByTrip(ctx context.Context, userID, tripID string) ([]*models.Expense, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}
func (f *fakeExpensesRepo) ListByUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}
func (f *fakeExpensesRepo) Delete(ctx context.Context, userID, expenseID string) (int, string, error) {
	if f.delErr != nil {
		return 0, "", f.delErr
	}
	return f.delRemaining, f.delTripID, nil
}

func newTripService(t *testing.T, rm *fakeRepoManager) (*TripService, func()) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	mock.MatchExpectationsInOrder(false)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectRollback()

	cfg := &config.Config{S3Bucket: "expense-photos"}
	svc := NewTripService(db, rm, NewPhotoService(cfg), cfg, discardLogger())
	return svc, func() { db.Close() }
}

func TestList_NestsExpensesNewestTripFirst(t *testing.T) {
	rm := &fakeRepoManager{
		tr: &fakeTripsRepo{listOut: []*models.Trip{
			{ID: "t-2", Location: "Roma", Date: "2024-04-02"},
			{ID: "t-1", Location: "Milano", Date: "2024-03-10"},
		}},
		ex: &fakeExpensesRepo{listOut: []*models.Expense{
			{ID: "e-1", TripID: "t-1", Amount: 45.5},
			{ID: "e-2", TripID: "t-2", Amount: 12},
		}},
	}
	svc, done := newTripService(t, rm)
	defer done()

	trips, err := svc.List(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(trips) != 2 || trips[0].ID != "t-2" {
		t.Fatalf("unexpected trips: %+v", trips)
	}
	if len(trips[0].Expenses) != 1 || trips[0].Expenses[0].ID != "e-2" {
		t.Fatalf("expenses not nested: %+v", trips[0].Expenses)
	}
	if len(trips[1].Expenses) != 1 || trips[1].Expenses[0].ID != "e-1" {
		t.Fatalf("expenses not nested: %+v", trips[1].Expenses)
	}
}

func TestFind_ResolvesNaturalKey(t *testing.T) {
	rm := &fakeRepoManager{
		tr: &fakeTripsRepo{getOut: &models.Trip{ID: "t-1", Location: "Milano", Date: "2024-03-10"}},
		ex: &fakeExpensesRepo{listOut: []*models.Expense{{ID: "e-1", TripID: "t-1", Amount: 45.5}}},
	}
	svc, done := newTripService(t, rm)
	defer done()

	trip, err := svc.Find(context.Background(), "u-1", "Milano", "2024-03-10")
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if trip.ID != "t-1" || len(trip.Expenses) != 1 {
		t.Fatalf("unexpected trip: %+v", trip)
	}
}

func TestFind_NotFound(t *testing.T) {
	rm := &fakeRepoManager{tr: &fakeTripsRepo{getErr: common.ErrorNotFound}, ex: &fakeExpensesRepo{}}
	svc, done := newTripService(t, rm)
	defer done()

	if _, err := svc.Find(context.Background(), "u-1", "Bologna", "2024-05-01"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestAddExpense_CreatesTripWhenMissing(t *testing.T) {
	rm := &fakeRepoManager{
		tr: &fakeTripsRepo{upsertID: "t-new"},
		ex: &fakeExpensesRepo{createID: "e-new"},
	}
	svc, done := newTripService(t, rm)
	defer done()

	e, err := svc.AddExpense(context.Background(), "u-1", "Milano", "2024-03-10", &models.Expense{Amount: 45.5, Comment: "Pranzo"})
	if err != nil {
		t.Fatalf("AddExpense error: %v", err)
	}
	if e.ID != "e-new" || e.TripID != "t-new" || e.UserID != "u-1" {
		t.Fatalf("unexpected expense: %+v", e)
	}
	if e.Timestamp == 0 {
		t.Fatal("timestamp not assigned")
	}
	if len(rm.tr.upserted) != 1 || rm.tr.upserted[0].Location != "Milano" {
		t.Fatalf("trip not upserted: %+v", rm.tr.upserted)
	}
}

func TestAddExpense_Validation(t *testing.T) {
	rm := &fakeRepoManager{tr: &fakeTripsRepo{}, ex: &fakeExpensesRepo{}}
	svc, done := newTripService(t, rm)
	defer done()

	if _, err := svc.AddExpense(context.Background(), "u-1", "Milano", "2024-03-10", &models.Expense{Amount: 0}); !errors.Is(err, common.ErrorInvalidAmount) {
		t.Fatalf("want ErrorInvalidAmount, got %v", err)
	}
	if _, err := svc.AddExpense(context.Background(), "u-1", "Milano", "10/03/2024", &models.Expense{Amount: 1}); !errors.Is(err, common.ErrorInvalidDate) {
		t.Fatalf("want ErrorInvalidDate, got %v", err)
	}
}

func TestRemoveExpense_LastExpenseDropsTrip(t *testing.T) {
	rm := &fakeRepoManager{
		tr: &fakeTripsRepo{},
		ex: &fakeExpensesRepo{
			getOut:       &models.Expense{ID: "e-1", TripID: "t-1"},
			delRemaining: 0,
			delTripID:    "t-1",
		},
	}
	svc, done := newTripService(t, rm)
	defer done()

	if err := svc.RemoveExpense(context.Background(), "u-1", "e-1"); err != nil {
		t.Fatalf("RemoveExpense error: %v", err)
	}
	if len(rm.tr.deleted) != 1 || rm.tr.deleted[0] != "t-1" {
		t.Fatalf("trip not dropped: %+v", rm.tr.deleted)
	}
}

func TestRemoveExpense_KeepsTripWhenOthersRemain(t *testing.T) {
	rm := &fakeRepoManager{
		tr: &fakeTripsRepo{},
		ex: &fakeExpensesRepo{
			getOut:       &models.Expense{ID: "e-1", TripID: "t-1"},
			delRemaining: 2,
			delTripID:    "t-1",
		},
	}
	svc, done := newTripService(t, rm)
	defer done()

	if err := svc.RemoveExpense(context.Background(), "u-1", "e-1"); err != nil {
		t.Fatalf("RemoveExpense error: %v", err)
	}
	if len(rm.tr.deleted) != 0 {
		t.Fatalf("trip unexpectedly dropped: %+v", rm.tr.deleted)
	}
}

func TestCollectForExport_FiltersSelection(t *testing.T) {
	rm := &fakeRepoManager{
		tr: &fakeTripsRepo{listOut: []*models.Trip{
			{ID: "t-1", Location: "Milano", Date: "2024-03-10"},
			{ID: "t-2", Location: "Roma", Date: "2024-04-02"},
		}},
		ex: &fakeExpensesRepo{},
	}
	svc, done := newTripService(t, rm)
	defer done()

	trips, err := svc.CollectForExport(context.Background(), "u-1", []string{"t-2"})
	if err != nil {
		t.Fatalf("CollectForExport error: %v", err)
	}
	if len(trips) != 1 || trips[0].ID != "t-2" {
		t.Fatalf("selection not applied: %+v", trips)
	}
}

func TestCollectForExport_PresignsStoredPhotos(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origGet := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignGetObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://signed.example.com/" + *in.Key}, nil
	}

	rm := &fakeRepoManager{
		tr: &fakeTripsRepo{listOut: []*models.Trip{
			{ID: "t-1", Location: "Milano", Date: "2024-03-10"},
		}},
		ex: &fakeExpensesRepo{listOut: []*models.Expense{
			{ID: "e-1", TripID: "t-1", PhotoPath: "users/2024/3/10/abc"},
		}},
	}
	svc, done := newTripService(t, rm)
	defer done()

	trips, err := svc.CollectForExport(context.Background(), "u-1", nil)
	if err != nil {
		t.Fatalf("CollectForExport error: %v", err)
	}
	got := trips[0].Expenses[0].PhotoURL
	if got != "https://signed.example.com/users/2024/3/10/abc" {
		t.Fatalf("photo not presigned: %q", got)
	}
}
