package profiles

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dverna/trasferte/internal/common"
	"github.com/dverna/trasferte/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestGet_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"user_id", "avatar_url", "palette", "updated_at"}).
		AddRow("u-1", "https://cdn.example.com/a.png", "ocean", time.Now())
	mock.ExpectQuery(`(?s)SELECT.*FROM\s+profiles`).
		WithArgs("u-1").
		WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Palette != "ocean" {
		t.Fatalf("unexpected profile: %+v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT.*FROM\s+profiles`).
		WithArgs("u-x").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "u-x")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestUpsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)INSERT\s+INTO\s+profiles.*ON\s+CONFLICT`).
		WithArgs("u-1", "https://cdn.example.com/a.png", "ocean").
		WillReturnResult(sqlmock.NewResult(0, 1))

	p := &models.Profile{UserID: "u-1", AvatarURL: "https://cdn.example.com/a.png", Palette: "ocean"}
	if err := repo.Upsert(context.Background(), p); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
}
