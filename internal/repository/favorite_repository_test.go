package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func TestFavoriteRepository_Add_Idempotent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFavoriteRepository(db)

	userID := uuid.New()
	businessID := uuid.New()

	// ON CONFLICT DO NOTHING: повтор вставки затрагивает ноль строк и не ошибается.
	mock.ExpectExec("INSERT INTO favorites").
		WithArgs(userID, businessID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO favorites").
		WithArgs(userID, businessID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Add(context.Background(), userID, businessID))
	assert.NoError(t, repo.Add(context.Background(), userID, businessID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_Remove(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFavoriteRepository(db)

	userID := uuid.New()
	businessID := uuid.New()

	mock.ExpectExec("DELETE FROM favorites").
		WithArgs(userID, businessID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Remove(context.Background(), userID, businessID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_Exists(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFavoriteRepository(db)

	userID := uuid.New()
	businessID := uuid.New()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(userID, businessID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(context.Background(), userID, businessID)
	assert.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_ListByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFavoriteRepository(db)

	userID := uuid.New()
	businessID := uuid.New()
	sellerID := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "seller_id", "name", "industry", "location", "description",
		"annual_revenue", "valuation", "asking_price", "employee_count",
		"founded_year", "status", "created_at", "updated_at",
	}).AddRow(
		businessID.String(), sellerID.String(), "Кофейня на Арбате", "food-service", "Москва", "Действующая кофейня",
		nil, nil, nil, nil,
		nil, "active", now, now,
	)

	mock.ExpectQuery("FROM favorites f").
		WithArgs(userID).
		WillReturnRows(rows)

	businesses, err := repo.ListByUser(context.Background(), userID)
	assert.NoError(t, err)
	require.Len(t, businesses, 1)
	assert.Equal(t, businessID, businesses[0].ID)
	assert.Equal(t, "Кофейня на Арбате", businesses[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
