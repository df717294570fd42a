package provider

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	return repo, mock, func() { sqlxDB.Close() }
}

var providerRows = []string{
	"id", "user_id", "business_name", "description", "phone", "address",
	"latitude", "longitude", "created_at", "updated_at",
}

var serviceRows = []string{"id", "provider_id", "name", "price_cents", "duration_minutes", "created_at"}

func TestCreateAndGetProvider(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()

	mock.ExpectQuery("INSERT INTO providers").
		WillReturnRows(sqlmock.NewRows(providerRows).
			AddRow(1, 20, "Hovslageri Nord", "", "070-7654321", "Stallvägen 1", 59.33, 18.07, now, now))

	created, err := repo.Create(context.Background(), 20, CreateProviderRequest{
		BusinessName: "Hovslageri Nord",
		Phone:        "070-7654321",
		Address:      "Stallvägen 1",
	})
	require.NoError(t, err)
	require.Equal(t, 1, created.ID)
	require.Equal(t, 20, created.UserID)

	mock.ExpectQuery("SELECT (.+) FROM providers WHERE id").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(providerRows).
			AddRow(1, 20, "Hovslageri Nord", "", "070-7654321", "Stallvägen 1", 59.33, 18.07, now, now))

	found, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, "Hovslageri Nord", found.BusinessName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_Missing(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery("SELECT (.+) FROM providers WHERE id").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(providerRows))

	found, err := repo.GetByID(context.Background(), 99)
	require.NoError(t, err)
	require.Nil(t, found)
}

func TestUpdateWithAuth_ZeroRowsIsNil(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery("UPDATE providers").
		WillReturnRows(sqlmock.NewRows(providerRows))

	updated, err := repo.UpdateWithAuth(context.Background(), 1, 999, UpdateProviderRequest{
		BusinessName: "Nytt Namn",
	})
	require.NoError(t, err)
	require.Nil(t, updated)
}

func TestDeleteServiceWithAuth_ChecksOwnershipThroughJoin(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectExec("DELETE FROM services").
		WithArgs(3, 20).
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.DeleteServiceWithAuth(context.Background(), 3, 20)
	require.NoError(t, err)
	require.True(t, deleted)

	mock.ExpectExec("DELETE FROM services").
		WithArgs(3, 999).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err = repo.DeleteServiceWithAuth(context.Background(), 3, 999)
	require.NoError(t, err)
	require.False(t, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListServices(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM services WHERE provider_id").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(serviceRows).
			AddRow(3, 1, "Hovslagning", 95000, 60, now).
			AddRow(4, 1, "Verkning", 60000, 45, now))

	services, err := repo.ListServices(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, services, 2)
	require.Equal(t, "Hovslagning", services[0].Name)
	require.Equal(t, 45, services[1].DurationMinutes)
}
