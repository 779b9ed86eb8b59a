package database_test

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/clients/postgres"
)

const tenantID int64 = 7

func newMockClient(t *testing.T) (*postgres.Client, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		mockDB.Close()
	})
	return postgres.NewClientFromDB(sqlx.NewDb(mockDB, "postgres")), mock
}
