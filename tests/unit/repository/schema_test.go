package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	repository "github.com/mlezhnin/exercise-tracker/internal/repository/postgres"
	"github.com/stretchr/testify/assert"
)

func TestEnsureSchema(t *testing.T) {
	t.Run("CreatesBothTables", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS exercises`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repository.EnsureSchema(context.Background(), db))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DatabaseError", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).
			WillReturnError(fmt.Errorf("database error"))

		err = repository.EnsureSchema(context.Background(), db)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to ensure schema")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReset(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DROP TABLE IF EXISTS exercises`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DROP TABLE IF EXISTS users`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS exercises`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repository.Reset(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
