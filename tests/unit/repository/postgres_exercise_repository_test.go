package repository_test

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mlezhnin/exercise-tracker/internal/models"
	core "github.com/mlezhnin/exercise-tracker/internal/repository"
	repository "github.com/mlezhnin/exercise-tracker/internal/repository/postgres"
	pkgerrors "github.com/mlezhnin/exercise-tracker/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestPostgresExerciseRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresExerciseRepository(db)
	ctx := context.Background()

	t.Run("NilExercise", func(t *testing.T) {
		id, err := repo.Create(ctx, nil)
		assert.Zero(t, id)
		assert.ErrorIs(t, err, pkgerrors.ErrNilExercise)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InvalidUserID", func(t *testing.T) {
		id, err := repo.Create(ctx, &models.Exercise{UserID: 0, Duration: 10, Description: "Run", Date: "2025-10-10"})
		assert.Zero(t, id)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "user id must be positive")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptyDescription", func(t *testing.T) {
		id, err := repo.Create(ctx, &models.Exercise{UserID: 1, Duration: 10, Description: "", Date: "2025-10-10"})
		assert.Zero(t, id)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "description is required")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptyDate", func(t *testing.T) {
		id, err := repo.Create(ctx, &models.Exercise{UserID: 1, Duration: 10, Description: "Run", Date: ""})
		assert.Zero(t, id)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "date is required")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success", func(t *testing.T) {
		exercise := &models.Exercise{
			UserID:      1,
			Duration:    1000,
			Description: "Test",
			Date:        "2025-10-10",
		}
		exerciseID := int64(7)
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO exercises (user_id, duration, description, date) VALUES ($1, $2, $3, $4) RETURNING id`)).
			WithArgs(exercise.UserID, exercise.Duration, exercise.Description, exercise.Date).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(exerciseID))

		id, err := repo.Create(ctx, exercise)
		assert.NoError(t, err)
		assert.Equal(t, exerciseID, id)
		assert.Equal(t, exerciseID, exercise.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DatabaseError", func(t *testing.T) {
		exercise := &models.Exercise{
			UserID:      1,
			Duration:    1000,
			Description: "Test",
			Date:        "2025-10-10",
		}
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO exercises`)).
			WithArgs(exercise.UserID, exercise.Duration, exercise.Description, exercise.Date).
			WillReturnError(fmt.Errorf("database error"))

		id, err := repo.Create(ctx, exercise)
		assert.Zero(t, id)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create exercise")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func exerciseRows(exercises ...models.Exercise) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "user_id", "duration", "description", "date"})
	for _, exercise := range exercises {
		rows.AddRow(exercise.ID, exercise.UserID, exercise.Duration, exercise.Description, exercise.Date)
	}
	return rows
}

func TestPostgresExerciseRepository_ListForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := repository.NewPostgresExerciseRepository(db)
	ctx := context.Background()

	userID := int64(1)
	first := models.Exercise{ID: 1, UserID: userID, Duration: 30, Description: "Run", Date: "2025-10-10"}
	second := models.Exercise{ID: 2, UserID: userID, Duration: 45, Description: "Swim", Date: "2025-10-11"}

	t.Run("NoFilter", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, duration, description, date FROM exercises WHERE user_id = $1`)).
			WithArgs(userID).
			WillReturnRows(exerciseRows(first, second))

		exercises, err := repo.ListForUser(ctx, userID, core.ExerciseFilter{})
		assert.NoError(t, err)
		assert.Equal(t, []models.Exercise{first, second}, exercises)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("FromOnly", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, duration, description, date FROM exercises WHERE user_id = $1 AND date >= $2`)).
			WithArgs(userID, "2025-10-11").
			WillReturnRows(exerciseRows(second))

		exercises, err := repo.ListForUser(ctx, userID, core.ExerciseFilter{From: "2025-10-11"})
		assert.NoError(t, err)
		assert.Equal(t, []models.Exercise{second}, exercises)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ToOnly", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, duration, description, date FROM exercises WHERE user_id = $1 AND date <= $2`)).
			WithArgs(userID, "2025-10-10").
			WillReturnRows(exerciseRows(first))

		exercises, err := repo.ListForUser(ctx, userID, core.ExerciseFilter{To: "2025-10-10"})
		assert.NoError(t, err)
		assert.Equal(t, []models.Exercise{first}, exercises)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("BothBounds", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, duration, description, date FROM exercises WHERE user_id = $1 AND date BETWEEN $2 AND $3`)).
			WithArgs(userID, "2025-10-10", "2025-10-12").
			WillReturnRows(exerciseRows(first, second))

		exercises, err := repo.ListForUser(ctx, userID, core.ExerciseFilter{From: "2025-10-10", To: "2025-10-12"})
		assert.NoError(t, err)
		assert.Equal(t, []models.Exercise{first, second}, exercises)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("BothBoundsWithLimit", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, duration, description, date FROM exercises WHERE user_id = $1 AND date BETWEEN $2 AND $3 LIMIT $4`)).
			WithArgs(userID, "2025-10-10", "2025-10-12", 10).
			WillReturnRows(exerciseRows(first))

		exercises, err := repo.ListForUser(ctx, userID, core.ExerciseFilter{From: "2025-10-10", To: "2025-10-12", Limit: 10})
		assert.NoError(t, err)
		assert.Equal(t, []models.Exercise{first}, exercises)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ZeroLimitMeansUnlimited", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, duration, description, date FROM exercises WHERE user_id = $1`)).
			WithArgs(userID).
			WillReturnRows(exerciseRows(first, second))

		exercises, err := repo.ListForUser(ctx, userID, core.ExerciseFilter{Limit: 0})
		assert.NoError(t, err)
		assert.Len(t, exercises, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NoRows", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, duration, description, date FROM exercises WHERE user_id = $1`)).
			WithArgs(userID).
			WillReturnRows(exerciseRows())

		exercises, err := repo.ListForUser(ctx, userID, core.ExerciseFilter{})
		assert.NoError(t, err)
		assert.Empty(t, exercises)
		assert.NotNil(t, exercises)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DatabaseError", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, duration, description, date FROM exercises WHERE user_id = $1`)).
			WithArgs(userID).
			WillReturnError(fmt.Errorf("database error"))

		exercises, err := repo.ListForUser(ctx, userID, core.ExerciseFilter{})
		assert.Nil(t, exercises)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list exercises")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
