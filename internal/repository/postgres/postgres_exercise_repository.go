package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/mlezhnin/exercise-tracker/internal/infrastructure/observability"
	"github.com/mlezhnin/exercise-tracker/internal/models"
	"github.com/mlezhnin/exercise-tracker/internal/repository"
	pkgerrors "github.com/mlezhnin/exercise-tracker/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type PostgresExerciseRepository struct {
	db *sql.DB
}

func NewPostgresExerciseRepository(db *sql.DB) *PostgresExerciseRepository {
	return &PostgresExerciseRepository{db: db}
}

// Create appends an exercise row and returns its id. The referenced user is
// not checked here; callers resolve the user before inserting.
func (r *PostgresExerciseRepository) Create(ctx context.Context, exercise *models.Exercise) (int64, error) {
	var err error
	tracer := otel.Tracer("exercise-repository")
	ctx, span := tracer.Start(ctx, "CreateExercise")
	defer span.End()

	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.RepositoryCalls.WithLabelValues("CreateExercise", status).Inc()
		observability.RepositoryDuration.WithLabelValues("CreateExercise").Observe(time.Since(start).Seconds())
	}()

	if exercise == nil {
		err = pkgerrors.ErrNilExercise
		slog.Error("failed to create exercise", "method", "Create", "error", err)
		return 0, err
	}
	if exercise.UserID <= 0 {
		err = fmt.Errorf("user id must be positive")
		slog.Error("failed to create exercise", "method", "Create", "user_id", exercise.UserID, "error", err)
		return 0, err
	}
	if exercise.Description == "" {
		err = fmt.Errorf("description is required")
		slog.Error("failed to create exercise", "method", "Create", "user_id", exercise.UserID, "error", err)
		return 0, err
	}
	if exercise.Date == "" {
		err = fmt.Errorf("date is required")
		slog.Error("failed to create exercise", "method", "Create", "user_id", exercise.UserID, "error", err)
		return 0, err
	}

	span.SetAttributes(
		attribute.Int("user_id", int(exercise.UserID)),
		attribute.Int("duration", exercise.Duration),
		attribute.String("date", exercise.Date),
	)

	query := `INSERT INTO exercises (user_id, duration, description, date) VALUES ($1, $2, $3, $4) RETURNING id`
	err = r.db.QueryRowContext(
		ctx,
		query,
		exercise.UserID,
		exercise.Duration,
		exercise.Description,
		exercise.Date,
	).Scan(&exercise.ID)
	if err != nil {
		slog.Error("failed to create exercise", "method", "Create", "user_id", exercise.UserID, "error", err)
		err = fmt.Errorf("failed to create exercise: %w", err)
		return 0, err
	}

	slog.Info("exercise created", "method", "Create", "exercise_id", exercise.ID, "user_id", exercise.UserID, "date", exercise.Date)
	return exercise.ID, nil
}

// ListForUser returns a user's exercises in storage order, narrowed by the
// filter. Date bounds compare the YYYY-MM-DD strings lexically, which matches
// calendar order for that encoding.
func (r *PostgresExerciseRepository) ListForUser(ctx context.Context, userID int64, filter repository.ExerciseFilter) ([]models.Exercise, error) {
	var err error
	tracer := otel.Tracer("exercise-repository")
	ctx, span := tracer.Start(ctx, "ListExercisesForUser")
	span.SetAttributes(
		attribute.Int("user_id", int(userID)),
		attribute.String("from", filter.From),
		attribute.String("to", filter.To),
		attribute.Int("limit", filter.Limit),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.RepositoryCalls.WithLabelValues("ListExercisesForUser", status).Inc()
		observability.RepositoryDuration.WithLabelValues("ListExercisesForUser").Observe(time.Since(start).Seconds())
	}()

	query := `SELECT id, user_id, duration, description, date FROM exercises WHERE user_id = $1`
	args := []any{userID}

	switch {
	case filter.From != "" && filter.To != "":
		query += ` AND date BETWEEN $2 AND $3`
		args = append(args, filter.From, filter.To)
	case filter.From != "":
		query += ` AND date >= $2`
		args = append(args, filter.From)
	case filter.To != "":
		query += ` AND date <= $2`
		args = append(args, filter.To)
	}

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Error("failed to list exercises", "method", "ListForUser", "user_id", userID, "error", err)
		err = fmt.Errorf("failed to list exercises: %w", err)
		return nil, err
	}
	defer rows.Close()

	exercises := make([]models.Exercise, 0)
	for rows.Next() {
		var exercise models.Exercise
		if err = rows.Scan(&exercise.ID, &exercise.UserID, &exercise.Duration, &exercise.Description, &exercise.Date); err != nil {
			slog.Error("failed to scan exercise row", "method", "ListForUser", "user_id", userID, "error", err)
			err = fmt.Errorf("failed to scan exercise row: %w", err)
			return nil, err
		}
		exercises = append(exercises, exercise)
	}
	if err = rows.Err(); err != nil {
		slog.Error("failed to iterate exercise rows", "method", "ListForUser", "user_id", userID, "error", err)
		err = fmt.Errorf("failed to iterate exercise rows: %w", err)
		return nil, err
	}

	return exercises, nil
}
